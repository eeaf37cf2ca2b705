package movement

import (
	"fmt"
	"log"

	"github.com/ayusman/natyam/internal/pose"
)

// Config holds engine tuning parameters. The thresholds are empirical;
// treat them as configuration rather than algorithmic constants.
type Config struct {
	// SwitchThreshold is the minimum detection confidence a candidate
	// needs to become active.
	SwitchThreshold float64
	// SwitchCooldownMs is the debounce window after a switch during
	// which no further switches are accepted.
	SwitchCooldownMs int64
	// IdleFloor is the near-zero confidence below which the active
	// analyzer is cleared back to idle instead of force-switched.
	IdleFloor float64
	// JointConfidence is the per-keypoint confidence floor used when
	// checking an analyzer's required joints.
	JointConfidence float64
	// QualityIntervalMs is the cadence at which technique quality is
	// recomputed for the active analyzer.
	QualityIntervalMs int64
	// HistorySize bounds each analyzer's scalar history window.
	HistorySize int
}

// DefaultConfig returns engine parameters tuned for 15-60 Hz streams.
func DefaultConfig() Config {
	return Config{
		SwitchThreshold:   0.6,
		SwitchCooldownMs:  2000,
		IdleFloor:         0.1,
		JointConfidence:   0.3,
		QualityIntervalMs: 500,
		HistorySize:       90,
	}
}

// Engine owns one State per registered analyzer, selects which analyzer
// is active each frame, and guards analyzer failures so a single bad
// computation cannot corrupt the others.
//
// At most one analyzer is active at a time. Switching away from an
// active analyzer requires its own confidence to have decayed below half
// the switch threshold (hysteresis) and the cooldown to have elapsed
// (debounce); a momentary pose ambiguity therefore cannot cause flicker.
type Engine struct {
	cfg       Config
	analyzers []Analyzer
	states    map[Type]*State

	active        Type
	lastSwitchMs  int64
	lastQualityMs int64
	started       bool
}

// DefaultAnalyzers returns the built-in analyzer set with default
// tuning.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		NewSquatAnalyzer(DefaultSquatConfig()),
		NewPushupAnalyzer(DefaultPushupConfig()),
		NewJumpingJackAnalyzer(DefaultJumpingJackConfig()),
		NewBicepCurlAnalyzer(DefaultBicepCurlConfig()),
	}
}

// NewEngine creates an engine with the given analyzers registered.
func NewEngine(cfg Config, analyzers ...Analyzer) *Engine {
	e := &Engine{
		cfg:       cfg,
		analyzers: analyzers,
		states:    make(map[Type]*State, len(analyzers)),
		active:    TypeIdle,
	}
	for _, a := range analyzers {
		e.states[a.Type()] = NewState(a.StartPhase(), cfg.HistorySize)
	}
	return e
}

// Active returns the currently active movement type, or TypeIdle.
func (e *Engine) Active() Type {
	return e.active
}

// StateOf returns the analysis state for a movement type, or nil if no
// such analyzer is registered. Exposed for consumers that render per-
// movement totals; callers must not mutate it.
func (e *Engine) StateOf(t Type) *State {
	return e.states[t]
}

// Reset clears all analyzer states and returns the engine to idle.
func (e *Engine) Reset() {
	for _, a := range e.analyzers {
		e.states[a.Type()].Reset(a.StartPhase())
	}
	e.active = TypeIdle
	e.lastSwitchMs = 0
	e.lastQualityMs = 0
	e.started = false
}

// Process classifies one filtered frame and advances the active
// analyzer's state machine. It never panics: a failing analyzer is
// logged and surfaced as a structured error result.
func (e *Engine) Process(frame *pose.Frame) Result {
	now := frame.TimestampMs

	// A frame that lacks the active movement's required joints is an
	// insufficient-data frame: report it explicitly and leave all
	// selection and analyzer state untouched.
	if e.active != TypeIdle {
		a := e.analyzerFor(e.active)
		if !frame.Has(e.cfg.JointConfidence, a.RequiredJoints()...) {
			return insufficient(e.active, e.states[e.active])
		}
	}

	// Score every analyzer each frame so switching decisions always see
	// the full candidate set.
	var best Analyzer
	var bestConf float64
	for _, a := range e.analyzers {
		s := e.states[a.Type()]
		conf := e.detect(a, s, frame)
		s.Confidence = conf
		if best == nil || conf > bestConf {
			best, bestConf = a, conf
		}
	}

	e.updateSelection(best, bestConf, now)

	if e.active == TypeIdle {
		return Result{Movement: TypeIdle}
	}

	analyzer := e.analyzerFor(e.active)
	state := e.states[e.active]

	result, err := e.analyze(analyzer, state, frame)
	if err != nil {
		log.Printf("movement: analyzer %s failed: %v", e.active, err)
		return Result{
			Movement:    e.active,
			Phase:       state.Phase,
			Repetitions: state.Repetitions,
			Confidence:  state.Confidence,
			Error:       err.Error(),
		}
	}

	if e.cfg.QualityIntervalMs <= 0 || now-e.lastQualityMs >= e.cfg.QualityIntervalMs {
		e.lastQualityMs = now
		if q, err := e.score(analyzer, state, frame); err != nil {
			log.Printf("movement: scoring %s failed: %v", e.active, err)
		} else {
			result.Quality = &q
		}
	}

	return result
}

// updateSelection applies the switch rules: (a) adopt the best candidate
// when idle, (b) otherwise only when the active analyzer's confidence
// has decayed below half the switch threshold and the cooldown elapsed,
// (c) clear to idle when the active confidence collapses below the floor.
func (e *Engine) updateSelection(best Analyzer, bestConf float64, now int64) {
	if e.active == TypeIdle {
		if best != nil && bestConf >= e.cfg.SwitchThreshold && e.cooldownElapsed(now) {
			e.switchTo(best.Type(), now)
		}
		return
	}

	activeConf := e.states[e.active].Confidence

	if activeConf < e.cfg.IdleFloor {
		log.Printf("movement: %s confidence collapsed (%.2f), returning to idle", e.active, activeConf)
		e.active = TypeIdle
		e.lastSwitchMs = now
		return
	}

	if best == nil || best.Type() == e.active {
		return
	}
	if activeConf >= e.cfg.SwitchThreshold/2 {
		return // hysteresis: the incumbent is still plausible
	}
	if bestConf >= e.cfg.SwitchThreshold && e.cooldownElapsed(now) {
		e.switchTo(best.Type(), now)
	}
}

func (e *Engine) cooldownElapsed(now int64) bool {
	if !e.started {
		return true
	}
	return now-e.lastSwitchMs >= e.cfg.SwitchCooldownMs
}

func (e *Engine) switchTo(t Type, now int64) {
	if e.active == t {
		return
	}
	log.Printf("movement: switching %s -> %s", e.active, t)
	if prev, ok := e.states[e.active]; ok {
		a := e.analyzerFor(e.active)
		prev.Reset(a.StartPhase())
	}
	e.active = t
	e.lastSwitchMs = now
	e.lastQualityMs = 0
	e.started = true
}

func (e *Engine) analyzerFor(t Type) Analyzer {
	for _, a := range e.analyzers {
		if a.Type() == t {
			return a
		}
	}
	return nil
}

// detect runs DetectConfidence with panic recovery; a failing detector
// scores zero rather than taking down the frame.
func (e *Engine) detect(a Analyzer, s *State, frame *pose.Frame) (conf float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("movement: detect %s panicked: %v", a.Type(), r)
			conf = 0
		}
	}()
	if !frame.Has(e.cfg.JointConfidence, a.RequiredJoints()...) {
		return 0
	}
	return clamp01(a.DetectConfidence(s, frame))
}

// analyze runs Analyze with panic recovery at the engine boundary.
func (e *Engine) analyze(a Analyzer, s *State, frame *pose.Frame) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyze %s: %v", a.Type(), r)
		}
	}()
	return a.Analyze(s, frame), nil
}

// score runs Score with panic recovery.
func (e *Engine) score(a Analyzer, s *State, frame *pose.Frame) (q Quality, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("score %s: %v", a.Type(), r)
		}
	}()
	return a.Score(s, frame), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
