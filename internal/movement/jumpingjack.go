package movement

import (
	"math"

	"github.com/ayusman/natyam/internal/pose"
)

// Jumping jack phases.
const (
	JackClosed  Phase = "closed"
	JackOpening Phase = "opening"
	JackOpen    Phase = "open"
	JackClosing Phase = "closing"
)

// JumpingJackConfig holds threshold and penalty tuning for the jumping
// jack analyzer. Spread ratios are relative to hip width so the analyzer
// is scale-invariant.
type JumpingJackConfig struct {
	OpenSpreadRatio    float64 // ankle spread / hip width above which feet are open
	ClosedSpreadRatio  float64 // ankle spread / hip width below which feet are together
	MinPhaseDurationMs int64

	ArmExtensionPenalty float64 // wrists failing to clear the head
	SyncPenalty         float64 // arms and legs out of phase
	StabilityPenalty    float64
	MaxTorsoSway        float64 // stddev of shoulder-mid x, in px
}

// DefaultJumpingJackConfig returns jumping jack tuning.
func DefaultJumpingJackConfig() JumpingJackConfig {
	return JumpingJackConfig{
		OpenSpreadRatio:     1.8,
		ClosedSpreadRatio:   1.1,
		MinPhaseDurationMs:  100,
		ArmExtensionPenalty: 15,
		SyncPenalty:         10,
		StabilityPenalty:    10,
		MaxTorsoSway:        18,
	}
}

// JumpingJackAnalyzer recognizes jumping jacks from the combined arm
// raise and foot spread oscillation.
type JumpingJackAnalyzer struct {
	cfg JumpingJackConfig
}

// NewJumpingJackAnalyzer creates a jumping jack analyzer.
func NewJumpingJackAnalyzer(cfg JumpingJackConfig) *JumpingJackAnalyzer {
	return &JumpingJackAnalyzer{cfg: cfg}
}

func (a *JumpingJackAnalyzer) Type() Type        { return TypeJumpingJack }
func (a *JumpingJackAnalyzer) StartPhase() Phase { return JackClosed }

func (a *JumpingJackAnalyzer) RequiredJoints() []string {
	return []string{
		pose.LeftShoulder, pose.RightShoulder,
		pose.LeftWrist, pose.RightWrist,
		pose.LeftHip, pose.RightHip,
		pose.LeftAnkle, pose.RightAnkle,
	}
}

// openness combines foot spread and arm raise into one scalar in [0,~2]:
// 0 fully closed, 2 fully open. The phase machine thresholds on it.
func (a *JumpingJackAnalyzer) openness(frame *pose.Frame) float64 {
	lh, _ := frame.Get(pose.LeftHip)
	rh, _ := frame.Get(pose.RightHip)
	la, _ := frame.Get(pose.LeftAnkle)
	ra, _ := frame.Get(pose.RightAnkle)
	ls, _ := frame.Get(pose.LeftShoulder)
	rs, _ := frame.Get(pose.RightShoulder)
	lw, _ := frame.Get(pose.LeftWrist)
	rw, _ := frame.Get(pose.RightWrist)

	hipWidth := math.Abs(lh.X - rh.X)
	if hipWidth < 1 {
		return 0
	}

	// Feet component: spread ratio mapped to [0,1].
	spread := math.Abs(la.X-ra.X) / hipWidth
	feet := (spread - a.cfg.ClosedSpreadRatio) / (a.cfg.OpenSpreadRatio - a.cfg.ClosedSpreadRatio)
	feet = clamp01(feet)

	// Arms component: wrists above the shoulder line counts as raised.
	shoulderY := (ls.Y + rs.Y) / 2
	wristY := (lw.Y + rw.Y) / 2
	arms := 0.0
	if wristY < shoulderY {
		arms = 1
	}

	return feet + arms
}

// DetectConfidence scores jumping jack likelihood: upright stance plus a
// strong recent oscillation in the openness scalar.
func (a *JumpingJackAnalyzer) DetectConfidence(s *State, frame *pose.Frame) float64 {
	lh, _ := frame.Get(pose.LeftHip)
	rh, _ := frame.Get(pose.RightHip)
	la, _ := frame.Get(pose.LeftAnkle)
	ra, _ := frame.Get(pose.RightAnkle)

	hipWidth := math.Abs(lh.X - rh.X)
	if hipWidth < 1 {
		return 0
	}

	conf := 0.0

	// Upright.
	ankleY := (la.Y + ra.Y) / 2
	hipY := (lh.Y + rh.Y) / 2
	if ankleY-hipY > hipWidth {
		conf += 0.3
	}

	// The openness scalar swings across most of its range when jacks
	// are actually happening; a static pose barely moves it.
	if s.History.Len() >= 5 {
		swing := s.History.Max() - s.History.Min()
		conf += 0.7 * clamp01(swing/1.5)
	} else if a.openness(frame) > 1.2 {
		conf += 0.3
	}

	return conf
}

// Analyze advances the jumping jack phase machine on the openness scalar.
func (a *JumpingJackAnalyzer) Analyze(s *State, frame *pose.Frame) Result {
	open := a.openness(frame)
	s.History.Push(open)

	ls, _ := frame.Get(pose.LeftShoulder)
	rs, _ := frame.Get(pose.RightShoulder)
	s.Aux.Push((ls.X + rs.X) / 2)

	now := frame.TimestampMs
	switch s.Phase {
	case JackClosed:
		if open > 0.5 {
			s.transition(JackOpening, now, a.cfg.MinPhaseDurationMs)
		}
	case JackOpening:
		if open > 1.5 {
			s.transition(JackOpen, now, a.cfg.MinPhaseDurationMs)
		} else if open < 0.25 {
			s.transition(JackClosed, now, a.cfg.MinPhaseDurationMs)
		}
	case JackOpen:
		if open < 1.5 {
			s.transition(JackClosing, now, a.cfg.MinPhaseDurationMs)
		}
	case JackClosing:
		if open < 0.25 {
			if s.transition(JackClosed, now, a.cfg.MinPhaseDurationMs) {
				s.Repetitions++
			}
		} else if open > 1.5 {
			s.transition(JackOpen, now, a.cfg.MinPhaseDurationMs)
		}
	}

	return Result{
		Movement:    TypeJumpingJack,
		Phase:       s.Phase,
		Repetitions: s.Repetitions,
		Confidence:  s.Confidence,
	}
}

// Score applies the jumping jack technique rules: full arm extension,
// arm/leg synchronization, and torso stability.
func (a *JumpingJackAnalyzer) Score(s *State, frame *pose.Frame) Quality {
	q := Quality{Score: 100}

	// At the open phase the wrists should clear the head.
	if s.Phase == JackOpen && frame.Has(0, pose.Nose) {
		nose, _ := frame.Get(pose.Nose)
		lw, _ := frame.Get(pose.LeftWrist)
		rw, _ := frame.Get(pose.RightWrist)
		if (lw.Y+rw.Y)/2 > nose.Y {
			q.flag(a.cfg.ArmExtensionPenalty,
				"arms not fully extended overhead",
				"swing your hands all the way above your head")
		}
	}

	// Openness stuck near the middle of its range means arms and legs
	// are out of phase rather than moving together.
	if s.History.Len() >= 10 {
		vals := s.History.Values()
		mid := 0
		for _, v := range vals {
			if v > 0.6 && v < 1.4 {
				mid++
			}
		}
		if float64(mid)/float64(len(vals)) > 0.7 {
			q.flag(a.cfg.SyncPenalty,
				"arms and legs out of sync",
				"time the arm swing with the jump")
		}
	}

	if s.Aux.Len() >= 10 && s.Aux.StdDev() > a.cfg.MaxTorsoSway {
		q.flag(a.cfg.StabilityPenalty,
			"torso drifting sideways",
			"land softly in the same spot each rep")
	}

	return q
}
