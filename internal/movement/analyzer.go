// Package movement classifies which movement type is occurring in a
// filtered keypoint stream and tracks its phase, repetition count, and
// technique quality.
package movement

import "github.com/ayusman/natyam/internal/pose"

// Type identifies a movement classification.
type Type string

const (
	// TypeIdle means no analyzer is currently active.
	TypeIdle Type = "idle"
	// TypeSquat is a bodyweight squat.
	TypeSquat Type = "squat"
	// TypePushup is a standard pushup.
	TypePushup Type = "pushup"
	// TypeJumpingJack is a jumping jack.
	TypeJumpingJack Type = "jumping_jack"
	// TypeBicepCurl is a single-arm bicep curl.
	TypeBicepCurl Type = "bicep_curl"
)

// Phase is a movement-specific discrete stage of a repetition cycle.
// Each analyzer defines its own phase set.
type Phase string

// Quality is a 0-100 technique score with the rule violations that
// reduced it and matching correction suggestions.
type Quality struct {
	Score       float64  `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Result is the per-frame output of the engine for UI consumers.
type Result struct {
	Movement    Type     `json:"movement"`
	Phase       Phase    `json:"phase,omitempty"`
	Repetitions int      `json:"repetitions"`
	Confidence  float64  `json:"confidence"`
	Quality     *Quality `json:"quality,omitempty"`

	// InsufficientData is set when the frame lacked the joints required
	// to analyze the active movement. State is left untouched.
	InsufficientData bool `json:"insufficient_data,omitempty"`
	// Error carries a recovered analyzer failure. The engine and the
	// other analyzers remain usable.
	Error string `json:"error,omitempty"`
}

// State is the mutable per-movement-type analysis state. It is owned by
// the engine and passed explicitly into the analyzer functions; analyzers
// themselves hold only configuration.
type State struct {
	Phase             Phase
	Confidence        float64
	Repetitions       int
	History           *Window // recent tracked scalar (angle or displacement)
	Aux               *Window // secondary scalar for stability checks
	LastPhaseChangeMs int64
	seeded            bool
}

// NewState returns analysis state starting in the given phase.
func NewState(start Phase, historySize int) *State {
	return &State{
		Phase:   start,
		History: NewWindow(historySize),
		Aux:     NewWindow(historySize),
	}
}

// Reset returns the state to its initial phase and clears all history.
func (s *State) Reset(start Phase) {
	s.Phase = start
	s.Confidence = 0
	s.Repetitions = 0
	s.History.Reset()
	s.Aux.Reset()
	s.LastPhaseChangeMs = 0
	s.seeded = false
}

// transition moves to the next phase if the minimum phase duration has
// elapsed, rejecting single-frame noise-induced transitions. Reports
// whether the transition was accepted.
func (s *State) transition(to Phase, nowMs, minDurationMs int64) bool {
	if s.seeded && nowMs-s.LastPhaseChangeMs < minDurationMs {
		return false
	}
	s.Phase = to
	s.LastPhaseChangeMs = nowMs
	s.seeded = true
	return true
}

// Analyzer is a per-movement-type classifier. Implementations are
// stateless rule sets; all mutable state lives in the State the engine
// passes in.
type Analyzer interface {
	// Type returns the movement this analyzer recognizes.
	Type() Type
	// RequiredJoints lists the joints that must be present (at the
	// engine's confidence floor) for detection and analysis.
	RequiredJoints() []string
	// StartPhase is the phase a fresh repetition cycle begins in.
	StartPhase() Phase
	// DetectConfidence scores how likely the frame matches this
	// movement, in [0,1]. It must not mutate phase or rep state.
	DetectConfidence(s *State, frame *pose.Frame) float64
	// Analyze advances the phase state machine for one frame and
	// returns the per-frame result (without quality, which the engine
	// requests separately on its own cadence).
	Analyze(s *State, frame *pose.Frame) Result
	// Score computes the technique quality for the current window.
	Score(s *State, frame *pose.Frame) Quality
}

// insufficient returns the standard insufficient-data result for a
// movement type. It carries the state's current counters so consumers
// do not see reps reset mid-set.
func insufficient(t Type, s *State) Result {
	return Result{
		Movement:         t,
		Phase:            s.Phase,
		Repetitions:      s.Repetitions,
		Confidence:       s.Confidence,
		InsufficientData: true,
	}
}
