package movement

import (
	"math"

	"github.com/ayusman/natyam/internal/pose"
)

// Squat phases. A repetition is one full cycle standing -> descending ->
// bottom -> ascending -> standing.
const (
	SquatStanding   Phase = "standing"
	SquatDescending Phase = "descending"
	SquatBottom     Phase = "bottom"
	SquatAscending  Phase = "ascending"
)

// SquatConfig holds threshold and penalty tuning for the squat analyzer.
type SquatConfig struct {
	StandingAngle      float64 // knee angle above which legs count as extended
	BottomAngle        float64 // knee angle below which depth is reached
	MinPhaseDurationMs int64

	// Quality rules
	DepthAngle        float64 // deepest knee angle a good rep must reach
	MaxLeanRatio      float64 // shoulder-hip horizontal offset / torso length
	MaxKneeTravel     float64 // knee forward travel past ankle / shin length
	MaxHipSway        float64 // stddev of hip x over the window, in px
	DepthPenalty      float64
	LeanPenalty       float64
	KneePenalty       float64
	StabilityPenalty  float64
}

// DefaultSquatConfig returns squat tuning for detector-space pixels.
func DefaultSquatConfig() SquatConfig {
	return SquatConfig{
		StandingAngle:      160,
		BottomAngle:        110,
		MinPhaseDurationMs: 150,
		DepthAngle:         100,
		MaxLeanRatio:       0.35,
		MaxKneeTravel:      0.6,
		MaxHipSway:         12,
		DepthPenalty:       20,
		LeanPenalty:        15,
		KneePenalty:        10,
		StabilityPenalty:   10,
	}
}

// SquatAnalyzer recognizes bodyweight squats from lower-body joint angles.
type SquatAnalyzer struct {
	cfg SquatConfig
}

// NewSquatAnalyzer creates a squat analyzer.
func NewSquatAnalyzer(cfg SquatConfig) *SquatAnalyzer {
	return &SquatAnalyzer{cfg: cfg}
}

func (a *SquatAnalyzer) Type() Type        { return TypeSquat }
func (a *SquatAnalyzer) StartPhase() Phase { return SquatStanding }

func (a *SquatAnalyzer) RequiredJoints() []string {
	return []string{
		pose.LeftHip, pose.RightHip,
		pose.LeftKnee, pose.RightKnee,
		pose.LeftAnkle, pose.RightAnkle,
	}
}

// kneeAngle returns the mean of the left and right knee flexion angles.
func (a *SquatAnalyzer) kneeAngle(frame *pose.Frame) float64 {
	lh, _ := frame.Get(pose.LeftHip)
	lk, _ := frame.Get(pose.LeftKnee)
	la, _ := frame.Get(pose.LeftAnkle)
	rh, _ := frame.Get(pose.RightHip)
	rk, _ := frame.Get(pose.RightKnee)
	ra, _ := frame.Get(pose.RightAnkle)

	left := pose.Angle(lh.Point(), lk.Point(), la.Point())
	right := pose.Angle(rh.Point(), rk.Point(), ra.Point())
	return (left + right) / 2
}

// DetectConfidence scores squat likelihood from stance geometry: feet
// planted under the hips, knees tracking between hip and ankle, and
// recent knee-angle activity in the squat band.
func (a *SquatAnalyzer) DetectConfidence(s *State, frame *pose.Frame) float64 {
	lh, _ := frame.Get(pose.LeftHip)
	rh, _ := frame.Get(pose.RightHip)
	la, _ := frame.Get(pose.LeftAnkle)
	ra, _ := frame.Get(pose.RightAnkle)

	hipWidth := math.Abs(lh.X - rh.X)
	if hipWidth < 1 {
		return 0
	}

	conf := 0.0

	// Upright: hips well above ankles.
	ankleY := (la.Y + ra.Y) / 2
	hipY := (lh.Y + rh.Y) / 2
	if ankleY-hipY > hipWidth {
		conf += 0.25
	}

	// Stable stance: feet roughly hip width apart. Posture alone stays
	// below the activation threshold; flexion evidence has to tip it.
	footSpread := math.Abs(la.X - ra.X)
	ratio := footSpread / hipWidth
	if ratio > 0.6 && ratio < 2.5 {
		conf += 0.25
	}

	// Knee flexion inside the squat band, or recent flexion activity.
	angle := a.kneeAngle(frame)
	if angle < a.cfg.StandingAngle {
		conf += 0.25
	}
	if s.History.Len() >= 5 && s.History.Max()-s.History.Min() > 20 {
		conf += 0.25
	}

	return conf
}

// Analyze advances the squat phase machine on the mean knee angle.
func (a *SquatAnalyzer) Analyze(s *State, frame *pose.Frame) Result {
	angle := a.kneeAngle(frame)
	s.History.Push(angle)

	lh, _ := frame.Get(pose.LeftHip)
	rh, _ := frame.Get(pose.RightHip)
	s.Aux.Push((lh.X + rh.X) / 2)

	now := frame.TimestampMs
	switch s.Phase {
	case SquatStanding:
		if angle < a.cfg.StandingAngle {
			s.transition(SquatDescending, now, a.cfg.MinPhaseDurationMs)
		}
	case SquatDescending:
		if angle < a.cfg.BottomAngle {
			s.transition(SquatBottom, now, a.cfg.MinPhaseDurationMs)
		} else if angle > a.cfg.StandingAngle {
			// Aborted descent does not count as a rep.
			s.transition(SquatStanding, now, a.cfg.MinPhaseDurationMs)
		}
	case SquatBottom:
		if angle > a.cfg.BottomAngle {
			s.transition(SquatAscending, now, a.cfg.MinPhaseDurationMs)
		}
	case SquatAscending:
		if angle > a.cfg.StandingAngle {
			if s.transition(SquatStanding, now, a.cfg.MinPhaseDurationMs) {
				s.Repetitions++
			}
		} else if angle < a.cfg.BottomAngle {
			s.transition(SquatBottom, now, a.cfg.MinPhaseDurationMs)
		}
	}

	return Result{
		Movement:    TypeSquat,
		Phase:       s.Phase,
		Repetitions: s.Repetitions,
		Confidence:  s.Confidence,
	}
}

// Score applies the squat technique rules: depth, forward lean, knee
// tracking, and hip stability. Each violated rule subtracts a fixed
// penalty; the floor is zero.
func (a *SquatAnalyzer) Score(s *State, frame *pose.Frame) Quality {
	q := Quality{Score: 100}

	// Depth: the deepest knee angle in the recent window must reach the
	// configured target once a descent has happened at all.
	if s.History.Len() >= 5 {
		deepest := s.History.Min()
		if deepest < a.cfg.StandingAngle && deepest > a.cfg.DepthAngle {
			q.flag(a.cfg.DepthPenalty,
				"insufficient squat depth",
				"lower your hips until thighs are near parallel")
		}
	}

	lh, _ := frame.Get(pose.LeftHip)
	rh, _ := frame.Get(pose.RightHip)
	ls, _ := frame.Get(pose.LeftShoulder)
	rs, _ := frame.Get(pose.RightShoulder)
	if frame.Has(0, pose.LeftShoulder, pose.RightShoulder) {
		hip := pose.Midpoint(lh.Point(), rh.Point())
		shoulder := pose.Midpoint(ls.Point(), rs.Point())
		torso := pose.Distance(hip, shoulder)
		if torso > 1 && math.Abs(shoulder.X-hip.X)/torso > a.cfg.MaxLeanRatio {
			q.flag(a.cfg.LeanPenalty,
				"excessive forward lean",
				"keep your chest up and weight over mid-foot")
		}
	}

	lk, _ := frame.Get(pose.LeftKnee)
	la, _ := frame.Get(pose.LeftAnkle)
	shin := pose.Distance(lk.Point(), la.Point())
	if shin > 1 && math.Abs(lk.X-la.X)/shin > a.cfg.MaxKneeTravel {
		q.flag(a.cfg.KneePenalty,
			"knees tracking too far forward",
			"sit back into your hips as you descend")
	}

	if s.Aux.Len() >= 10 && s.Aux.StdDev() > a.cfg.MaxHipSway {
		q.flag(a.cfg.StabilityPenalty,
			"unstable hips",
			"brace your core and slow the movement down")
	}

	return q
}

// flag records a violated rule and subtracts its penalty, clamped at 0.
func (q *Quality) flag(penalty float64, issue, suggestion string) {
	q.Score -= penalty
	if q.Score < 0 {
		q.Score = 0
	}
	q.Issues = append(q.Issues, issue)
	q.Suggestions = append(q.Suggestions, suggestion)
}
