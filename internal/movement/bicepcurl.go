package movement

import (
	"math"

	"github.com/ayusman/natyam/internal/pose"
)

// Bicep curl phases.
const (
	CurlExtended Phase = "extended"
	CurlLifting  Phase = "lifting"
	CurlFlexed   Phase = "flexed"
	CurlLowering Phase = "lowering"
)

// BicepCurlConfig holds threshold and penalty tuning for the bicep curl
// analyzer.
type BicepCurlConfig struct {
	ExtendedAngle      float64 // elbow angle above which the arm is extended
	FlexedAngle        float64 // elbow angle below which the curl is complete
	MinPhaseDurationMs int64

	ExtensionPenalty float64 // not returning to full extension
	RangePenalty     float64 // not reaching full flexion
	DriftPenalty     float64 // elbow travelling instead of staying pinned
	MaxElbowDrift    float64 // stddev of elbow x over the window, in px
}

// DefaultBicepCurlConfig returns bicep curl tuning.
func DefaultBicepCurlConfig() BicepCurlConfig {
	return BicepCurlConfig{
		ExtendedAngle:      150,
		FlexedAngle:        60,
		MinPhaseDurationMs: 150,
		ExtensionPenalty:   15,
		RangePenalty:       15,
		DriftPenalty:       10,
		MaxElbowDrift:      10,
	}
}

// BicepCurlAnalyzer recognizes single-arm curls, tracking whichever arm
// the detector reports with higher confidence.
type BicepCurlAnalyzer struct {
	cfg BicepCurlConfig
}

// NewBicepCurlAnalyzer creates a bicep curl analyzer.
func NewBicepCurlAnalyzer(cfg BicepCurlConfig) *BicepCurlAnalyzer {
	return &BicepCurlAnalyzer{cfg: cfg}
}

func (a *BicepCurlAnalyzer) Type() Type        { return TypeBicepCurl }
func (a *BicepCurlAnalyzer) StartPhase() Phase { return CurlExtended }

func (a *BicepCurlAnalyzer) RequiredJoints() []string {
	return []string{
		pose.LeftShoulder, pose.RightShoulder,
		pose.LeftElbow, pose.RightElbow,
		pose.LeftWrist, pose.RightWrist,
	}
}

// arm returns the shoulder/elbow/wrist of the side with the higher mean
// confidence this frame.
func (a *BicepCurlAnalyzer) arm(frame *pose.Frame) (shoulder, elbow, wrist pose.Keypoint) {
	ls, _ := frame.Get(pose.LeftShoulder)
	le, _ := frame.Get(pose.LeftElbow)
	lw, _ := frame.Get(pose.LeftWrist)
	rs, _ := frame.Get(pose.RightShoulder)
	re, _ := frame.Get(pose.RightElbow)
	rw, _ := frame.Get(pose.RightWrist)

	left := (ls.Confidence + le.Confidence + lw.Confidence) / 3
	right := (rs.Confidence + re.Confidence + rw.Confidence) / 3
	if left >= right {
		return ls, le, lw
	}
	return rs, re, rw
}

// DetectConfidence scores curl likelihood: upper arm hanging vertical
// and stationary while the forearm swings through the curl band.
func (a *BicepCurlAnalyzer) DetectConfidence(s *State, frame *pose.Frame) float64 {
	shoulder, elbow, wrist := a.arm(frame)

	upperArm := pose.Distance(shoulder.Point(), elbow.Point())
	if upperArm < 1 {
		return 0
	}

	conf := 0.0

	// Upper arm vertical: elbow below the shoulder with little
	// horizontal offset.
	if elbow.Y > shoulder.Y && math.Abs(elbow.X-shoulder.X)/upperArm < 0.4 {
		conf += 0.4
	}

	angle := pose.Angle(shoulder.Point(), elbow.Point(), wrist.Point())
	if angle < a.cfg.ExtendedAngle {
		conf += 0.2
	}

	// Curl activity: the elbow angle sweeps a wide range while the
	// elbow itself stays put.
	if s.History.Len() >= 5 {
		if s.History.Max()-s.History.Min() > 30 {
			conf += 0.25
		}
		if s.Aux.StdDev() < a.cfg.MaxElbowDrift*2 {
			conf += 0.15
		}
	}

	return conf
}

// Analyze advances the curl phase machine on the tracked arm's elbow
// angle.
func (a *BicepCurlAnalyzer) Analyze(s *State, frame *pose.Frame) Result {
	shoulder, elbow, wrist := a.arm(frame)
	angle := pose.Angle(shoulder.Point(), elbow.Point(), wrist.Point())
	s.History.Push(angle)
	s.Aux.Push(elbow.X)

	now := frame.TimestampMs
	switch s.Phase {
	case CurlExtended:
		if angle < a.cfg.ExtendedAngle {
			s.transition(CurlLifting, now, a.cfg.MinPhaseDurationMs)
		}
	case CurlLifting:
		if angle < a.cfg.FlexedAngle {
			s.transition(CurlFlexed, now, a.cfg.MinPhaseDurationMs)
		} else if angle > a.cfg.ExtendedAngle {
			s.transition(CurlExtended, now, a.cfg.MinPhaseDurationMs)
		}
	case CurlFlexed:
		if angle > a.cfg.FlexedAngle {
			s.transition(CurlLowering, now, a.cfg.MinPhaseDurationMs)
		}
	case CurlLowering:
		if angle > a.cfg.ExtendedAngle {
			if s.transition(CurlExtended, now, a.cfg.MinPhaseDurationMs) {
				s.Repetitions++
			}
		} else if angle < a.cfg.FlexedAngle {
			s.transition(CurlFlexed, now, a.cfg.MinPhaseDurationMs)
		}
	}

	return Result{
		Movement:    TypeBicepCurl,
		Phase:       s.Phase,
		Repetitions: s.Repetitions,
		Confidence:  s.Confidence,
	}
}

// Score applies the curl technique rules: full extension at the bottom,
// full flexion at the top, and a pinned elbow throughout.
func (a *BicepCurlAnalyzer) Score(s *State, frame *pose.Frame) Quality {
	q := Quality{Score: 100}

	if s.History.Len() >= 5 {
		if s.History.Max() < a.cfg.ExtendedAngle {
			q.flag(a.cfg.ExtensionPenalty,
				"arm not fully extended at the bottom",
				"straighten your arm completely between reps")
		}
		if s.History.Min() > a.cfg.FlexedAngle && s.History.Min() < a.cfg.ExtendedAngle {
			q.flag(a.cfg.RangePenalty,
				"curl range cut short",
				"bring the wrist all the way up to the shoulder")
		}
	}

	if s.Aux.Len() >= 10 && s.Aux.StdDev() > a.cfg.MaxElbowDrift {
		q.flag(a.cfg.DriftPenalty,
			"elbow drifting during the curl",
			"pin your elbow to your side and isolate the bicep")
	}

	return q
}
