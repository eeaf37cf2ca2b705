package movement

import (
	"math"

	"github.com/ayusman/natyam/internal/pose"
)

// Pushup phases.
const (
	PushupUp       Phase = "up"
	PushupLowering Phase = "lowering"
	PushupBottom   Phase = "bottom"
	PushupPushing  Phase = "pushing"
)

// PushupConfig holds threshold and penalty tuning for the pushup analyzer.
type PushupConfig struct {
	UpAngle            float64 // elbow angle above which arms count as extended
	BottomAngle        float64 // elbow angle below which the bottom is reached
	MinPhaseDurationMs int64

	DepthAngle       float64 // deepest elbow angle a good rep must reach
	MaxHipSagRatio   float64 // hip deviation from shoulder-ankle line / body length
	MaxShoulderSway  float64 // stddev of shoulder y over the window, in px
	DepthPenalty     float64
	HipSagPenalty    float64
	StabilityPenalty float64
}

// DefaultPushupConfig returns pushup tuning for detector-space pixels.
func DefaultPushupConfig() PushupConfig {
	return PushupConfig{
		UpAngle:            150,
		BottomAngle:        95,
		MinPhaseDurationMs: 150,
		DepthAngle:         90,
		MaxHipSagRatio:     0.12,
		MaxShoulderSway:    25,
		DepthPenalty:       20,
		HipSagPenalty:      15,
		StabilityPenalty:   10,
	}
}

// PushupAnalyzer recognizes pushups from elbow flexion while the body is
// horizontal.
type PushupAnalyzer struct {
	cfg PushupConfig
}

// NewPushupAnalyzer creates a pushup analyzer.
func NewPushupAnalyzer(cfg PushupConfig) *PushupAnalyzer {
	return &PushupAnalyzer{cfg: cfg}
}

func (a *PushupAnalyzer) Type() Type        { return TypePushup }
func (a *PushupAnalyzer) StartPhase() Phase { return PushupUp }

func (a *PushupAnalyzer) RequiredJoints() []string {
	return []string{
		pose.LeftShoulder, pose.RightShoulder,
		pose.LeftElbow, pose.RightElbow,
		pose.LeftWrist, pose.RightWrist,
		pose.LeftHip, pose.RightHip,
	}
}

func (a *PushupAnalyzer) elbowAngle(frame *pose.Frame) float64 {
	ls, _ := frame.Get(pose.LeftShoulder)
	le, _ := frame.Get(pose.LeftElbow)
	lw, _ := frame.Get(pose.LeftWrist)
	rs, _ := frame.Get(pose.RightShoulder)
	re, _ := frame.Get(pose.RightElbow)
	rw, _ := frame.Get(pose.RightWrist)

	left := pose.Angle(ls.Point(), le.Point(), lw.Point())
	right := pose.Angle(rs.Point(), re.Point(), rw.Point())
	return (left + right) / 2
}

// DetectConfidence scores pushup likelihood: torso near horizontal,
// wrists below the shoulders, and recent elbow-angle activity.
func (a *PushupAnalyzer) DetectConfidence(s *State, frame *pose.Frame) float64 {
	ls, _ := frame.Get(pose.LeftShoulder)
	rs, _ := frame.Get(pose.RightShoulder)
	lh, _ := frame.Get(pose.LeftHip)
	rh, _ := frame.Get(pose.RightHip)
	lw, _ := frame.Get(pose.LeftWrist)
	rw, _ := frame.Get(pose.RightWrist)

	shoulder := pose.Midpoint(ls.Point(), rs.Point())
	hip := pose.Midpoint(lh.Point(), rh.Point())
	torso := pose.Distance(shoulder, hip)
	if torso < 1 {
		return 0
	}

	conf := 0.0

	// Horizontal torso: vertical drop between shoulders and hips small
	// relative to torso length.
	if math.Abs(shoulder.Y-hip.Y)/torso < 0.45 {
		conf += 0.4
	}

	// Hands planted below the shoulder line.
	wristY := (lw.Y + rw.Y) / 2
	if wristY > shoulder.Y {
		conf += 0.3
	}

	// Elbow activity in the pushup band.
	if a.elbowAngle(frame) < a.cfg.UpAngle {
		conf += 0.15
	}
	if s.History.Len() >= 5 && s.History.Max()-s.History.Min() > 20 {
		conf += 0.15
	}

	return conf
}

// Analyze advances the pushup phase machine on the mean elbow angle.
func (a *PushupAnalyzer) Analyze(s *State, frame *pose.Frame) Result {
	angle := a.elbowAngle(frame)
	s.History.Push(angle)

	ls, _ := frame.Get(pose.LeftShoulder)
	rs, _ := frame.Get(pose.RightShoulder)
	s.Aux.Push((ls.Y + rs.Y) / 2)

	now := frame.TimestampMs
	switch s.Phase {
	case PushupUp:
		if angle < a.cfg.UpAngle {
			s.transition(PushupLowering, now, a.cfg.MinPhaseDurationMs)
		}
	case PushupLowering:
		if angle < a.cfg.BottomAngle {
			s.transition(PushupBottom, now, a.cfg.MinPhaseDurationMs)
		} else if angle > a.cfg.UpAngle {
			s.transition(PushupUp, now, a.cfg.MinPhaseDurationMs)
		}
	case PushupBottom:
		if angle > a.cfg.BottomAngle {
			s.transition(PushupPushing, now, a.cfg.MinPhaseDurationMs)
		}
	case PushupPushing:
		if angle > a.cfg.UpAngle {
			if s.transition(PushupUp, now, a.cfg.MinPhaseDurationMs) {
				s.Repetitions++
			}
		} else if angle < a.cfg.BottomAngle {
			s.transition(PushupBottom, now, a.cfg.MinPhaseDurationMs)
		}
	}

	return Result{
		Movement:    TypePushup,
		Phase:       s.Phase,
		Repetitions: s.Repetitions,
		Confidence:  s.Confidence,
	}
}

// Score applies the pushup technique rules: depth, hip sag, and shoulder
// stability.
func (a *PushupAnalyzer) Score(s *State, frame *pose.Frame) Quality {
	q := Quality{Score: 100}

	if s.History.Len() >= 5 {
		deepest := s.History.Min()
		if deepest < a.cfg.UpAngle && deepest > a.cfg.DepthAngle {
			q.flag(a.cfg.DepthPenalty,
				"insufficient pushup depth",
				"lower your chest until elbows reach ninety degrees")
		}
	}

	// Hip sag: the hip midpoint should stay on the shoulder-ankle line.
	if frame.Has(0, pose.LeftAnkle, pose.RightAnkle) {
		ls, _ := frame.Get(pose.LeftShoulder)
		rs, _ := frame.Get(pose.RightShoulder)
		lh, _ := frame.Get(pose.LeftHip)
		rh, _ := frame.Get(pose.RightHip)
		la, _ := frame.Get(pose.LeftAnkle)
		ra, _ := frame.Get(pose.RightAnkle)

		shoulder := pose.Midpoint(ls.Point(), rs.Point())
		hip := pose.Midpoint(lh.Point(), rh.Point())
		ankle := pose.Midpoint(la.Point(), ra.Point())

		body := pose.Distance(shoulder, ankle)
		if body > 1 {
			// Expected hip y from linear interpolation along the body line.
			t := pose.Distance(shoulder, hip) / body
			expectedY := shoulder.Y + t*(ankle.Y-shoulder.Y)
			if math.Abs(hip.Y-expectedY)/body > a.cfg.MaxHipSagRatio {
				q.flag(a.cfg.HipSagPenalty,
					"hips sagging out of line",
					"squeeze your glutes and hold a straight plank line")
			}
		}
	}

	if s.Aux.Len() >= 10 && s.Aux.StdDev() > a.cfg.MaxShoulderSway {
		q.flag(a.cfg.StabilityPenalty,
			"unstable shoulders",
			"control the tempo and keep your base steady")
	}

	return q
}
