package movement

import (
	"math"
	"testing"

	"github.com/ayusman/natyam/internal/pose"
)

// pushupFrame builds a frame whose elbow flexion angle equals the given
// value, with the body line horizontal.
func pushupFrame(elbowAngle float64, tMs int64) *pose.Frame {
	rad := elbowAngle * math.Pi / 180

	makeArm := func(offsetY float64) (shoulder, elbow, wrist pose.Keypoint) {
		elbowX, elbowY := 200.0, 260.0+offsetY
		shoulder = pose.Keypoint{X: elbowX, Y: elbowY - 60, Confidence: 0.95}
		elbow = pose.Keypoint{X: elbowX, Y: elbowY, Confidence: 0.95}
		wrist = pose.Keypoint{
			X:          elbowX + 60*math.Sin(rad),
			Y:          elbowY - 60*math.Cos(rad),
			Confidence: 0.95,
		}
		return shoulder, elbow, wrist
	}

	ls, le, lw := makeArm(0)
	rs, re, rw := makeArm(10)
	ls.Name, le.Name, lw.Name = pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist
	rs.Name, re.Name, rw.Name = pose.RightShoulder, pose.RightElbow, pose.RightWrist

	lh := pose.Keypoint{Name: pose.LeftHip, X: 320, Y: 210, Confidence: 0.95}
	rh := pose.Keypoint{Name: pose.RightHip, X: 320, Y: 220, Confidence: 0.95}

	return &pose.Frame{
		Keypoints:   []pose.Keypoint{ls, le, lw, rs, re, rw, lh, rh},
		TimestampMs: tMs,
	}
}

func TestPushup_CountsExactCycles(t *testing.T) {
	a := NewPushupAnalyzer(DefaultPushupConfig())
	s := NewState(a.StartPhase(), 90)

	cycle := []float64{165, 140, 110, 90, 85, 110, 140, 165}

	const reps = 2
	ts := int64(0)
	var last Result
	for i := 0; i < reps; i++ {
		for _, angle := range cycle {
			last = a.Analyze(s, pushupFrame(angle, ts))
			ts += 200
		}
	}

	if last.Repetitions != reps {
		t.Errorf("repetitions = %d, want %d", last.Repetitions, reps)
	}
	if last.Phase != PushupUp {
		t.Errorf("final phase = %s, want up", last.Phase)
	}
}

func TestPushup_QualityBounds(t *testing.T) {
	a := NewPushupAnalyzer(DefaultPushupConfig())
	s := NewState(a.StartPhase(), 90)

	ts := int64(0)
	var frame *pose.Frame
	for _, angle := range []float64{165, 130, 100, 130, 165} {
		frame = pushupFrame(angle, ts)
		a.Analyze(s, frame)
		ts += 200
	}

	q := a.Score(s, frame)
	if q.Score < 0 || q.Score > 100 {
		t.Fatalf("score = %f, want in [0,100]", q.Score)
	}
	// Bottomed out at 100, above the 90 depth target.
	found := false
	for _, issue := range q.Issues {
		if issue == "insufficient pushup depth" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected depth issue, got %v", q.Issues)
	}
}

// curlFrame builds a single visible arm at the given elbow angle with
// the upper arm hanging vertically.
func curlFrame(elbowAngle float64, tMs int64) *pose.Frame {
	rad := elbowAngle * math.Pi / 180

	elbowX, elbowY := 100.0, 260.0
	ls := pose.Keypoint{Name: pose.LeftShoulder, X: elbowX, Y: elbowY - 60, Confidence: 0.95}
	le := pose.Keypoint{Name: pose.LeftElbow, X: elbowX, Y: elbowY, Confidence: 0.95}
	lw := pose.Keypoint{
		Name:       pose.LeftWrist,
		X:          elbowX + 60*math.Sin(rad),
		Y:          elbowY - 60*math.Cos(rad),
		Confidence: 0.95,
	}

	return &pose.Frame{
		Keypoints:   []pose.Keypoint{ls, le, lw},
		TimestampMs: tMs,
	}
}

func TestBicepCurl_CountsExactCycles(t *testing.T) {
	a := NewBicepCurlAnalyzer(DefaultBicepCurlConfig())
	s := NewState(a.StartPhase(), 90)

	cycle := []float64{170, 130, 90, 55, 50, 90, 130, 170}

	const reps = 4
	ts := int64(0)
	var last Result
	for i := 0; i < reps; i++ {
		for _, angle := range cycle {
			last = a.Analyze(s, curlFrame(angle, ts))
			ts += 200
		}
	}

	if last.Repetitions != reps {
		t.Errorf("repetitions = %d, want %d", last.Repetitions, reps)
	}
}

func TestBicepCurl_ShortRangeIsFlagged(t *testing.T) {
	a := NewBicepCurlAnalyzer(DefaultBicepCurlConfig())
	s := NewState(a.StartPhase(), 90)

	// Curls that stop at 80 degrees, short of the 60 degree target.
	ts := int64(0)
	var frame *pose.Frame
	for _, angle := range []float64{170, 130, 100, 80, 100, 130, 170} {
		frame = curlFrame(angle, ts)
		a.Analyze(s, frame)
		ts += 200
	}

	q := a.Score(s, frame)
	found := false
	for _, issue := range q.Issues {
		if issue == "curl range cut short" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected range issue, got %v", q.Issues)
	}
}

// jackFrame builds an upright frame at a given openness: 0 is closed
// (arms down, feet together), 1 is fully open (arms overhead, feet wide).
func jackFrame(open float64, tMs int64) *pose.Frame {
	hipWidth := 40.0
	spread := 1.1 + open*1.0 // ankle spread ratio from 1.1 to 2.1

	nose := pose.Keypoint{Name: pose.Nose, X: 120, Y: 50, Confidence: 0.95}
	ls := pose.Keypoint{Name: pose.LeftShoulder, X: 100, Y: 100, Confidence: 0.95}
	rs := pose.Keypoint{Name: pose.RightShoulder, X: 140, Y: 100, Confidence: 0.95}
	lh := pose.Keypoint{Name: pose.LeftHip, X: 100, Y: 200, Confidence: 0.95}
	rh := pose.Keypoint{Name: pose.RightHip, X: 140, Y: 200, Confidence: 0.95}

	wristY := 150.0 // below shoulders
	if open > 0.5 {
		wristY = 30.0 // above the head
	}
	lw := pose.Keypoint{Name: pose.LeftWrist, X: 80, Y: wristY, Confidence: 0.95}
	rw := pose.Keypoint{Name: pose.RightWrist, X: 160, Y: wristY, Confidence: 0.95}

	ankleSpread := spread * hipWidth
	la := pose.Keypoint{Name: pose.LeftAnkle, X: 120 - ankleSpread/2, Y: 320, Confidence: 0.95}
	ra := pose.Keypoint{Name: pose.RightAnkle, X: 120 + ankleSpread/2, Y: 320, Confidence: 0.95}

	return &pose.Frame{
		Keypoints:   []pose.Keypoint{nose, ls, rs, lh, rh, lw, rw, la, ra},
		TimestampMs: tMs,
	}
}

func TestJumpingJack_CountsExactCycles(t *testing.T) {
	a := NewJumpingJackAnalyzer(DefaultJumpingJackConfig())
	s := NewState(a.StartPhase(), 90)

	cycle := []float64{0, 0.4, 0.95, 1.0, 0.6, 0.1, 0}

	const reps = 3
	ts := int64(0)
	var last Result
	for i := 0; i < reps; i++ {
		for _, open := range cycle {
			last = a.Analyze(s, jackFrame(open, ts))
			ts += 150
		}
	}

	if last.Repetitions != reps {
		t.Errorf("repetitions = %d, want %d", last.Repetitions, reps)
	}
}

func TestJumpingJack_DetectConfidenceRisesWithOscillation(t *testing.T) {
	a := NewJumpingJackAnalyzer(DefaultJumpingJackConfig())
	s := NewState(a.StartPhase(), 90)

	static := a.DetectConfidence(s, jackFrame(0, 0))

	ts := int64(0)
	for i := 0; i < 12; i++ {
		open := float64(i%2) // alternate closed/open
		a.Analyze(s, jackFrame(open, ts))
		ts += 150
	}

	oscillating := a.DetectConfidence(s, jackFrame(1, ts))
	if oscillating <= static {
		t.Errorf("oscillating confidence %f should exceed static %f", oscillating, static)
	}
	if oscillating < 0.6 {
		t.Errorf("oscillating confidence = %f, want >= 0.6", oscillating)
	}
}
