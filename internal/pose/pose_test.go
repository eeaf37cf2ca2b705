package pose

import (
	"math"
	"testing"
)

func TestFrame_Get(t *testing.T) {
	f := Frame{
		Keypoints: []Keypoint{
			{Name: LeftKnee, X: 10, Y: 20, Confidence: 0.9},
			{Name: LeftAnkle, X: 11, Y: 40, Confidence: 0.8},
		},
		TimestampMs: 1000,
	}

	kp, ok := f.Get(LeftKnee)
	if !ok {
		t.Fatal("expected left_knee to be present")
	}
	if kp.X != 10 || kp.Y != 20 {
		t.Errorf("got (%f, %f), want (10, 20)", kp.X, kp.Y)
	}

	if _, ok := f.Get(RightKnee); ok {
		t.Error("expected right_knee to be absent")
	}
}

func TestFrame_Has(t *testing.T) {
	f := Frame{
		Keypoints: []Keypoint{
			{Name: LeftHip, Confidence: 0.9},
			{Name: LeftKnee, Confidence: 0.2},
		},
	}

	if !f.Has(0.5, LeftHip) {
		t.Error("left_hip at 0.9 should satisfy floor 0.5")
	}
	if f.Has(0.5, LeftHip, LeftKnee) {
		t.Error("left_knee at 0.2 should fail floor 0.5")
	}
	if f.Has(0.5, LeftHip, RightHip) {
		t.Error("missing right_hip should fail")
	}
}

func TestKeypoint_Valid(t *testing.T) {
	tests := []struct {
		name string
		kp   Keypoint
		want bool
	}{
		{"valid", Keypoint{Name: Nose, X: 1, Y: 2, Confidence: 0.5}, true},
		{"nan x", Keypoint{Name: Nose, X: math.NaN(), Y: 2, Confidence: 0.5}, false},
		{"inf y", Keypoint{Name: Nose, X: 1, Y: math.Inf(1), Confidence: 0.5}, false},
		{"nan z", Keypoint{Name: Nose, X: 1, Y: 2, Z: math.NaN(), Confidence: 0.5}, false},
		{"confidence above 1", Keypoint{Name: Nose, X: 1, Y: 2, Confidence: 1.5}, false},
		{"negative confidence", Keypoint{Name: Nose, X: 1, Y: 2, Confidence: -0.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kp.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrame_Sanitize(t *testing.T) {
	f := Frame{
		Keypoints: []Keypoint{
			{Name: Nose, X: 1, Y: 2, Confidence: 0.9},
			{Name: LeftEye, X: math.NaN(), Y: 2, Confidence: 0.9},
			{Name: RightEye, X: 3, Y: 4, Confidence: 0.8},
		},
		TimestampMs: 42,
	}

	clean := f.Sanitize()

	if len(clean.Keypoints) != 2 {
		t.Fatalf("got %d keypoints, want 2", len(clean.Keypoints))
	}
	if clean.TimestampMs != 42 {
		t.Errorf("timestamp = %d, want 42", clean.TimestampMs)
	}
	if _, ok := clean.Get(LeftEye); ok {
		t.Error("malformed left_eye should have been dropped")
	}
}

func TestAngle_RightAngle(t *testing.T) {
	a := Point3D{X: 0, Y: 0}
	b := Point3D{X: 0, Y: 1}
	c := Point3D{X: 1, Y: 1}

	angle := Angle(a, b, c)

	if math.Abs(angle-90) > 0.0001 {
		t.Errorf("angle = %f, want 90", angle)
	}
}

func TestAngle_StraightLine(t *testing.T) {
	a := Point3D{X: 0, Y: 0}
	b := Point3D{X: 0, Y: 1}
	c := Point3D{X: 0, Y: 2}

	angle := Angle(a, b, c)

	if math.Abs(angle-180) > 0.0001 {
		t.Errorf("angle = %f, want 180", angle)
	}
}

func TestAngle_DegenerateSegment(t *testing.T) {
	p := Point3D{X: 1, Y: 1}
	if got := Angle(p, p, Point3D{X: 2, Y: 2}); got != 0 {
		t.Errorf("angle with zero-length segment = %f, want 0", got)
	}
}

func TestDistance(t *testing.T) {
	a := Point3D{X: 0, Y: 0, Z: 0}
	b := Point3D{X: 3, Y: 4, Z: 0}

	if d := Distance(a, b); math.Abs(d-5) > 0.0001 {
		t.Errorf("distance = %f, want 5", d)
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(Point3D{X: 0, Y: 0}, Point3D{X: 2, Y: 4})
	if m.X != 1 || m.Y != 2 {
		t.Errorf("midpoint = (%f, %f), want (1, 2)", m.X, m.Y)
	}
}
