package trajectory

import (
	"math"
	"testing"

	"github.com/ayusman/natyam/internal/pose"
)

func linearPoints(n int, vx, vy float64, stepMs int64) []Point {
	points := make([]Point, n)
	for i := range points {
		t := int64(i) * stepMs
		dt := float64(t) / 1000
		points[i] = Point{
			Position:    pose.Point3D{X: 10 + vx*dt, Y: 20 + vy*dt},
			TimestampMs: t,
			Confidence:  1,
		}
	}
	return points
}

func TestPredict_SelectsLinearForConstantVelocity(t *testing.T) {
	cfg := DefaultConfig()
	points := linearPoints(30, 100, -40, 33)
	quality := AssessQuality(points, cfg)

	p := Predict(points, quality, cfg)
	if p == nil {
		t.Fatal("expected a prediction")
	}
	if p.Method != MethodLinear {
		t.Fatalf("method = %s, want linear", p.Method)
	}
	if len(p.Points) != cfg.PredictionSteps {
		t.Fatalf("predicted %d points, want %d", len(p.Points), cfg.PredictionSteps)
	}
}

func TestPredict_LinearIsExactOnALine(t *testing.T) {
	cfg := DefaultConfig()
	const vx, vy = 100.0, -40.0
	points := linearPoints(30, vx, vy, 33)
	quality := AssessQuality(points, cfg)

	p := Predict(points, quality, cfg)
	if p == nil || p.Method != MethodLinear {
		t.Fatalf("expected linear prediction, got %+v", p)
	}

	for i, pp := range p.Points {
		dt := float64(pp.TimestampMs) / 1000
		wantX := 10 + vx*dt
		wantY := 20 + vy*dt
		if math.Abs(pp.Position.X-wantX) > 1e-6 || math.Abs(pp.Position.Y-wantY) > 1e-6 {
			t.Errorf("step %d: got (%f, %f), want (%f, %f)",
				i, pp.Position.X, pp.Position.Y, wantX, wantY)
		}
	}
}

func TestPredict_SelectsQuadraticForConstantAcceleration(t *testing.T) {
	cfg := DefaultConfig()

	// y = 0.5 * a * t^2 with a = 800 px/s^2: velocity sweeps widely but
	// acceleration is constant.
	points := make([]Point, 30)
	for i := range points {
		ts := int64(i) * 33
		dt := float64(ts) / 1000
		points[i] = Point{
			Position:    pose.Point3D{X: 50, Y: 0.5 * 800 * dt * dt},
			TimestampMs: ts,
			Confidence:  1,
		}
	}
	quality := AssessQuality(points, cfg)

	p := Predict(points, quality, cfg)
	if p == nil {
		t.Fatal("expected a prediction")
	}
	if p.Method != MethodQuadratic {
		t.Fatalf("method = %s, want quadratic", p.Method)
	}

	// The fit should reproduce the parabola almost exactly.
	for _, pp := range p.Points {
		dt := float64(pp.TimestampMs) / 1000
		want := 0.5 * 800 * dt * dt
		if math.Abs(pp.Position.Y-want) > 0.5 {
			t.Errorf("t=%dms: y = %f, want %f", pp.TimestampMs, pp.Position.Y, want)
		}
	}
}

func TestPredict_SelectsStateSpaceForErraticMotion(t *testing.T) {
	cfg := DefaultConfig()

	// Jerky motion: step sizes alternate wildly, so both velocity and
	// acceleration variance blow past the thresholds.
	points := make([]Point, 30)
	x := 0.0
	for i := range points {
		if i%2 == 0 {
			x += 40
		} else {
			x += 2
		}
		points[i] = Point{
			Position:    pose.Point3D{X: x, Y: 100},
			TimestampMs: int64(i) * 33,
			Confidence:  1,
		}
	}
	quality := AssessQuality(points, cfg)

	p := Predict(points, quality, cfg)
	if p == nil {
		t.Fatal("expected a prediction")
	}
	if p.Method != MethodStateSpace {
		t.Errorf("method = %s, want state_space", p.Method)
	}
}

func TestPredict_ConfidenceDecaysWithHorizon(t *testing.T) {
	cfg := DefaultConfig()
	points := linearPoints(30, 100, 0, 33)
	quality := AssessQuality(points, cfg)

	p := Predict(points, quality, cfg)
	if p == nil {
		t.Fatal("expected a prediction")
	}

	for i := 1; i < len(p.Points); i++ {
		if p.Points[i].Confidence >= p.Points[i-1].Confidence {
			t.Fatalf("confidence must decay: step %d %f >= step %d %f",
				i, p.Points[i].Confidence, i-1, p.Points[i-1].Confidence)
		}
	}
	if p.Points[0].Confidence > quality.Score/100 {
		t.Errorf("step confidence %f exceeds quality factor %f",
			p.Points[0].Confidence, quality.Score/100)
	}
}

func TestPredict_TooShortHistoryReturnsNil(t *testing.T) {
	cfg := DefaultConfig()
	points := linearPoints(cfg.MinPointsForAnalysis-1, 100, 0, 33)

	if p := Predict(points, AssessQuality(points, cfg), cfg); p != nil {
		t.Errorf("expected nil prediction for short history, got %+v", p)
	}
}
