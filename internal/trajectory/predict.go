package trajectory

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/natyam/internal/pose"
)

// Method identifies the prediction technique selected for a trajectory.
type Method string

const (
	// MethodLinear is constant-velocity extrapolation from the average
	// velocity of the last few points.
	MethodLinear Method = "linear"
	// MethodQuadratic is a per-axis second-order least-squares fit
	// evaluated beyond the fit window.
	MethodQuadratic Method = "quadratic"
	// MethodStateSpace is a simplified constant-velocity state model
	// propagated without measurement updates.
	MethodStateSpace Method = "state_space"
)

// PredictedPoint is one extrapolated future position.
type PredictedPoint struct {
	Position    pose.Point3D `json:"position"`
	TimestampMs int64        `json:"timestamp_ms"`
	Confidence  float64      `json:"confidence"`
}

// Prediction is a trajectory's extrapolated future. It is recomputed
// each analysis cycle and never persisted.
type Prediction struct {
	Method     Method           `json:"method"`
	Points     []PredictedPoint `json:"points"`
	Confidence float64          `json:"confidence"`
}

// Predict extrapolates a point series using a method selected from its
// recent variance profile: steady motion extrapolates linearly, smoothly
// accelerating motion fits a quadratic, anything rougher falls back to
// the constant-velocity state model. Returns nil when history is too
// short.
func Predict(points []Point, quality Quality, cfg Config) *Prediction {
	if len(points) < cfg.MinPointsForAnalysis {
		return nil
	}

	window := points
	if cfg.FitWindow > 0 && len(window) > cfg.FitWindow {
		window = window[len(window)-cfg.FitWindow:]
	}

	velVar, accVar := varianceProfile(window)

	var method Method
	switch {
	case velVar < cfg.LowVelocityVariance && accVar < cfg.LowAccelVariance:
		method = MethodLinear
	case accVar < cfg.LowAccelVariance:
		method = MethodQuadratic
	default:
		method = MethodStateSpace
	}

	last := window[len(window)-1]
	qualityFactor := quality.Score / 100

	var future []pose.Point3D
	switch method {
	case MethodLinear, MethodStateSpace:
		// Both propagate position by a constant velocity estimate; they
		// differ in how it is sourced. Linear averages the last few
		// displacements; the state model uses the final instantaneous
		// velocity as its state.
		v := averageVelocity(window, 4)
		if method == MethodStateSpace {
			v = instantaneousVelocity(window)
		}
		future = propagateConstantVelocity(last.Position, v, cfg)
	case MethodQuadratic:
		var ok bool
		future, ok = quadraticExtrapolate(window, cfg)
		if !ok {
			future = propagateConstantVelocity(last.Position, averageVelocity(window, 4), cfg)
			method = MethodLinear
		}
	}

	p := &Prediction{Method: method, Confidence: qualityFactor}
	decay := 1.0
	for i, pos := range future {
		decay *= cfg.ConfidenceDecay
		p.Points = append(p.Points, PredictedPoint{
			Position:    pos,
			TimestampMs: last.TimestampMs + int64(i+1)*cfg.PredictionStepMs,
			Confidence:  qualityFactor * decay,
		})
	}
	return p
}

// varianceProfile returns the variance of the velocity magnitudes and of
// the acceleration magnitudes across the window. The leading third of
// the velocity samples is discarded when enough remain: upstream
// smoothing converges over the first frames of a trajectory and that
// transient must not masquerade as real dynamics.
func varianceProfile(points []Point) (velVar, accVar float64) {
	vels, meanDtMs := velocitySeries(points)
	if len(vels) >= 6 {
		vels = vels[len(vels)/3:]
	}
	if len(vels) < 3 || meanDtMs <= 0 {
		return math.Inf(1), math.Inf(1)
	}
	velVar = stat.Variance(vels, nil)

	accs := make([]float64, len(vels)-1)
	dt := meanDtMs / 1000
	for i := 1; i < len(vels); i++ {
		accs[i-1] = (vels[i] - vels[i-1]) / dt
	}
	accVar = stat.Variance(accs, nil)
	return velVar, accVar
}

// averageVelocity estimates a velocity vector from the mean displacement
// of the trailing n intervals.
func averageVelocity(points []Point, n int) pose.Point3D {
	if len(points) < 2 {
		return pose.Point3D{}
	}
	start := len(points) - n - 1
	if start < 0 {
		start = 0
	}
	seg := points[start:]
	dtMs := seg[len(seg)-1].TimestampMs - seg[0].TimestampMs
	if dtMs <= 0 {
		return pose.Point3D{}
	}
	dt := float64(dtMs) / 1000
	a, b := seg[0].Position, seg[len(seg)-1].Position
	return pose.Point3D{X: (b.X - a.X) / dt, Y: (b.Y - a.Y) / dt, Z: (b.Z - a.Z) / dt}
}

// instantaneousVelocity is the velocity over the final interval.
func instantaneousVelocity(points []Point) pose.Point3D {
	n := len(points)
	if n < 2 {
		return pose.Point3D{}
	}
	return averageVelocity(points[n-2:], 1)
}

// propagateConstantVelocity applies the state transition x' = x + v*dt
// for each prediction step, with no measurement updates over the
// horizon.
func propagateConstantVelocity(start pose.Point3D, v pose.Point3D, cfg Config) []pose.Point3D {
	out := make([]pose.Point3D, cfg.PredictionSteps)
	dt := float64(cfg.PredictionStepMs) / 1000
	pos := start
	for i := range out {
		pos = pose.Point3D{X: pos.X + v.X*dt, Y: pos.Y + v.Y*dt, Z: pos.Z + v.Z*dt}
		out[i] = pos
	}
	return out
}

// quadraticExtrapolate fits x(t), y(t), z(t) with second-order
// polynomials via the normal equations and evaluates them beyond the
// fit window. Reports false when the system is singular.
func quadraticExtrapolate(points []Point, cfg Config) ([]pose.Point3D, bool) {
	n := len(points)
	if n < 3 {
		return nil, false
	}

	t0 := points[0].TimestampMs
	ts := make([]float64, n)
	for i, p := range points {
		ts[i] = float64(p.TimestampMs-t0) / 1000
	}

	design := mat.NewDense(n, 3, nil)
	for i, t := range ts {
		design.Set(i, 0, 1)
		design.Set(i, 1, t)
		design.Set(i, 2, t*t)
	}

	fitAxis := func(extract func(pose.Point3D) float64) ([3]float64, bool) {
		b := mat.NewVecDense(n, nil)
		for i, p := range points {
			b.SetVec(i, extract(p.Position))
		}
		// Normal equations: (AᵀA) c = Aᵀb.
		var ata mat.Dense
		ata.Mul(design.T(), design)
		var atb mat.VecDense
		atb.MulVec(design.T(), b)

		var c mat.VecDense
		if err := c.SolveVec(&ata, &atb); err != nil {
			return [3]float64{}, false
		}
		return [3]float64{c.AtVec(0), c.AtVec(1), c.AtVec(2)}, true
	}

	cx, okX := fitAxis(func(p pose.Point3D) float64 { return p.X })
	cy, okY := fitAxis(func(p pose.Point3D) float64 { return p.Y })
	cz, okZ := fitAxis(func(p pose.Point3D) float64 { return p.Z })
	if !okX || !okY || !okZ {
		return nil, false
	}

	eval := func(c [3]float64, t float64) float64 {
		return c[0] + c[1]*t + c[2]*t*t
	}

	lastT := ts[n-1]
	step := float64(cfg.PredictionStepMs) / 1000
	out := make([]pose.Point3D, cfg.PredictionSteps)
	for i := range out {
		t := lastT + float64(i+1)*step
		out[i] = pose.Point3D{X: eval(cx, t), Y: eval(cy, t), Z: eval(cz, t)}
	}
	return out, true
}
