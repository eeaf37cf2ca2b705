// Package trajectory accumulates per-joint motion histories over a longer
// horizon than the per-frame movement engine, characterizes them
// (quality grading, coarse motion patterns), and produces short-horizon
// position predictions.
package trajectory

import (
	"sync"

	"github.com/ayusman/natyam/internal/pose"
)

// Point is one tracked joint observation in a trajectory.
type Point struct {
	Position    pose.Point3D `json:"position"`
	TimestampMs int64        `json:"timestamp_ms"`
	Confidence  float64      `json:"confidence"`
}

// Config holds trajectory engine tuning. All thresholds are empirical
// configuration, not load-bearing constants.
type Config struct {
	// MaxPoints caps each joint's history; the oldest point is evicted
	// first.
	MaxPoints int
	// MinPointsForAnalysis is the history length below which pattern
	// recognition and prediction are skipped.
	MinPointsForAnalysis int
	// MinKeypointConfidence is the floor below which observations are
	// not accumulated.
	MinKeypointConfidence float64

	// Quality grading
	TargetPointCount int     // point count at which sufficiency maxes out
	GoodGapMs        float64 // mean inter-sample gap with no penalty
	BadGapMs         float64 // mean gap at which the gap score reaches zero

	// Anomaly thresholds
	MaxVelocity float64 // px/s safety threshold
	StaleGapMs  int64   // inter-sample gap considered stale

	// Prediction
	FitWindow           int     // trailing points used for fitting
	PredictionSteps     int     // number of future points per prediction
	PredictionStepMs    int64   // spacing of predicted points
	ConfidenceDecay     float64 // per-step confidence multiplier
	LowVelocityVariance float64 // (px/s)^2 threshold for the linear method
	LowAccelVariance    float64 // (px/s^2)^2 threshold for the quadratic method

	// Pattern recognition
	MinPatternScore float64
}

// DefaultConfig returns trajectory tuning for detector-space pixel
// streams at 15-60 Hz.
func DefaultConfig() Config {
	return Config{
		MaxPoints:             300,
		MinPointsForAnalysis:  8,
		MinKeypointConfidence: 0.2,
		TargetPointCount:      60,
		GoodGapMs:             40,
		BadGapMs:              250,
		MaxVelocity:           2500,
		StaleGapMs:            500,
		FitWindow:             12,
		PredictionSteps:       10,
		PredictionStepMs:      33,
		ConfidenceDecay:       0.92,
		LowVelocityVariance:   900,
		LowAccelVariance:      250000,
		MinPatternScore:       0.35,
	}
}

// Trajectory is a bounded, timestamp-ordered point history for one joint
// with running kinematic totals.
type Trajectory struct {
	Joint         string
	TotalDistance float64
	MaxVelocity   float64

	points  []Point // ring buffer
	head    int
	count   int
	dropped int // out-of-order observations ignored
}

func newTrajectory(joint string, capacity int) *Trajectory {
	if capacity < 2 {
		capacity = 2
	}
	return &Trajectory{Joint: joint, points: make([]Point, capacity)}
}

// Len returns the number of points currently held.
func (t *Trajectory) Len() int { return t.count }

// last returns the most recent point; ok is false when empty.
func (t *Trajectory) last() (Point, bool) {
	if t.count == 0 {
		return Point{}, false
	}
	return t.points[(t.head-1+len(t.points))%len(t.points)], true
}

// append adds a point, evicting the oldest past capacity and updating
// the running totals. Out-of-order timestamps are ignored to preserve
// the ordering invariant.
func (t *Trajectory) append(p Point) {
	if prev, ok := t.last(); ok {
		if p.TimestampMs <= prev.TimestampMs {
			t.dropped++
			return
		}
		d := pose.Distance(prev.Position, p.Position)
		t.TotalDistance += d
		dt := float64(p.TimestampMs-prev.TimestampMs) / 1000
		if v := d / dt; v > t.MaxVelocity {
			t.MaxVelocity = v
		}
	}
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
	if t.count < len(t.points) {
		t.count++
	}
}

// Points returns the held points oldest first, as a fresh slice safe to
// retain.
func (t *Trajectory) Points() []Point {
	out := make([]Point, t.count)
	start := (t.head - t.count + len(t.points)) % len(t.points)
	for i := 0; i < t.count; i++ {
		out[i] = t.points[(start+i)%len(t.points)]
	}
	return out
}

// Smoothed returns a centered 3-point moving average copy of the
// trajectory, preserving endpoints.
func (t *Trajectory) Smoothed() []Point {
	pts := t.Points()
	if len(pts) < 3 {
		return pts
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	for i := 1; i < len(pts)-1; i++ {
		out[i].Position = pose.Point3D{
			X: (pts[i-1].Position.X + pts[i].Position.X + pts[i+1].Position.X) / 3,
			Y: (pts[i-1].Position.Y + pts[i].Position.Y + pts[i+1].Position.Y) / 3,
			Z: (pts[i-1].Position.Z + pts[i].Position.Z + pts[i+1].Position.Z) / 3,
		}
	}
	return out
}

// Engine owns all per-joint trajectories. Ingestion and periodic
// analysis may run on different goroutines; the mutex plus the
// copy-on-read Points snapshots keep analysis from ever observing a
// partially appended trajectory.
type Engine struct {
	cfg Config

	mu           sync.Mutex
	trajectories map[string]*Trajectory
}

// NewEngine creates a trajectory engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:          cfg,
		trajectories: make(map[string]*Trajectory),
	}
}

// Ingest appends one tracked point per keypoint in the frame. Keypoints
// below the confidence floor are skipped; malformed ones are dropped by
// sanitization.
func (e *Engine) Ingest(frame pose.Frame) {
	clean := frame.Sanitize()

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, kp := range clean.Keypoints {
		if kp.Confidence < e.cfg.MinKeypointConfidence {
			continue
		}
		t, ok := e.trajectories[kp.Name]
		if !ok {
			t = newTrajectory(kp.Name, e.cfg.MaxPoints)
			e.trajectories[kp.Name] = t
		}
		t.append(Point{
			Position:    kp.Point(),
			TimestampMs: clean.TimestampMs,
			Confidence:  kp.Confidence,
		})
	}
}

// Joints returns the names of all tracked joints.
func (e *Engine) Joints() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.trajectories))
	for name := range e.trajectories {
		names = append(names, name)
	}
	return names
}

// Snapshot returns a copy of one joint's points plus its running totals;
// ok is false for untracked joints.
func (e *Engine) Snapshot(joint string) (points []Point, totalDistance, maxVelocity float64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, found := e.trajectories[joint]
	if !found {
		return nil, 0, 0, false
	}
	return t.Points(), t.TotalDistance, t.MaxVelocity, true
}

// Reset discards all trajectories.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trajectories = make(map[string]*Trajectory)
}
