package trajectory

import "sort"

// AnomalyKind classifies a detected-but-non-fatal condition.
type AnomalyKind string

const (
	// AnomalyVelocity means a joint exceeded the velocity safety
	// threshold.
	AnomalyVelocity AnomalyKind = "excessive_velocity"
	// AnomalyStale means the gap since the last sample exceeded the
	// staleness threshold.
	AnomalyStale AnomalyKind = "stale_data"
	// AnomalyQuality means the trajectory degraded to poor or invalid.
	AnomalyQuality AnomalyKind = "degraded_quality"
)

// Anomaly is reported as data, never as control flow.
type Anomaly struct {
	Joint string      `json:"joint"`
	Kind  AnomalyKind `json:"kind"`
	Value float64     `json:"value"`
}

// Statistics summarizes one joint's trajectory for the periodic report.
type Statistics struct {
	PointCount    int     `json:"point_count"`
	TotalDistance float64 `json:"total_distance"`
	MaxVelocity   float64 `json:"max_velocity"`
	QualityScore  float64 `json:"quality_score"`
	Grade         Grade   `json:"grade"`
}

// Report is the output of one periodic analysis cycle.
type Report struct {
	Patterns    []PatternMatch         `json:"patterns"`
	Predictions map[string]*Prediction `json:"predictions"`
	Statistics  map[string]Statistics  `json:"statistics"`
	Anomalies   []Anomaly              `json:"anomalies"`
}

// Analyze runs one full analysis cycle over snapshot copies of every
// trajectory: quality grading, pattern recognition, prediction, and
// anomaly collection. It is safe to call concurrently with Ingest;
// ingestion is only blocked for the duration of the snapshot copies,
// not the analysis math. nowMs is the cycle's reference time for
// staleness checks.
func (e *Engine) Analyze(nowMs int64) *Report {
	type snapshot struct {
		joint         string
		points        []Point
		totalDistance float64
		maxVelocity   float64
	}

	e.mu.Lock()
	snaps := make([]snapshot, 0, len(e.trajectories))
	for name, t := range e.trajectories {
		snaps = append(snaps, snapshot{
			joint:         name,
			points:        t.Points(),
			totalDistance: t.TotalDistance,
			maxVelocity:   t.MaxVelocity,
		})
	}
	e.mu.Unlock()

	// Deterministic report ordering regardless of map iteration.
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].joint < snaps[j].joint })

	report := &Report{
		Predictions: make(map[string]*Prediction, len(snaps)),
		Statistics:  make(map[string]Statistics, len(snaps)),
	}

	// Patterns are scored per joint and merged: each pattern keeps its
	// best-scoring joint's result.
	bestPattern := make(map[Pattern]PatternMatch)

	for _, s := range snaps {
		quality := AssessQuality(s.points, e.cfg)

		report.Statistics[s.joint] = Statistics{
			PointCount:    len(s.points),
			TotalDistance: s.totalDistance,
			MaxVelocity:   s.maxVelocity,
			QualityScore:  quality.Score,
			Grade:         quality.Grade,
		}

		if s.maxVelocity > e.cfg.MaxVelocity {
			report.Anomalies = append(report.Anomalies, Anomaly{
				Joint: s.joint, Kind: AnomalyVelocity, Value: s.maxVelocity,
			})
		}
		if quality.Grade == GradePoor || quality.Grade == GradeInvalid {
			report.Anomalies = append(report.Anomalies, Anomaly{
				Joint: s.joint, Kind: AnomalyQuality, Value: quality.Score,
			})
		}
		if n := len(s.points); n > 0 {
			if gap := nowMs - s.points[n-1].TimestampMs; gap > e.cfg.StaleGapMs {
				report.Anomalies = append(report.Anomalies, Anomaly{
					Joint: s.joint, Kind: AnomalyStale, Value: float64(gap),
				})
			}
		}

		for _, m := range RecognizePatterns(s.points, quality, e.cfg) {
			if prev, ok := bestPattern[m.Pattern]; !ok || m.Score > prev.Score {
				bestPattern[m.Pattern] = m
			}
		}

		if p := Predict(s.points, quality, e.cfg); p != nil {
			report.Predictions[s.joint] = p
		}
	}

	for _, m := range bestPattern {
		report.Patterns = append(report.Patterns, m)
	}
	sort.Slice(report.Patterns, func(i, j int) bool {
		return report.Patterns[i].Score > report.Patterns[j].Score
	})

	return report
}
