package trajectory

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/natyam/internal/pose"
)

// Grade is a categorical summary of a trajectory's reliability.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeFair      Grade = "fair"
	GradePoor      Grade = "poor"
	GradeInvalid   Grade = "invalid"
)

// Grade score buckets.
const (
	excellentScore = 85
	goodScore      = 70
	fairScore      = 50
	poorScore      = 30
)

// Quality is the composite 0-100 trajectory quality assessment.
type Quality struct {
	Score float64 `json:"score"`
	Grade Grade   `json:"grade"`

	// Component scores, each in [0,1].
	Sufficiency float64 `json:"sufficiency"`
	Confidence  float64 `json:"confidence"`
	Sampling    float64 `json:"sampling"`
	Smoothness  float64 `json:"smoothness"`
}

// AssessQuality computes the weighted quality score for a point series:
// point-count sufficiency, mean confidence, mean inter-sample gap
// (penalized above the configured thresholds), and a smoothness term
// from the discrete curvature of consecutive point triplets. Each
// component carries a quarter of the score.
func AssessQuality(points []Point, cfg Config) Quality {
	q := Quality{Grade: GradeInvalid}
	if len(points) == 0 {
		return q
	}

	q.Sufficiency = math.Min(1, float64(len(points))/float64(cfg.TargetPointCount))

	confs := make([]float64, len(points))
	for i, p := range points {
		confs[i] = p.Confidence
	}
	q.Confidence = stat.Mean(confs, nil)

	q.Sampling = samplingScore(points, cfg)
	q.Smoothness = smoothnessScore(points)

	q.Score = 25 * (q.Sufficiency + q.Confidence + q.Sampling + q.Smoothness)
	q.Grade = gradeFor(q.Score)
	return q
}

func gradeFor(score float64) Grade {
	switch {
	case score >= excellentScore:
		return GradeExcellent
	case score >= goodScore:
		return GradeGood
	case score >= fairScore:
		return GradeFair
	case score >= poorScore:
		return GradePoor
	default:
		return GradeInvalid
	}
}

// samplingScore maps the mean inter-sample gap into [0,1]: full marks
// at or under GoodGapMs, falling linearly to zero at BadGapMs.
func samplingScore(points []Point, cfg Config) float64 {
	if len(points) < 2 {
		return 0
	}
	span := float64(points[len(points)-1].TimestampMs - points[0].TimestampMs)
	meanGap := span / float64(len(points)-1)

	switch {
	case meanGap <= cfg.GoodGapMs:
		return 1
	case meanGap >= cfg.BadGapMs:
		return 0
	default:
		return 1 - (meanGap-cfg.GoodGapMs)/(cfg.BadGapMs-cfg.GoodGapMs)
	}
}

// smoothnessScore derives smoothness from the mean direction change
// between consecutive segments: straight motion scores 1, constant
// direction reversal scores 0. Trajectories too short to bend score
// full marks.
func smoothnessScore(points []Point) float64 {
	if len(points) < 3 {
		return 1
	}

	var sum float64
	var n int
	for i := 1; i < len(points)-1; i++ {
		a, b, c := points[i-1].Position, points[i].Position, points[i+1].Position
		if pose.Distance(a, b) < 1e-9 || pose.Distance(b, c) < 1e-9 {
			continue // stationary; contributes no curvature
		}
		// Interior angle at b: 180 degrees means perfectly straight.
		bend := 180 - pose.Angle(a, b, c)
		sum += bend / 180
		n++
	}
	if n == 0 {
		return 1
	}
	return 1 - sum/float64(n)
}
