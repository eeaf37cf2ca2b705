package trajectory

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Pattern identifies a coarse motion pattern.
type Pattern string

const (
	PatternWalking   Pattern = "walking"
	PatternRunning   Pattern = "running"
	PatternJumping   Pattern = "jumping"
	PatternSquatting Pattern = "squatting"
	PatternReaching  Pattern = "reaching"
)

// PatternMatch is one recognized pattern candidate with its raw band
// score and a confidence discounted for trajectory quality and sample
// count.
type PatternMatch struct {
	Pattern    Pattern `json:"pattern"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// motionFeatures summarizes the signal properties the pattern bands are
// defined over.
type motionFeatures struct {
	meanVelocity  float64 // px/s
	verticalRange float64 // px of vertical oscillation
	periodicity   float64 // autocorrelation peak strength in [0,1]
	periodMs      float64 // dominant period, 0 when aperiodic
	straightness  float64 // net displacement / path length in [0,1]
}

// RecognizePatterns scores the known coarse patterns against a point
// series. Candidates below cfg.MinPatternScore are discarded; the rest
// are ranked by score descending. Confidence discounts the raw score by
// the trajectory quality and by sample sufficiency.
func RecognizePatterns(points []Point, quality Quality, cfg Config) []PatternMatch {
	if len(points) < cfg.MinPointsForAnalysis {
		return nil
	}

	f := extractFeatures(points)

	candidates := []PatternMatch{
		{Pattern: PatternWalking, Score: walkingScore(f)},
		{Pattern: PatternRunning, Score: runningScore(f)},
		{Pattern: PatternJumping, Score: jumpingScore(f)},
		{Pattern: PatternSquatting, Score: squattingScore(f)},
		{Pattern: PatternReaching, Score: reachingScore(f)},
	}

	discount := (quality.Score / 100) * math.Min(1, float64(len(points))/float64(cfg.TargetPointCount))

	var out []PatternMatch
	for _, c := range candidates {
		if c.Score < cfg.MinPatternScore {
			continue
		}
		c.Confidence = c.Score * discount
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func extractFeatures(points []Point) motionFeatures {
	var f motionFeatures

	vels, meanDtMs := velocitySeries(points)
	if len(vels) == 0 {
		return f
	}
	f.meanVelocity = stat.Mean(vels, nil)

	minY, maxY := points[0].Position.Y, points[0].Position.Y
	for _, p := range points {
		if p.Position.Y < minY {
			minY = p.Position.Y
		}
		if p.Position.Y > maxY {
			maxY = p.Position.Y
		}
	}
	f.verticalRange = maxY - minY

	peak, lag := autocorrelationPeak(vels)
	f.periodicity = peak
	if lag > 0 {
		f.periodMs = float64(lag) * meanDtMs
	}

	first, last := points[0].Position, points[len(points)-1].Position
	net := math.Sqrt((last.X-first.X)*(last.X-first.X) + (last.Y-first.Y)*(last.Y-first.Y) + (last.Z-first.Z)*(last.Z-first.Z))
	var path float64
	for i := 1; i < len(points); i++ {
		a, b := points[i-1].Position, points[i].Position
		path += math.Sqrt((b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y) + (b.Z-a.Z)*(b.Z-a.Z))
	}
	if path > 1e-9 {
		f.straightness = net / path
	}

	return f
}

// velocitySeries returns the instantaneous velocity magnitudes between
// consecutive points and the mean inter-sample interval in ms.
func velocitySeries(points []Point) (vels []float64, meanDtMs float64) {
	if len(points) < 2 {
		return nil, 0
	}
	vels = make([]float64, 0, len(points)-1)
	var dtSum float64
	for i := 1; i < len(points); i++ {
		dtMs := float64(points[i].TimestampMs - points[i-1].TimestampMs)
		if dtMs <= 0 {
			continue
		}
		dtSum += dtMs
		a, b := points[i-1].Position, points[i].Position
		d := math.Sqrt((b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y) + (b.Z-a.Z)*(b.Z-a.Z))
		vels = append(vels, d/(dtMs/1000))
	}
	if len(vels) == 0 {
		return nil, 0
	}
	return vels, dtSum / float64(len(vels))
}

// autocorrelationPeak computes the normalized autocorrelation of the
// mean-removed signal and returns the strongest peak after the first
// negative dip, as (strength in [0,1], lag in samples). Rhythmic motion
// dips anti-phase and then peaks again at its cycle length; a smooth
// one-shot motion never recovers after the dip and scores zero. Same
// approach as autocorrelation pitch detection.
func autocorrelationPeak(signal []float64) (peak float64, lag int) {
	n := len(signal)
	if n < 8 {
		return 0, 0
	}

	mean := stat.Mean(signal, nil)
	centered := make([]float64, n)
	var energy float64
	for i, v := range signal {
		centered[i] = v - mean
		energy += centered[i] * centered[i]
	}
	if energy < 1e-12 {
		return 0, 0
	}

	maxLag := n / 2
	corr := func(l int) float64 {
		var sum float64
		for i := 0; i+l < n; i++ {
			sum += centered[i] * centered[i+l]
		}
		return sum / energy
	}

	// Find the first anti-phase dip; without one the signal is not
	// rhythmic, only slowly varying.
	dip := 0
	for l := 1; l <= maxLag; l++ {
		if corr(l) < 0 {
			dip = l
			break
		}
	}
	if dip == 0 {
		return 0, 0
	}

	for l := dip + 1; l <= maxLag; l++ {
		if r := corr(l); r > peak {
			peak = r
			lag = l
		}
	}
	if peak < 0 {
		return 0, 0
	}
	return peak, lag
}

// Band scoring: each pattern is a characteristic combination of mean
// velocity, vertical oscillation, periodicity strength, and path
// straightness. band() maps a value's distance from its ideal range to
// [0,1].

func band(v, lo, hi, falloff float64) float64 {
	if v >= lo && v <= hi {
		return 1
	}
	var d float64
	if v < lo {
		d = lo - v
	} else {
		d = v - hi
	}
	s := 1 - d/falloff
	if s < 0 {
		return 0
	}
	return s
}

func walkingScore(f motionFeatures) float64 {
	return 0.35*band(f.meanVelocity, 40, 250, 150) +
		0.25*band(f.verticalRange, 0, 40, 60) +
		0.4*band(f.periodicity, 0.35, 1, 0.35)
}

func runningScore(f motionFeatures) float64 {
	return 0.4*band(f.meanVelocity, 250, 1200, 300) +
		0.2*band(f.verticalRange, 20, 120, 80) +
		0.4*band(f.periodicity, 0.45, 1, 0.3)
}

func jumpingScore(f motionFeatures) float64 {
	return 0.4*band(f.meanVelocity, 400, 2500, 300) +
		0.4*band(f.verticalRange, 80, 1e9, 60) +
		0.2*band(f.periodicity, 0.2, 1, 0.2)
}

func squattingScore(f motionFeatures) float64 {
	return 0.3*band(f.meanVelocity, 20, 200, 120) +
		0.35*band(f.verticalRange, 50, 300, 100) +
		0.35*band(f.periodicity, 0.35, 1, 0.35)
}

func reachingScore(f motionFeatures) float64 {
	// One directed excursion: little rhythm, high straightness.
	return 0.35*band(f.meanVelocity, 60, 600, 250) +
		0.35*band(f.straightness, 0.6, 1, 0.4) +
		0.3*band(f.periodicity, 0, 0.3, 0.25)
}
