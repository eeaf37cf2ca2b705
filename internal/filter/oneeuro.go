// Package filter removes high-frequency jitter from keypoint streams while
// preserving fast intentional motion, using a velocity-adaptive dual
// exponential filter (the One Euro filter family).
package filter

import "math"

// Config holds tuning parameters for a jitter filter channel.
// The literals are empirical; treat them as configuration, not constants.
type Config struct {
	// MinCutoff is the baseline cutoff frequency in Hz. Lower values
	// smooth more aggressively at rest.
	MinCutoff float64
	// Beta scales how much the cutoff rises with speed. Higher values
	// reduce lag during fast motion.
	Beta float64
	// DerivativeCutoff is the fixed cutoff for the velocity estimate.
	DerivativeCutoff float64
	// DefaultFrequencyHz is the sampling frequency assumed before two
	// valid timestamps have been seen, or when timestamps do not advance.
	DefaultFrequencyHz float64
	// MinConfidence is the keypoint confidence floor below which the
	// frame filter re-feeds the last trusted smoothed value instead of
	// the raw observation.
	MinConfidence float64
}

// DefaultConfig returns filter parameters tuned for 15-60 Hz pose streams.
func DefaultConfig() Config {
	return Config{
		MinCutoff:          1.0,
		Beta:               0.007,
		DerivativeCutoff:   1.0,
		DefaultFrequencyHz: 30,
		MinConfidence:      0.3,
	}
}

// lowPass is a single exponential smoothing stage.
type lowPass struct {
	value  float64
	seeded bool
}

func (lp *lowPass) apply(v, alpha float64) float64 {
	if !lp.seeded {
		lp.value = v
		lp.seeded = true
		return v
	}
	lp.value = alpha*v + (1-alpha)*lp.value
	return lp.value
}

// Filter smooths one scalar channel (e.g. the x coordinate of one joint).
// It is not safe for concurrent use; each channel has exactly one owner.
type Filter struct {
	cfg    Config
	value  lowPass
	deriv  lowPass
	lastMs int64
	freq   float64
	seeded bool
}

// New creates a filter channel with the given configuration.
func New(cfg Config) *Filter {
	if cfg.DefaultFrequencyHz <= 0 {
		cfg.DefaultFrequencyHz = DefaultConfig().DefaultFrequencyHz
	}
	return &Filter{cfg: cfg, freq: cfg.DefaultFrequencyHz}
}

// Filter smooths a raw sample observed at the given timestamp.
// The very first sample passes through unchanged. Non-increasing
// timestamps are treated as "no elapsed time": the previous sampling
// frequency is reused rather than dividing by zero.
func (f *Filter) Filter(raw float64, timestampMs int64) float64 {
	if !f.seeded {
		f.seeded = true
		f.lastMs = timestampMs
		f.value.apply(raw, 1)
		f.deriv.apply(0, 1)
		return raw
	}

	if timestampMs > f.lastMs {
		f.freq = 1000.0 / float64(timestampMs-f.lastMs)
	}
	f.lastMs = timestampMs

	// Finite-difference velocity, smoothed through its own fixed-cutoff
	// stage so a single noisy sample cannot spike the adaptive cutoff.
	dv := (raw - f.value.value) * f.freq
	smoothedDv := f.deriv.apply(dv, alphaFor(f.cfg.DerivativeCutoff, f.freq))

	// Faster motion raises the cutoff, trading smoothing for lag.
	cutoff := f.cfg.MinCutoff + f.cfg.Beta*math.Abs(smoothedDv)

	return f.value.apply(raw, alphaFor(cutoff, f.freq))
}

// Reset clears all channel state so the next sample seeds the filter.
func (f *Filter) Reset() {
	f.value = lowPass{}
	f.deriv = lowPass{}
	f.lastMs = 0
	f.freq = f.cfg.DefaultFrequencyHz
	f.seeded = false
}

// alphaFor converts a cutoff frequency into an exponential smoothing
// coefficient for the given sampling frequency, clamped to [0,1].
func alphaFor(cutoff, freq float64) float64 {
	if cutoff <= 0 || freq <= 0 {
		return 1
	}
	tau := 1.0 / (2 * math.Pi * cutoff)
	te := 1.0 / freq
	alpha := 1.0 / (1.0 + tau/te)
	if alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}
