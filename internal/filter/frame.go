package filter

import "github.com/ayusman/natyam/internal/pose"

// jointChannels holds the per-axis filter channels for one joint plus the
// last trusted smoothed position.
type jointChannels struct {
	x, y, z *Filter
	last    pose.Keypoint
	trusted bool
}

// FrameFilter smooths whole frames by maintaining one filter channel per
// joint axis. Malformed keypoints are dropped; low-confidence keypoints
// re-feed the last trusted smoothed position to preserve filter
// continuity without introducing phantom motion.
type FrameFilter struct {
	cfg      Config
	channels map[string]*jointChannels
}

// NewFrameFilter creates a frame filter with the given channel config.
func NewFrameFilter(cfg Config) *FrameFilter {
	return &FrameFilter{
		cfg:      cfg,
		channels: make(map[string]*jointChannels),
	}
}

// Apply smooths a frame, returning a new frame of the same shape with
// coordinates replaced by their smoothed values. The input frame is not
// modified.
func (ff *FrameFilter) Apply(frame pose.Frame) pose.Frame {
	clean := frame.Sanitize()
	out := pose.Frame{
		Keypoints:   make([]pose.Keypoint, 0, len(clean.Keypoints)),
		TimestampMs: clean.TimestampMs,
	}

	for _, kp := range clean.Keypoints {
		ch, ok := ff.channels[kp.Name]
		if !ok {
			ch = &jointChannels{
				x: New(ff.cfg),
				y: New(ff.cfg),
				z: New(ff.cfg),
			}
			ff.channels[kp.Name] = ch
		}

		input := kp
		if kp.Confidence < ff.cfg.MinConfidence && ch.trusted {
			// Hold position: feed the previous smoothed value so the
			// channel keeps its timing state without following noise.
			input.X = ch.last.X
			input.Y = ch.last.Y
			input.Z = ch.last.Z
		}

		smoothed := kp
		smoothed.X = ch.x.Filter(input.X, clean.TimestampMs)
		smoothed.Y = ch.y.Filter(input.Y, clean.TimestampMs)
		smoothed.Z = ch.z.Filter(input.Z, clean.TimestampMs)

		if kp.Confidence >= ff.cfg.MinConfidence {
			ch.last = smoothed
			ch.trusted = true
		}

		out.Keypoints = append(out.Keypoints, smoothed)
	}

	return out
}

// Reset clears all per-joint channel state.
func (ff *FrameFilter) Reset() {
	ff.channels = make(map[string]*jointChannels)
}
