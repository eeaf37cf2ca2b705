package replay

import (
	"math"
	"math/rand"

	"github.com/ayusman/natyam/internal/pose"
)

// Synthetic skeleton layout in detector-space pixels, y growing
// downward. The figure stands centered at skeletonCenterX.
const (
	skeletonCenterX = 320.0
	skeletonHipY    = 400.0
	skeletonKneeY   = 500.0
	skeletonLegLen  = 100.0
	skeletonConf    = 0.95

	hipHalfWidth      = 40.0
	ankleHalfWidth    = 40.0
	shoulderHalfWidth = 60.0
	torsoLength       = 160.0
)

// StandingFrame returns a full 17-keypoint frame of a person standing
// upright at the given timestamp.
func StandingFrame(tMs int64) pose.Frame {
	return buildFrame(bodyParams{kneeAngle: 175, ankleDx: ankleHalfWidth, wristRaise: 0}, tMs)
}

// SquatSequence generates full-body frames of the given number of
// squat repetitions. Each rep follows a smooth cosine knee-angle
// trajectory from standing (172 degrees) to depth (95 degrees) and
// back, sampled at frameIntervalMs.
func SquatSequence(reps int, periodMs, frameIntervalMs int64) []pose.Frame {
	var frames []pose.Frame
	total := int64(reps) * periodMs
	for t := int64(0); t <= total; t += frameIntervalMs {
		u := cycleFraction(t, periodMs)
		angle := 172 - 77*u
		frames = append(frames, buildFrame(bodyParams{
			kneeAngle:  angle,
			ankleDx:    ankleHalfWidth,
			wristRaise: 0,
		}, t))
	}
	return frames
}

// JumpingJackSequence generates full-body frames of the given number
// of jumping jack repetitions: feet spreading from under the hips to
// wide while the wrists swing from the sides to above the head.
func JumpingJackSequence(reps int, periodMs, frameIntervalMs int64) []pose.Frame {
	var frames []pose.Frame
	total := int64(reps) * periodMs
	for t := int64(0); t <= total; t += frameIntervalMs {
		u := cycleFraction(t, periodMs)
		frames = append(frames, buildFrame(bodyParams{
			kneeAngle:  175,
			ankleDx:    hipHalfWidth * (0.9 + 1.4*u), // feet under hips to wide
			wristRaise: u,
		}, t))
	}
	return frames
}

// WithJitter returns a copy of the frames with uniform positional noise
// of the given amplitude added to every keypoint. The same seed always
// produces the same noise.
func WithJitter(frames []pose.Frame, amplitude float64, seed int64) []pose.Frame {
	rng := rand.New(rand.NewSource(seed))
	out := make([]pose.Frame, len(frames))
	for i, f := range frames {
		kps := make([]pose.Keypoint, len(f.Keypoints))
		for j, kp := range f.Keypoints {
			kp.X += (rng.Float64()*2 - 1) * amplitude
			kp.Y += (rng.Float64()*2 - 1) * amplitude
			kps[j] = kp
		}
		out[i] = pose.Frame{Keypoints: kps, TimestampMs: f.TimestampMs}
	}
	return out
}

// SyntheticRecording packages a generated frame sequence as a recording.
func SyntheticRecording(name string, frames []pose.Frame) *Recording {
	return &Recording{Version: recordingVersion, Name: name, Frames: frames}
}

// cycleFraction maps time within a cycle to a smooth 0 -> 1 -> 0
// excursion.
func cycleFraction(tMs, periodMs int64) float64 {
	phase := float64(tMs%periodMs) / float64(periodMs)
	return (1 - math.Cos(2*math.Pi*phase)) / 2
}

// bodyParams parameterizes the synthetic skeleton: knee flexion drives
// the squat depth, ankleDx the foot spread, wristRaise in [0,1] the arm
// swing from hips to overhead.
type bodyParams struct {
	kneeAngle  float64
	ankleDx    float64
	wristRaise float64
}

func buildFrame(p bodyParams, tMs int64) pose.Frame {
	rad := p.kneeAngle * math.Pi / 180

	// Legs: hip directly above the knee, ankle rotated about the knee to
	// produce the requested flexion angle, then shifted sideways for the
	// foot spread.
	leg := func(side float64) (hip, knee, ankle pose.Keypoint) {
		kneeX := skeletonCenterX + side*hipHalfWidth
		hip = pose.Keypoint{X: kneeX, Y: skeletonKneeY - skeletonLegLen, Confidence: skeletonConf}
		knee = pose.Keypoint{X: kneeX, Y: skeletonKneeY, Confidence: skeletonConf}
		ankle = pose.Keypoint{
			X:          kneeX + side*skeletonLegLen*math.Sin(rad) + side*(p.ankleDx-ankleHalfWidth),
			Y:          skeletonKneeY - skeletonLegLen*math.Cos(rad),
			Confidence: skeletonConf,
		}
		return hip, knee, ankle
	}

	lh, lk, la := leg(-1)
	rh, rk, ra := leg(1)
	lh.Name, lk.Name, la.Name = pose.LeftHip, pose.LeftKnee, pose.LeftAnkle
	rh.Name, rk.Name, ra.Name = pose.RightHip, pose.RightKnee, pose.RightAnkle

	// Torso and head sit above the hip line so there is no forward lean.
	hipY := lh.Y
	shoulderY := hipY - torsoLength
	noseY := shoulderY - 70.0

	kp := func(name string, x, y float64) pose.Keypoint {
		return pose.Keypoint{Name: name, X: x, Y: y, Confidence: skeletonConf}
	}

	// Arms swing from hanging at the sides to fully overhead.
	wristY := shoulderY + 150 - p.wristRaise*300
	wristDx := shoulderHalfWidth + 20 + p.wristRaise*10
	elbowY := shoulderY + 80 - p.wristRaise*160

	return pose.Frame{
		TimestampMs: tMs,
		Keypoints: []pose.Keypoint{
			kp(pose.Nose, skeletonCenterX, noseY),
			kp(pose.LeftEye, skeletonCenterX-15, noseY-10),
			kp(pose.RightEye, skeletonCenterX+15, noseY-10),
			kp(pose.LeftEar, skeletonCenterX-30, noseY-5),
			kp(pose.RightEar, skeletonCenterX+30, noseY-5),
			kp(pose.LeftShoulder, skeletonCenterX-shoulderHalfWidth, shoulderY),
			kp(pose.RightShoulder, skeletonCenterX+shoulderHalfWidth, shoulderY),
			kp(pose.LeftElbow, skeletonCenterX-shoulderHalfWidth-15, elbowY),
			kp(pose.RightElbow, skeletonCenterX+shoulderHalfWidth+15, elbowY),
			kp(pose.LeftWrist, skeletonCenterX-wristDx, wristY),
			kp(pose.RightWrist, skeletonCenterX+wristDx, wristY),
			lh, rh, lk, rk, la, ra,
		},
	}
}
