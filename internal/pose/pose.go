// Package pose provides the keypoint and frame types shared by the
// analysis pipeline, plus the geometric helpers built on them.
package pose

import "math"

// Body keypoint names following the MoveNet/COCO convention.
// See: https://www.tensorflow.org/hub/tutorials/movenet
const (
	Nose          = "nose"
	LeftEye       = "left_eye"
	RightEye      = "right_eye"
	LeftEar       = "left_ear"
	RightEar      = "right_ear"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"
	LeftAnkle     = "left_ankle"
	RightAnkle    = "right_ankle"
)

// JointNames lists all tracked joints in model output order.
var JointNames = []string{
	Nose, LeftEye, RightEye, LeftEar, RightEar,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow,
	LeftWrist, RightWrist, LeftHip, RightHip,
	LeftKnee, RightKnee, LeftAnkle, RightAnkle,
}

// Keypoint represents a single named joint observation from the pose
// detector. Coordinates are in detector space (typically pixels), Z is
// optional depth, confidence is in [0,1].
type Keypoint struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Frame is an ordered set of keypoints sharing one capture timestamp.
type Frame struct {
	Keypoints   []Keypoint `json:"keypoints"`
	TimestampMs int64      `json:"timestamp_ms"`
}

// Get returns the keypoint with the given name, or false if the frame
// does not contain it.
func (f *Frame) Get(name string) (Keypoint, bool) {
	for _, kp := range f.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Has reports whether all named joints are present with confidence at or
// above the given floor.
func (f *Frame) Has(minConfidence float64, names ...string) bool {
	for _, name := range names {
		kp, ok := f.Get(name)
		if !ok || kp.Confidence < minConfidence {
			return false
		}
	}
	return true
}

// Valid reports whether the keypoint carries finite coordinates and a
// confidence inside [0,1].
func (kp *Keypoint) Valid() bool {
	if math.IsNaN(kp.X) || math.IsInf(kp.X, 0) {
		return false
	}
	if math.IsNaN(kp.Y) || math.IsInf(kp.Y, 0) {
		return false
	}
	if math.IsNaN(kp.Z) || math.IsInf(kp.Z, 0) {
		return false
	}
	return kp.Confidence >= 0 && kp.Confidence <= 1
}

// Sanitize returns a copy of the frame with malformed keypoints dropped.
// Processing continues for the remaining points; the caller decides
// whether what is left is sufficient.
func (f *Frame) Sanitize() Frame {
	out := Frame{TimestampMs: f.TimestampMs}
	out.Keypoints = make([]Keypoint, 0, len(f.Keypoints))
	for _, kp := range f.Keypoints {
		if kp.Valid() {
			out.Keypoints = append(out.Keypoints, kp)
		}
	}
	return out
}

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point returns the keypoint position as a Point3D.
func (kp *Keypoint) Point() Point3D {
	return Point3D{X: kp.X, Y: kp.Y, Z: kp.Z}
}

// Distance calculates the Euclidean distance between two 3D points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point3D) Point3D {
	return Point3D{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

// Angle computes the interior angle at vertex b of the triangle a-b-c,
// in degrees. Used for joint angles: Angle(hip, knee, ankle) is the knee
// flexion angle. Returns 0 when either limb segment has zero length.
func Angle(a, b, c Point3D) float64 {
	abx, aby := a.X-b.X, a.Y-b.Y
	cbx, cby := c.X-b.X, c.Y-b.Y

	dot := abx*cbx + aby*cby
	magAB := math.Sqrt(abx*abx + aby*aby)
	magCB := math.Sqrt(cbx*cbx + cby*cby)

	if magAB < 1e-10 || magCB < 1e-10 {
		return 0
	}

	cos := dot / (magAB * magCB)
	// Guard against floating point drift outside acos domain
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	return math.Acos(cos) * 180 / math.Pi
}
