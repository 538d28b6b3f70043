// ABOUTME: The 33 body landmarks reported by the pose-estimation model.
// ABOUTME: Keypoint names are matched case-insensitively against this set.
package highlight

import (
	"fmt"
	"strings"
)

// Landmark identifies one body keypoint. Values are the model's output indices.
type Landmark int

const (
	Nose Landmark = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
)

// NumLandmarks is the size of a complete pose.
const NumLandmarks = int(RightFootIndex) + 1

var landmarkNames = [NumLandmarks]string{
	"NOSE",
	"LEFT_EYE_INNER",
	"LEFT_EYE",
	"LEFT_EYE_OUTER",
	"RIGHT_EYE_INNER",
	"RIGHT_EYE",
	"RIGHT_EYE_OUTER",
	"LEFT_EAR",
	"RIGHT_EAR",
	"MOUTH_LEFT",
	"MOUTH_RIGHT",
	"LEFT_SHOULDER",
	"RIGHT_SHOULDER",
	"LEFT_ELBOW",
	"RIGHT_ELBOW",
	"LEFT_WRIST",
	"RIGHT_WRIST",
	"LEFT_PINKY",
	"RIGHT_PINKY",
	"LEFT_INDEX",
	"RIGHT_INDEX",
	"LEFT_THUMB",
	"RIGHT_THUMB",
	"LEFT_HIP",
	"RIGHT_HIP",
	"LEFT_KNEE",
	"RIGHT_KNEE",
	"LEFT_ANKLE",
	"RIGHT_ANKLE",
	"LEFT_HEEL",
	"RIGHT_HEEL",
	"LEFT_FOOT_INDEX",
	"RIGHT_FOOT_INDEX",
}

// String returns the upper-case landmark name.
func (l Landmark) String() string {
	if l < 0 || int(l) >= NumLandmarks {
		return fmt.Sprintf("Landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// Landmarks returns every landmark in index order.
func Landmarks() []Landmark {
	out := make([]Landmark, NumLandmarks)
	for i := range out {
		out[i] = Landmark(i)
	}
	return out
}

// InvalidKeypointError reports a keypoint name outside the landmark set.
type InvalidKeypointError struct {
	Name string
}

func (e *InvalidKeypointError) Error() string {
	return "Invalid keypoint: " + e.Name
}

// ParseLandmark resolves a keypoint name such as "left_wrist".
func ParseLandmark(name string) (Landmark, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range landmarkNames {
		if n == upper {
			return Landmark(i), nil
		}
	}
	return 0, &InvalidKeypointError{Name: upper}
}

// Point is a landmark position normalized to the frame, so x and y are in [0,1]
// when the landmark is inside the image.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Pose is one detected person.
type Pose struct {
	Landmarks []Point `json:"landmarks"`
}

// Point returns the requested landmark, or false when the pose does not carry it.
func (p *Pose) Point(l Landmark) (Point, bool) {
	if p == nil || l < 0 || int(l) >= len(p.Landmarks) {
		return Point{}, false
	}
	return p.Landmarks[l], true
}
