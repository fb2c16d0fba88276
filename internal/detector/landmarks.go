// Package detector provides the landmark tracker collaborator: landmark types
// for hands and body poses, a MediaPipe-backed implementation and a mock.
package detector

import "fmt"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbTip     = 4
	IndexMCP     = 5
	IndexTip     = 8
	MiddleMCP    = 9
	MiddleTip    = 12
	RingTip      = 16
	PinkyMCP     = 17
	PinkyTip     = 20
	NumLandmarks = 21
)

// Pose landmark indices following the MediaPipe 33-point convention.
const (
	PoseNose          = 0
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	PoseLeftHip       = 23
	PoseRightHip      = 24
	NumPoseLandmarks  = 33
)

// Tracker selects which landmark model drives the cursor.
type Tracker string

const (
	TrackerHand Tracker = "hand"
	TrackerPose Tracker = "pose"
)

// ParseTracker validates a tracker name.
func ParseTracker(s string) (Tracker, error) {
	switch Tracker(s) {
	case TrackerHand, TrackerPose:
		return Tracker(s), nil
	default:
		return "", fmt.Errorf("unknown tracker %q", s)
	}
}

// Point3D is a landmark in normalized image coordinates. X and Y are in [0,1]
// with Y growing downward; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// PoseLandmarks represents the 33 body landmarks detected by MediaPipe.
// Visibility holds the per-landmark presence likelihood.
type PoseLandmarks struct {
	Points     [NumPoseLandmarks]Point3D `json:"points"`
	Visibility [NumPoseLandmarks]float64 `json:"visibility"`
	Score      float64                   `json:"score"`
}

// Result is everything the tracker found in one frame.
type Result struct {
	Hands []HandLandmarks `json:"hands"`
	Poses []PoseLandmarks `json:"poses"`
}

// Empty reports whether nothing was detected.
func (r Result) Empty() bool {
	return len(r.Hands) == 0 && len(r.Poses) == 0
}

// PrimaryHand returns the highest scoring hand.
func (r Result) PrimaryHand() (HandLandmarks, bool) {
	if len(r.Hands) == 0 {
		return HandLandmarks{}, false
	}
	best := r.Hands[0]
	for _, h := range r.Hands[1:] {
		if h.Score > best.Score {
			best = h
		}
	}
	return best, true
}

// RaisedWrist returns the landmark indices of the higher wrist of the pose
// and of the shoulder on the same side.
func (p *PoseLandmarks) RaisedWrist() (wrist, shoulder int) {
	if p.Points[PoseLeftWrist].Y < p.Points[PoseRightWrist].Y {
		return PoseLeftWrist, PoseLeftShoulder
	}
	return PoseRightWrist, PoseRightShoulder
}
