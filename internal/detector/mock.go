package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = Result{Hands: hands}
}

// SetPoses sets the poses that will be returned by Detect.
func (m *MockDetector) SetPoses(poses []PoseLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = Result{Poses: poses}
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// handAt builds an open hand with the wrist at (x, y) and fingers pointing up.
func handAt(x, y float64) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	for i := 0; i < NumLandmarks; i++ {
		finger := float64((i+3)/4) // 0 for the wrist, 1..5 per finger
		joint := float64((i + 3) % 4)
		h.Points[i] = Point3D{
			X: x + (finger-3)*0.03,
			Y: y - 0.04 - joint*0.03,
		}
	}
	h.Points[Wrist] = Point3D{X: x, Y: y}
	return h
}

// RaisedHandLandmarks returns a hand held in the upper part of the frame with
// the middle fingertip above the wrist.
func RaisedHandLandmarks() HandLandmarks {
	return handAt(0.5, 0.3)
}

// LoweredHandLandmarks returns a hand held in the lower part of the frame.
func LoweredHandLandmarks() HandLandmarks {
	return handAt(0.5, 0.75)
}

// poseWithWrists builds a standing pose with the given wrist heights.
func poseWithWrists(leftY, rightY float64) PoseLandmarks {
	p := PoseLandmarks{Score: 0.9}
	for i := range p.Visibility {
		p.Visibility[i] = 0.9
	}
	p.Points[PoseNose] = Point3D{X: 0.5, Y: 0.2}
	p.Points[PoseLeftShoulder] = Point3D{X: 0.6, Y: 0.4}
	p.Points[PoseRightShoulder] = Point3D{X: 0.4, Y: 0.4}
	p.Points[PoseLeftElbow] = Point3D{X: 0.65, Y: (0.4 + leftY) / 2}
	p.Points[PoseRightElbow] = Point3D{X: 0.35, Y: (0.4 + rightY) / 2}
	p.Points[PoseLeftWrist] = Point3D{X: 0.68, Y: leftY}
	p.Points[PoseRightWrist] = Point3D{X: 0.32, Y: rightY}
	p.Points[PoseLeftHip] = Point3D{X: 0.57, Y: 0.7}
	p.Points[PoseRightHip] = Point3D{X: 0.43, Y: 0.7}
	return p
}

// RaisedArmPose returns a pose with the right wrist above its shoulder.
func RaisedArmPose() PoseLandmarks {
	return poseWithWrists(0.65, 0.2)
}

// RestingPose returns a pose with both wrists below the shoulders.
func RestingPose() PoseLandmarks {
	return poseWithWrists(0.65, 0.66)
}
