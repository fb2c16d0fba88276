package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestToFrame_Hand(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("no hands is not detected", func(t *testing.T) {
		f := ToFrame(Result{}, cfg)
		if f.Detected {
			t.Error("expected no detection")
		}
	})

	t.Run("wrist and middle fingertip", func(t *testing.T) {
		hand := RaisedHandLandmarks()
		f := ToFrame(Result{Hands: []HandLandmarks{hand}}, cfg)

		if !f.Detected || !f.HasReference {
			t.Fatalf("frame = %+v, want detection with reference", f)
		}
		if math.Abs(f.Wrist.Y-hand.Points[Wrist].Y) > epsilon {
			t.Errorf("wrist y = %f, want %f", f.Wrist.Y, hand.Points[Wrist].Y)
		}
		if math.Abs(f.Reference.Y-hand.Points[MiddleTip].Y) > epsilon {
			t.Errorf("reference y = %f, want %f", f.Reference.Y, hand.Points[MiddleTip].Y)
		}
	})

	t.Run("highest score wins", func(t *testing.T) {
		low := LoweredHandLandmarks()
		low.Score = 0.6
		high := RaisedHandLandmarks()
		high.Score = 0.99

		f := ToFrame(Result{Hands: []HandLandmarks{low, high}}, cfg)
		if math.Abs(f.Wrist.Y-high.Points[Wrist].Y) > epsilon {
			t.Errorf("picked wrist y = %f, want %f", f.Wrist.Y, high.Points[Wrist].Y)
		}
	})

	t.Run("poses are ignored in hand mode", func(t *testing.T) {
		f := ToFrame(Result{Poses: []PoseLandmarks{RaisedArmPose()}}, cfg)
		if f.Detected {
			t.Error("hand tracker used a pose")
		}
	})
}

func TestToFrame_Pose(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracker = TrackerPose

	t.Run("raised wrist and its shoulder", func(t *testing.T) {
		pose := RaisedArmPose()
		f := ToFrame(Result{Poses: []PoseLandmarks{pose}}, cfg)

		if !f.Detected {
			t.Fatal("expected detection")
		}
		if f.Wrist.Y != pose.Points[PoseRightWrist].Y {
			t.Errorf("wrist y = %f, want right wrist %f", f.Wrist.Y, pose.Points[PoseRightWrist].Y)
		}
		if f.Reference.Y != pose.Points[PoseRightShoulder].Y {
			t.Errorf("reference y = %f, want right shoulder %f", f.Reference.Y, pose.Points[PoseRightShoulder].Y)
		}
		if f.Wrist.Y >= f.Reference.Y {
			t.Error("raised arm should put the wrist above the shoulder")
		}
	})

	t.Run("resting pose keeps wrists below shoulders", func(t *testing.T) {
		f := ToFrame(Result{Poses: []PoseLandmarks{RestingPose()}}, cfg)
		if !f.Detected || f.Wrist.Y <= f.Reference.Y {
			t.Errorf("frame = %+v, want wrist below shoulder", f)
		}
	})

	t.Run("invisible wrist is skipped", func(t *testing.T) {
		pose := RaisedArmPose()
		pose.Visibility[PoseRightWrist] = 0.1
		f := ToFrame(Result{Poses: []PoseLandmarks{pose}}, cfg)
		if f.Detected {
			t.Error("expected no detection for an invisible wrist")
		}
	})
}

func TestParseTracker(t *testing.T) {
	for _, s := range []string{"hand", "pose"} {
		if got, err := ParseTracker(s); err != nil || string(got) != s {
			t.Errorf("ParseTracker(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseTracker("face"); err == nil {
		t.Error("expected error for unknown tracker")
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("hands and poses", func(t *testing.T) {
		line := `{"hands":[{"points":[{"x":0.5,"y":0.4,"z":0}],"handedness":"Left","score":0.9}],` +
			`"poses":[{"points":[{"x":0.1,"y":0.2,"z":0,"visibility":0.8}],"score":0.7}]}`
		r, err := parseResponse([]byte(line))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(r.Hands) != 1 || r.Hands[0].Handedness != "Left" || r.Hands[0].Points[Wrist].Y != 0.4 {
			t.Errorf("hands = %+v", r.Hands)
		}
		if len(r.Poses) != 1 || r.Poses[0].Visibility[0] != 0.8 {
			t.Errorf("poses = %+v", r.Poses)
		}
	})

	t.Run("empty frame", func(t *testing.T) {
		r, err := parseResponse([]byte(`{"hands":[],"poses":[]}`))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if !r.Empty() {
			t.Error("expected empty result")
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := parseResponse([]byte(`not json`)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty result by default", func(t *testing.T) {
		m := NewMockDetector()
		r, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Empty() {
			t.Errorf("expected empty result, got %+v", r)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		m := NewMockDetector()
		m.SetHands([]HandLandmarks{RaisedHandLandmarks()})
		r, _ := m.Detect(nil)
		if len(r.Hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(r.Hands))
		}
		if m.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", m.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		m := NewMockDetector()
		want := errors.New("detection failed")
		m.SetError(want)
		if _, err := m.Detect(nil); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = NewMockDetector()
	})
}

func TestPresetLandmarks(t *testing.T) {
	raised := RaisedHandLandmarks()
	if raised.Points[Wrist].Y >= 0.5 {
		t.Errorf("raised wrist y = %f, want upper half", raised.Points[Wrist].Y)
	}
	if raised.Points[MiddleTip].Y >= raised.Points[Wrist].Y {
		t.Error("raised middle fingertip should be above the wrist")
	}

	lowered := LoweredHandLandmarks()
	if lowered.Points[Wrist].Y <= 0.5 {
		t.Errorf("lowered wrist y = %f, want lower half", lowered.Points[Wrist].Y)
	}
}
