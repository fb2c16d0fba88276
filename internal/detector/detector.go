package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/geom"
)

// Detector defines the interface for landmark tracker implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks found.
	// An empty Result means nothing was detected.
	Detect(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// Tracker selects hand or pose landmarks (default: hand).
	Tracker Tracker

	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// MinVisibility is the pose landmark visibility below which a wrist is ignored.
	MinVisibility float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Tracker:         TrackerHand,
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
		MinVisibility:   0.5,
	}
}

// ToFrame converts a detection into the engine's per-frame sample. Hands use
// the wrist as cursor and the middle fingertip as reference; poses use the
// higher wrist and the shoulder on the same side.
func ToFrame(r Result, cfg Config) arcade.Frame {
	if cfg.Tracker == TrackerPose {
		for i := range r.Poses {
			p := &r.Poses[i]
			wi, si := p.RaisedWrist()
			if p.Visibility[wi] < cfg.MinVisibility {
				continue
			}
			wrist, shoulder := p.Points[wi], p.Points[si]
			return arcade.Frame{
				Detected:     true,
				Wrist:        geom.Vec2{X: wrist.X, Y: wrist.Y},
				Reference:    geom.Vec2{X: shoulder.X, Y: shoulder.Y},
				HasReference: true,
			}
		}
		return arcade.Frame{}
	}

	hand, ok := r.PrimaryHand()
	if !ok {
		return arcade.Frame{}
	}
	wrist, tip := hand.Points[Wrist], hand.Points[MiddleTip]
	return arcade.Frame{
		Detected:     true,
		Wrist:        geom.Vec2{X: wrist.X, Y: wrist.Y},
		Reference:    geom.Vec2{X: tip.X, Y: tip.Y},
		HasReference: true,
	}
}
