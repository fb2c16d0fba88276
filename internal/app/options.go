package app

import (
	"fmt"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/capture"
	"github.com/ayusman/handarcade/internal/config"
	"github.com/ayusman/handarcade/internal/detector"
	"github.com/ayusman/handarcade/internal/gesture"
	"github.com/ayusman/handarcade/internal/render"
)

// FromEnv maps the process configuration onto the driver's Config. Store and
// the hubs are left for the caller to wire.
func FromEnv(c config.Config) (Config, error) {
	tracker, err := detector.ParseTracker(c.Tracker)
	if err != nil {
		return Config{}, fmt.Errorf("tracker: %w", err)
	}

	det := detector.DefaultConfig()
	det.Tracker = tracker

	eng := arcade.DefaultConfig()
	eng.Gesture.Rule = RaiseRule(tracker)
	eng.Smoothing.Window = c.SmoothingWindow
	eng.Smoothing.Alpha = c.SmoothingAlpha
	eng.Session.ConfirmFrames = c.ConfirmFrames
	eng.Session.SessionSeconds = c.SessionSeconds
	eng.Session.TickRate = c.TickRate
	eng.Seed = c.Seed

	cam := capture.DefaultConfig()
	cam.DeviceID = c.CameraID
	cam.Mirror = c.Mirror
	cam.FPS = c.TickRate

	rnd := render.DefaultConfig()
	rnd.Area = eng.Area

	return Config{
		PluginDir:     c.PluginDir,
		PluginTimeout: c.PluginTimeout,
		Camera:        cam,
		Detector:      det,
		Engine:        eng,
		Render:        rnd,
		MotionThresh:  c.MotionThreshold,
	}, nil
}

// RaiseRule picks the raise rule for a tracker. A hand counts as raised when
// it is in the upper half with the fingers above the wrist; a pose compares
// the wrist with its shoulder.
func RaiseRule(t detector.Tracker) gesture.Rule {
	if t == detector.TrackerPose {
		return gesture.RuleAboveReference
	}
	return gesture.RuleAboveLineAndReference
}
