// Package smoothing turns the tracker's noisy, gap-prone cursor samples into a
// stable position in game-pixel space.
package smoothing

import "github.com/ayusman/handarcade/internal/geom"

// Smoothing defaults.
const (
	// DefaultWindow is the number of detections averaged before exponential smoothing.
	DefaultWindow = 5
	// DefaultAlpha weights the window mean against the previous output.
	// Lower values are smoother but lag more.
	DefaultAlpha = 0.3
)

// RawPoint is one tracker sample in normalized [0,1]x[0,1] input space.
type RawPoint struct {
	X        float64
	Y        float64
	Detected bool
}

// Config holds configuration options for the Smoother.
type Config struct {
	Window int
	Alpha  float64
	Area   geom.Bounds
}

// DefaultConfig returns a Config for the given play area with the default window and alpha.
func DefaultConfig(area geom.Bounds) Config {
	return Config{
		Window: DefaultWindow,
		Alpha:  DefaultAlpha,
		Area:   area,
	}
}

// Smoother applies a moving average over the last Window detections followed by
// an exponential moving average against the previously published position.
//
// While detections are missing the window is cleared and the last published
// position is held. The first detection after a gap is blended with that held
// position through the same formula, so the cursor eases toward the new point
// over a few frames instead of snapping to it.
type Smoother struct {
	window   int
	alpha    float64
	area     geom.Bounds
	buffer   []geom.Vec2
	smoothed geom.Vec2
}

// New creates a Smoother. The published position starts at the play-area center.
// Non-positive windows and alphas outside (0,1] fall back to the defaults.
func New(cfg Config) *Smoother {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = DefaultAlpha
	}

	return &Smoother{
		window:   cfg.Window,
		alpha:    cfg.Alpha,
		area:     cfg.Area,
		buffer:   make([]geom.Vec2, 0, cfg.Window),
		smoothed: cfg.Area.Center(),
	}
}

// Update feeds one frame's sample and returns the published position.
func (s *Smoother) Update(raw RawPoint) geom.Vec2 {
	if !raw.Detected {
		s.buffer = s.buffer[:0]
		return s.smoothed
	}

	p := s.area.FromNormalized(raw.X, raw.Y)

	// Drop the oldest sample once the window is full
	if len(s.buffer) >= s.window {
		copy(s.buffer, s.buffer[1:])
		s.buffer = s.buffer[:s.window-1]
	}
	s.buffer = append(s.buffer, p)

	mean := s.mean()
	s.smoothed = mean.Scale(s.alpha).Add(s.smoothed.Scale(1 - s.alpha))
	return s.smoothed
}

// Position returns the last published position without advancing the filter.
func (s *Smoother) Position() geom.Vec2 {
	return s.smoothed
}

// Buffered returns the number of samples currently in the averaging window.
func (s *Smoother) Buffered() int {
	return len(s.buffer)
}

// Reset clears the window and re-centers the published position.
func (s *Smoother) Reset() {
	s.buffer = s.buffer[:0]
	s.smoothed = s.area.Center()
}

func (s *Smoother) mean() geom.Vec2 {
	if len(s.buffer) == 0 {
		return s.smoothed
	}

	var sumX, sumY float64
	for _, p := range s.buffer {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(s.buffer))
	return geom.Vec2{X: sumX / n, Y: sumY / n}
}
