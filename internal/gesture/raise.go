// Package gesture derives discrete "hand raised" events from raw landmark
// positions. It works on unsmoothed tracker output so a confirmation hold is
// not delayed by the cursor filter.
package gesture

import "math"

// Rule selects how "raised" is decided from the wrist and reference landmarks.
type Rule string

const (
	// RuleAboveLine raises when the wrist is above a fixed fraction of the frame height.
	RuleAboveLine Rule = "above_line"
	// RuleAboveReference raises when the wrist is above a reference landmark
	// such as the shoulder of a pose skeleton.
	RuleAboveReference Rule = "above_reference"
	// RuleAboveLineAndReference requires both: the wrist in the upper part of the
	// frame and the reference (the middle fingertip of a hand) above the wrist.
	RuleAboveLineAndReference Rule = "above_line_and_reference"
)

// DefaultThreshold is the normalized frame height used by the line rules.
const DefaultThreshold = 0.5

// State is the detector output for one frame.
type State struct {
	Up         bool `json:"up"`
	RisingEdge bool `json:"rising_edge"`
	Dwell      int  `json:"dwell"`
}

// Config holds configuration options for the Detector.
type Config struct {
	Rule      Rule
	Threshold float64
}

// DefaultConfig returns the frame-relative rule with a threshold of half the frame height.
func DefaultConfig() Config {
	return Config{
		Rule:      RuleAboveLine,
		Threshold: DefaultThreshold,
	}
}

// Detector tracks the raised state across frames. The only carried state is
// the previous frame's State.
type Detector struct {
	rule      Rule
	threshold float64
	prev      State
}

// NewDetector creates a Detector. An empty rule selects RuleAboveLine and a
// threshold outside (0,1) selects DefaultThreshold.
func NewDetector(cfg Config) *Detector {
	if cfg.Rule == "" {
		cfg.Rule = RuleAboveLine
	}
	if cfg.Threshold <= 0 || cfg.Threshold >= 1 {
		cfg.Threshold = DefaultThreshold
	}
	return &Detector{
		rule:      cfg.Rule,
		threshold: cfg.Threshold,
	}
}

// Update evaluates one frame. Y grows downward in normalized input space, so
// "above" means a smaller Y. When present is false the hand is never treated
// as raised. A NaN referenceY never satisfies a reference rule.
func (d *Detector) Update(present bool, wristY, referenceY float64) State {
	up := present && d.raised(wristY, referenceY)
	d.prev = Next(d.prev, up)
	return d.prev
}

// State returns the most recent output without advancing.
func (d *Detector) State() State {
	return d.prev
}

// Reset forgets the carried state.
func (d *Detector) Reset() {
	d.prev = State{}
}

func (d *Detector) raised(wristY, referenceY float64) bool {
	if math.IsNaN(wristY) {
		return false
	}
	switch d.rule {
	case RuleAboveReference:
		return wristY < referenceY
	case RuleAboveLineAndReference:
		return wristY < d.threshold && referenceY < wristY
	default:
		return wristY < d.threshold
	}
}

// Next computes the State following prev given this frame's raised value.
// RisingEdge is set only on a false to true transition and Dwell counts
// consecutive raised frames, dropping to zero on the first lowered frame.
func Next(prev State, up bool) State {
	if !up {
		return State{}
	}
	return State{
		Up:         true,
		RisingEdge: !prev.Up,
		Dwell:      prev.Dwell + 1,
	}
}
