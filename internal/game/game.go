// Package game implements the mini-game models driven by the smoothed cursor
// and the raise gesture: projectile slicing, obstacle dodging, shape tracing,
// speed tapping and a side-scrolling runner that jumps on each raise.
//
// Every model runs on a fixed timestep of one step per rendered frame. A step
// first runs the model's spawn policy and then moves, collides and scores its
// entities. Models never block and never read the clock.
package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/ayusman/handarcade/internal/geom"
)

// Exercise identifies one of the mini-games.
type Exercise int

const (
	FruitSlicer Exercise = iota
	DodgeObstacles
	ShapeTrace
	SpeedTapper
	DinoRunner
)

// Exercises is the fixed order the session cycles through.
var Exercises = []Exercise{FruitSlicer, DodgeObstacles, ShapeTrace, SpeedTapper, DinoRunner}

// String returns the menu label of the exercise.
func (e Exercise) String() string {
	switch e {
	case FruitSlicer:
		return "Fruit Slicer"
	case DodgeObstacles:
		return "Dodge Obstacles"
	case ShapeTrace:
		return "Shape Trace"
	case SpeedTapper:
		return "Speed Tapper"
	case DinoRunner:
		return "Dino Runner"
	default:
		return fmt.Sprintf("Exercise(%d)", int(e))
	}
}

// Slug returns a stable identifier used for storage and URLs.
func (e Exercise) Slug() string {
	switch e {
	case FruitSlicer:
		return "fruit-slicer"
	case DodgeObstacles:
		return "dodge-obstacles"
	case ShapeTrace:
		return "shape-trace"
	case SpeedTapper:
		return "speed-tapper"
	case DinoRunner:
		return "dino-runner"
	default:
		return fmt.Sprintf("exercise-%d", int(e))
	}
}

// ParseExercise resolves a slug produced by Slug.
func ParseExercise(slug string) (Exercise, bool) {
	for _, e := range Exercises {
		if e.Slug() == slug {
			return e, true
		}
	}
	return 0, false
}

// MarshalText encodes the exercise as its slug.
func (e Exercise) MarshalText() ([]byte, error) {
	return []byte(e.Slug()), nil
}

// UnmarshalText decodes a slug.
func (e *Exercise) UnmarshalText(text []byte) error {
	ex, ok := ParseExercise(string(text))
	if !ok {
		return fmt.Errorf("unknown exercise %q", text)
	}
	*e = ex
	return nil
}

// Input is the per-frame cursor handed to a model. Jump is set on the single
// frame a raise begins.
type Input struct {
	Cursor   geom.Vec2
	Detected bool
	Jump     bool
}

// EventKind names something that happened during a step.
type EventKind string

const (
	EventSliced        EventKind = "sliced"
	EventHit           EventKind = "hit"
	EventDodged        EventKind = "dodged"
	EventNodeHit       EventKind = "node_hit"
	EventShapeComplete EventKind = "shape_complete"
	EventTapped        EventKind = "tapped"
	EventExpired       EventKind = "expired"
	EventJumped        EventKind = "jumped"
	EventRan           EventKind = "ran"
	EventCrashed       EventKind = "crashed"
	EventRestarted     EventKind = "restarted"
)

// Event records one scoring or lifecycle occurrence, in the order it happened.
// Index carries the node index for trace events.
type Event struct {
	Kind   EventKind `json:"kind"`
	Points int       `json:"points"`
	Frame  int       `json:"frame"`
	Index  int       `json:"index,omitempty"`
}

// Outcome is the result of advancing a model.
type Outcome struct {
	ScoreDelta int
	Events     []Event
}

func (o *Outcome) add(e Event) {
	o.ScoreDelta += e.Points
	o.Events = append(o.Events, e)
}

func (o *Outcome) merge(other Outcome) {
	o.ScoreDelta += other.ScoreDelta
	o.Events = append(o.Events, other.Events...)
}

// Model is the contract shared by the mini-games.
type Model interface {
	// Exercise identifies the model variant.
	Exercise() Exercise
	// SpawnTick runs the spawn policy for one frame.
	SpawnTick()
	// Advance runs frames fixed steps, each spawning then updating.
	Advance(frames int, in Input) Outcome
	// RenderState returns a snapshot the renderer may keep; it shares no memory with the model.
	RenderState() RenderState
}

// Entity is anything a cursor can be tested against.
type Entity interface {
	Position() geom.Vec2
	HitRadius() float64
}

// touches reports whether the cursor is within the entity radius plus reach.
func touches(cursor geom.Vec2, e Entity, reach float64) bool {
	return geom.Distance(cursor, e.Position()) < e.HitRadius()+reach
}

// Stats are the per-exercise counters shown in the HUD.
type Stats struct {
	Slices    int `json:"slices"`
	Hits      int `json:"hits"`
	Dodges    int `json:"dodges"`
	Completed int `json:"completed"`
	Taps      int `json:"taps"`
	Expired   int `json:"expired"`
	Jumps     int `json:"jumps"`
	Crashes   int `json:"crashes"`
	BestRun   int `json:"best_run"`
}

// Config holds configuration options shared by all models.
type Config struct {
	Area geom.Bounds
}

// DefaultArea is the play area of the original layout, excluding the camera panel.
var DefaultArea = geom.Bounds{Width: 800, Height: 600}

// DefaultConfig returns a Config using DefaultArea.
func DefaultConfig() Config {
	return Config{Area: DefaultArea}
}

// New creates an empty model for the exercise.
func New(ex Exercise, cfg Config, rng *rand.Rand) (Model, error) {
	if cfg.Area.Width <= 0 || cfg.Area.Height <= 0 {
		return nil, fmt.Errorf("invalid play area %vx%v", cfg.Area.Width, cfg.Area.Height)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	switch ex {
	case FruitSlicer:
		return NewSlicer(cfg, rng), nil
	case DodgeObstacles:
		return NewDodge(cfg, rng), nil
	case ShapeTrace:
		t, err := NewTrace(cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	case SpeedTapper:
		return NewTapper(cfg, rng), nil
	case DinoRunner:
		return NewRunner(cfg, rng), nil
	default:
		return nil, fmt.Errorf("unknown exercise %d", int(ex))
	}
}

// randInt returns a uniform integer in [lo, hi].
func randInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// outside reports whether p has left the area by more than margin on any side.
func outside(area geom.Bounds, p geom.Vec2, margin float64) bool {
	return !area.Contains(p, -margin)
}
