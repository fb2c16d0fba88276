// Package arcade runs one frame of the game core: it smooths the tracker
// sample into a cursor, derives the raise gesture, advances the session and
// returns a snapshot for the renderer.
//
// The engine owns no loop and performs no I/O. A driver calls Tick once per
// rendered frame; other goroutines may read the latest Snapshot concurrently.
package arcade

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/geom"
	"github.com/ayusman/handarcade/internal/gesture"
	"github.com/ayusman/handarcade/internal/session"
	"github.com/ayusman/handarcade/internal/smoothing"
)

// DefaultTrailLength is the number of recent cursor positions kept for drawing.
const DefaultTrailLength = 15

// Frame is one tracker sample. Wrist and Reference are normalized to [0,1]
// with Y growing downward. Reference is the secondary landmark used by the
// reference raise rules: the middle fingertip of a hand or a shoulder of a pose.
type Frame struct {
	Detected     bool
	Wrist        geom.Vec2
	Reference    geom.Vec2
	HasReference bool
}

// Config holds configuration options for the Engine.
type Config struct {
	Area        geom.Bounds
	Smoothing   smoothing.Config
	Gesture     gesture.Config
	Session     session.Config
	TrailLength int
	// Seed makes spawns reproducible. Zero seeds from the runtime source.
	Seed uint64
}

// DefaultConfig returns the default configuration for the default play area.
func DefaultConfig() Config {
	area := game.DefaultArea
	return Config{
		Area:        area,
		Smoothing:   smoothing.DefaultConfig(area),
		Gesture:     gesture.DefaultConfig(),
		Session:     session.DefaultConfig(),
		TrailLength: DefaultTrailLength,
	}
}

// ExerciseInfo describes a menu entry.
type ExerciseInfo struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	Best int    `json:"best"`
}

// Snapshot is everything a renderer needs for one frame. It shares no memory
// with the engine.
type Snapshot struct {
	Tick          uint64            `json:"tick"`
	Mode          session.Mode      `json:"mode"`
	Exercise      game.Exercise     `json:"exercise"`
	ExerciseIndex int               `json:"exercise_index"`
	Exercises     []ExerciseInfo    `json:"exercises"`
	Score         int               `json:"score"`
	Best          int               `json:"best"`
	Elapsed       int               `json:"elapsed_frames"`
	Remaining     int               `json:"remaining_seconds"`
	Confirm       float64           `json:"confirm"`
	Detected      bool              `json:"detected"`
	Cursor        geom.Vec2         `json:"cursor"`
	Trail         []geom.Vec2       `json:"trail"`
	Gesture       gesture.State     `json:"gesture"`
	Game          *game.RenderState `json:"game,omitempty"`
	Events        []game.Event      `json:"events,omitempty"`
	Transition    bool              `json:"transition"`
}

// Engine wires the smoother, the gesture detector and the session machine.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	smoother *smoothing.Smoother
	detector *gesture.Detector
	machine  *session.Machine
	trail    []geom.Vec2
	best     map[game.Exercise]int
	sinks    []func(session.Result)
	seed     uint64
	runs     uint64
	tick     uint64
	last     Snapshot
}

// New creates an Engine in the menu. Zero-valued sub-configs fall back to
// their defaults.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Area.Width <= 0 || cfg.Area.Height <= 0 {
		cfg.Area = def.Area
	}
	if cfg.Smoothing.Area.Width <= 0 || cfg.Smoothing.Area.Height <= 0 {
		cfg.Smoothing.Area = cfg.Area
	}
	if cfg.TrailLength <= 0 {
		cfg.TrailLength = DefaultTrailLength
	}

	e := &Engine{
		cfg:      cfg,
		smoother: smoothing.New(cfg.Smoothing),
		detector: gesture.NewDetector(cfg.Gesture),
		trail:    make([]geom.Vec2, 0, cfg.TrailLength),
		best:     make(map[game.Exercise]int),
		seed:     cfg.Seed,
	}
	if e.seed == 0 {
		e.seed = rand.Uint64()
	}
	e.machine = session.New(cfg.Session, e.newModel)
	e.machine.OnComplete(e.complete)
	e.last = e.snapshot(session.Step{Mode: session.Menu}, false)
	return e
}

// newModel builds a model with its own deterministic stream per run.
func (e *Engine) newModel(ex game.Exercise) (game.Model, error) {
	e.runs++
	rng := rand.New(rand.NewPCG(e.seed, e.runs))
	return game.New(ex, game.Config{Area: e.cfg.Area}, rng)
}

func (e *Engine) complete(r session.Result) {
	if r.Score > e.best[r.Exercise] {
		e.best[r.Exercise] = r.Score
	}
	for _, fn := range e.sinks {
		fn(r)
	}
}

// OnComplete registers fn to receive every finished session. fn runs on the
// ticking goroutine while the engine is locked and must not call back into it.
func (e *Engine) OnComplete(fn func(session.Result)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, fn)
}

// SetBest seeds the best score shown for an exercise, typically from storage.
func (e *Engine) SetBest(ex game.Exercise, score int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if score > e.best[ex] {
		e.best[ex] = score
	}
	e.last = e.snapshotLocked(e.last)
}

// Select chooses the exercise from the menu.
func (e *Engine) Select(ex game.Exercise) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.machine.Select(ex); err != nil {
		return err
	}
	e.last = e.snapshotLocked(e.last)
	return nil
}

// Tick advances the core by one frame. A non-nil error is not fatal: the
// snapshot is still valid and the session stays where it was.
func (e *Engine) Tick(f Frame) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	cursor := e.smoother.Update(smoothing.RawPoint{X: f.Wrist.X, Y: f.Wrist.Y, Detected: f.Detected})

	ref := math.NaN()
	if f.HasReference {
		ref = f.Reference.Y
	}
	e.detector.Update(f.Detected, f.Wrist.Y, ref)

	if f.Detected {
		if len(e.trail) == e.cfg.TrailLength {
			copy(e.trail, e.trail[1:])
			e.trail = e.trail[:len(e.trail)-1]
		}
		e.trail = append(e.trail, cursor)
	} else {
		e.trail = e.trail[:0]
	}

	g := e.detector.State()
	step, err := e.machine.Tick(g, game.Input{Cursor: cursor, Detected: f.Detected, Jump: g.RisingEdge})
	e.last = e.snapshot(step, f.Detected)
	return e.cloneSnapshot(), err
}

// Snapshot returns the snapshot produced by the latest Tick.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cloneSnapshot()
}

// Best returns the best score seen for an exercise.
func (e *Engine) Best(ex game.Exercise) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.best[ex]
}

func (e *Engine) snapshot(step session.Step, detected bool) Snapshot {
	st := e.machine.State()
	s := Snapshot{
		Tick:          e.tick,
		Mode:          st.Mode,
		Exercise:      st.Exercise,
		ExerciseIndex: st.ExerciseIndex,
		Score:         st.Score,
		Elapsed:       st.Elapsed,
		Remaining:     st.Remaining,
		Confirm:       st.Confirm,
		Detected:      detected,
		Cursor:        e.smoother.Position(),
		Trail:         append([]geom.Vec2(nil), e.trail...),
		Gesture:       e.detector.State(),
		Events:        step.Outcome.Events,
		Transition:    step.Transition,
	}
	if m := e.machine.Model(); m != nil {
		rs := m.RenderState()
		s.Game = &rs
	}
	return e.snapshotLocked(s)
}

// snapshotLocked refreshes the fields that can change between ticks.
func (e *Engine) snapshotLocked(s Snapshot) Snapshot {
	st := e.machine.State()
	s.Exercise = st.Exercise
	s.ExerciseIndex = st.ExerciseIndex
	s.Best = e.best[st.Exercise]
	s.Exercises = make([]ExerciseInfo, len(game.Exercises))
	for i, ex := range game.Exercises {
		s.Exercises[i] = ExerciseInfo{Slug: ex.Slug(), Name: ex.String(), Best: e.best[ex]}
	}
	return s
}

// cloneSnapshot copies the slices of the latest snapshot so callers can keep it.
func (e *Engine) cloneSnapshot() Snapshot {
	s := e.last
	s.Trail = append([]geom.Vec2(nil), s.Trail...)
	s.Exercises = append([]ExerciseInfo(nil), s.Exercises...)
	s.Events = append([]game.Event(nil), s.Events...)
	if s.Game != nil {
		rs := s.Game.Clone()
		s.Game = &rs
	}
	return s
}
