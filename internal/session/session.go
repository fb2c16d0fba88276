// Package session implements the Menu, Playing and Complete state machine that
// selects an exercise, runs it for a fixed number of frames and reports the result.
package session

import (
	"errors"
	"fmt"

	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/gesture"
)

// Mode is the session phase.
type Mode int

const (
	Menu Mode = iota
	Playing
	Complete
)

func (m Mode) String() string {
	switch m {
	case Menu:
		return "menu"
	case Playing:
		return "playing"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Defaults.
const (
	DefaultConfirmFrames  = 30
	DefaultSessionSeconds = 45
	DefaultTickRate       = 60
)

// ErrNotInMenu is returned when an exercise is selected outside the menu.
var ErrNotInMenu = errors.New("exercise can only be changed from the menu")

// Config holds configuration options for the Machine.
type Config struct {
	ConfirmFrames  int
	SessionSeconds int
	TickRate       int
}

// DefaultConfig returns a 45 second session at 60 ticks per second with a
// half-second confirmation hold.
func DefaultConfig() Config {
	return Config{
		ConfirmFrames:  DefaultConfirmFrames,
		SessionSeconds: DefaultSessionSeconds,
		TickRate:       DefaultTickRate,
	}
}

// SessionFrames returns the length of a session in ticks.
func (c Config) SessionFrames() int {
	return c.SessionSeconds * c.TickRate
}

// Factory builds a fresh model for an exercise.
type Factory func(ex game.Exercise) (game.Model, error)

// Result describes a finished session.
type Result struct {
	Exercise game.Exercise
	Score    int
	Frames   int
	Stats    game.Stats
}

// Step is what happened during one Tick.
type Step struct {
	Mode       Mode
	Transition bool
	Outcome    game.Outcome
}

// State is a read-only view of the machine.
type State struct {
	Mode          Mode          `json:"mode"`
	Exercise      game.Exercise `json:"exercise"`
	ExerciseIndex int           `json:"exercise_index"`
	Score         int           `json:"score"`
	Elapsed       int           `json:"elapsed_frames"`
	Remaining     int           `json:"remaining_seconds"`
	Confirm       float64       `json:"confirm"`
}

// Machine is the session state machine. It is advanced exactly once per
// rendered frame and is not safe for concurrent use.
type Machine struct {
	cfg        Config
	factory    Factory
	onComplete func(Result)

	mode    Mode
	index   int
	score   int
	elapsed int
	model   game.Model

	// dwellBase is the gesture dwell already spent on the last transition.
	// A hold must be released or extended by ConfirmFrames to fire again.
	dwellBase int
	lastDwell int
}

// New creates a Machine in Menu with the first exercise selected. Invalid
// config values fall back to the defaults.
func New(cfg Config, factory Factory) *Machine {
	def := DefaultConfig()
	if cfg.ConfirmFrames <= 0 {
		cfg.ConfirmFrames = def.ConfirmFrames
	}
	if cfg.SessionSeconds <= 0 {
		cfg.SessionSeconds = def.SessionSeconds
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	return &Machine{cfg: cfg, factory: factory}
}

// OnComplete registers fn to be called synchronously on every Playing to
// Complete transition.
func (m *Machine) OnComplete(fn func(Result)) {
	m.onComplete = fn
}

// Mode returns the current phase.
func (m *Machine) Mode() Mode { return m.mode }

// Score returns the current score.
func (m *Machine) Score() int { return m.score }

// Exercise returns the selected exercise.
func (m *Machine) Exercise() game.Exercise { return game.Exercises[m.index] }

// Model returns the active model, or nil in Menu.
func (m *Machine) Model() game.Model { return m.model }

// Select chooses the exercise the next session will run.
func (m *Machine) Select(ex game.Exercise) error {
	if m.mode != Menu {
		return ErrNotInMenu
	}
	for i, e := range game.Exercises {
		if e == ex {
			m.index = i
			return nil
		}
	}
	return fmt.Errorf("select %d: unknown exercise", int(ex))
}

// Tick advances the machine one frame. The raise gesture confirms the menu and
// completion screens; in Playing it is ignored and the active model advances.
// An error means the model for the selected exercise could not be built and
// the machine stayed in Menu.
func (m *Machine) Tick(g gesture.State, in game.Input) (Step, error) {
	confirmed := m.confirm(g)

	switch m.mode {
	case Menu:
		if confirmed {
			if err := m.start(); err != nil {
				return Step{Mode: m.mode}, err
			}
			m.dwellBase = g.Dwell
			return Step{Mode: m.mode, Transition: true}, nil
		}

	case Playing:
		m.elapsed++
		out := m.model.Advance(1, in)
		m.apply(out)
		step := Step{Mode: m.mode, Outcome: out}
		if m.elapsed >= m.cfg.SessionFrames() {
			m.finish()
			m.dwellBase = g.Dwell
			step.Mode = m.mode
			step.Transition = true
		}
		return step, nil

	case Complete:
		if confirmed {
			m.mode = Menu
			m.index = (m.index + 1) % len(game.Exercises)
			m.score = 0
			m.elapsed = 0
			m.model = nil
			m.dwellBase = g.Dwell
			return Step{Mode: m.mode, Transition: true}, nil
		}
	}
	return Step{Mode: m.mode}, nil
}

// confirm tracks the gesture dwell and reports whether an unspent hold of
// ConfirmFrames has been reached.
func (m *Machine) confirm(g gesture.State) bool {
	if g.Dwell < m.dwellBase {
		m.dwellBase = 0
	}
	m.lastDwell = g.Dwell - m.dwellBase
	return m.mode != Playing && m.lastDwell >= m.cfg.ConfirmFrames
}

func (m *Machine) start() error {
	model, err := m.factory(m.Exercise())
	if err != nil {
		return fmt.Errorf("start %s: %w", m.Exercise(), err)
	}
	m.model = model
	m.mode = Playing
	m.elapsed = 0
	return nil
}

// apply adds events in order, never letting the score go negative.
func (m *Machine) apply(out game.Outcome) {
	for _, e := range out.Events {
		m.score = max(0, m.score+e.Points)
	}
}

func (m *Machine) finish() {
	m.mode = Complete
	if m.onComplete == nil {
		return
	}
	m.onComplete(Result{
		Exercise: m.Exercise(),
		Score:    m.score,
		Frames:   m.elapsed,
		Stats:    m.model.RenderState().Stats,
	})
}

// RemainingSeconds returns the whole seconds left in the session.
func (m *Machine) RemainingSeconds() int {
	if m.mode == Menu {
		return m.cfg.SessionSeconds
	}
	return max(0, m.cfg.SessionSeconds-m.elapsed/m.cfg.TickRate)
}

// State returns a read-only view of the machine.
func (m *Machine) State() State {
	confirm := 0.0
	if m.mode != Playing {
		confirm = min(1, float64(m.lastDwell)/float64(m.cfg.ConfirmFrames))
	}
	return State{
		Mode:          m.mode,
		Exercise:      m.Exercise(),
		ExerciseIndex: m.index,
		Score:         m.score,
		Elapsed:       m.elapsed,
		Remaining:     m.RemainingSeconds(),
		Confirm:       confirm,
	}
}
