// Package tray provides a system tray menu for the arcade.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/session"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onSelect func(ex game.Exercise)
	onOpen   func()
	onQuit   func()
	enabled  bool
	status   string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuStatus    *systray.MenuItem
	menuExercises []*systray.MenuItem
}

// New creates a new Tray instance with tracking enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
		status:  "Menu",
	}
}

// OnToggle sets the callback called when tracking is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSelect sets the callback called when an exercise is picked from the menu.
func (t *Tray) OnSelect(fn func(ex game.Exercise)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSelect = fn
}

// OnOpen sets the callback called when the open item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback called when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Hand Arcade")
	systray.SetTooltip("Hand Arcade")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(t.status, "Current session")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuExercise := systray.AddMenuItem("Exercise", "Choose the exercise shown in the menu")
	t.menuExercises = make([]*systray.MenuItem, len(game.Exercises))
	for i, ex := range game.Exercises {
		t.menuExercises[i] = menuExercise.AddSubMenuItem(ex.String(), "")
	}
	t.mu.Unlock()

	menuOpen := systray.AddMenuItem("Open Arcade...", "Open the arcade in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Hand Arcade")

	for i, item := range t.menuExercises {
		ex := game.Exercises[i]
		go func() {
			for range item.ClickedCh {
				t.handleSelect(ex)
			}
		}()
	}

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// Quit stops Run without firing the quit callback.
func (t *Tray) Quit() {
	systray.Quit()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Tracking paused"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSelect(ex game.Exercise) {
	t.mu.RLock()
	callback := t.onSelect
	t.mu.RUnlock()

	if callback != nil {
		callback(ex)
	}
}

// handleOpen handles the open menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// StatusLine summarizes a snapshot in one menu line.
func StatusLine(s arcade.Snapshot) string {
	switch s.Mode {
	case session.Playing:
		return fmt.Sprintf("%s: %d pts, %ds left", s.Exercise, s.Score, s.Remaining)
	case session.Complete:
		return fmt.Sprintf("%s finished: %d pts (best %d)", s.Exercise, s.Score, s.Best)
	default:
		if s.Best > 0 {
			return fmt.Sprintf("Menu: %s (best %d)", s.Exercise, s.Best)
		}
		return fmt.Sprintf("Menu: %s", s.Exercise)
	}
}

// Update refreshes the status line and the exercise checkmarks when the
// status text changes.
func (t *Tray) Update(s arcade.Snapshot) {
	line := StatusLine(s)

	t.mu.Lock()
	defer t.mu.Unlock()

	if line == t.status {
		return
	}
	t.status = line
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(line)
	}
	for i, item := range t.menuExercises {
		if game.Exercises[i] == s.Exercise {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsEnabled returns whether tracking is enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled sets the tracking state without firing the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}
