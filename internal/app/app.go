// Package app drives the arcade: it pulls camera frames, runs the landmark
// tracker, ticks the engine and fans the result out to the stream, the
// WebSocket feed, the score store and the completion hooks.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/capture"
	"github.com/ayusman/handarcade/internal/detector"
	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/log"
	"github.com/ayusman/handarcade/internal/plugin"
	"github.com/ayusman/handarcade/internal/render"
	"github.com/ayusman/handarcade/internal/server"
	"github.com/ayusman/handarcade/internal/store"
)

// HookTimeout bounds one round of completion hooks.
const HookTimeout = 30 * time.Second

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	PluginDir     string
	PluginTimeout time.Duration

	Camera   capture.Config
	Detector detector.Config
	Engine   arcade.Config
	Render   render.Config

	// MotionThresh is the changed-pixel percentage that wakes the tracker.
	MotionThresh float64
	// GateRefresh forces a tracker pass after this many skipped still frames.
	GateRefresh int

	Frames    *server.FrameHub
	Snapshots *server.SnapshotHub
}

// App is the arcade driver.
type App struct {
	config   Config
	camera   capture.Camera
	gate     *capture.Gate
	detector detector.Detector
	engine   *arcade.Engine
	renderer *render.Renderer

	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	hooks      *plugin.Runner

	mu        sync.RWMutex
	enabled   bool
	stopCh    chan struct{}
	done      chan struct{}
	observers []func(arcade.Snapshot)

	// last is the tracker sample reused while the gate skips frames.
	last arcade.Frame

	bestMu sync.Mutex
	best   map[game.Exercise]int

	pending sync.WaitGroup
}

// New creates a new App with the given configuration. It prefers the
// MediaPipe tracker and falls back to the mock detector when the tracker
// service is not installed.
func New(config Config) *App {
	if config.Engine.Session.TickRate <= 0 {
		config.Engine.Session = arcade.DefaultConfig().Session
	}
	if config.Detector.Tracker == "" {
		config.Detector = detector.DefaultConfig()
	}
	if config.Render.Area.Width <= 0 || config.Render.Area.Height <= 0 {
		config.Render.Area = config.Engine.Area
		if config.Render.PanelWidth == 0 {
			config.Render.PanelWidth = render.DefaultPanelWidth
		}
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		gate:       capture.NewGate(config.MotionThresh, config.GateRefresh),
		engine:     arcade.New(config.Engine),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeout),
		enabled:    true,
		best:       make(map[game.Exercise]int),
	}
	if config.Frames != nil {
		a.renderer = render.New(config.Render)
	}
	if config.Store != nil {
		a.hooks = plugin.NewRunner(config.Store.Hooks(), a.pluginMgr, a.pluginExec)
	}
	a.engine.OnComplete(a.handleComplete)

	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Info("using mediapipe tracker", "tracker", config.Detector.Tracker)
	} else {
		log.Warn("mediapipe not available, using mock detector", "error", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector sets the landmark tracker implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the landmark tracker.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Engine returns the game engine.
func (a *App) Engine() *arcade.Engine {
	return a.engine
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// OnSnapshot registers fn to receive the snapshot of every tick. fn runs on
// the driver goroutine and must return quickly.
func (a *App) OnSnapshot(fn func(arcade.Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

// LoadState seeds best scores from the store and restores the last selected
// exercise and the tracking toggle.
func (a *App) LoadState() error {
	if a.config.Store == nil {
		return nil
	}

	best, err := a.config.Store.Scores().BestByExercise()
	if err != nil {
		return fmt.Errorf("load best scores: %w", err)
	}
	for slug, score := range best {
		ex, ok := game.ParseExercise(slug)
		if !ok {
			log.Warn("ignoring scores for unknown exercise", "exercise", slug)
			continue
		}
		a.engine.SetBest(ex, score)
		a.rememberBest(ex, score)
	}

	settings := a.config.Store.Settings()
	if slug, err := settings.Get(store.SettingLastExercise); err == nil {
		if ex, ok := game.ParseExercise(slug); ok {
			if err := a.engine.Select(ex); err != nil {
				log.Warn("restore exercise", "exercise", slug, "error", err)
			}
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load last exercise: %w", err)
	}

	raw, err := settings.GetOr(store.SettingTrackingEnabled, "true")
	if err != nil {
		return fmt.Errorf("load tracking setting: %w", err)
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		enabled = true
	}
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	log.Info("state restored", "exercises_with_scores", len(best), "tracking", enabled)
	return nil
}

// Snapshot returns the latest engine snapshot.
func (a *App) Snapshot() arcade.Snapshot {
	return a.engine.Snapshot()
}

// Select chooses the exercise from the menu and remembers it across restarts.
func (a *App) Select(ex game.Exercise) error {
	if err := a.engine.Select(ex); err != nil {
		return err
	}
	a.saveSetting(store.SettingLastExercise, ex.Slug())
	log.Info("exercise selected", "exercise", ex.Slug())
	return nil
}

// SetEnabled turns landmark tracking on or off. While disabled the engine
// keeps ticking with no hand detected.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	if !enabled {
		a.last = arcade.Frame{}
	}
	a.mu.Unlock()

	a.saveSetting(store.SettingTrackingEnabled, strconv.FormatBool(enabled))
}

// IsEnabled returns whether landmark tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

func (a *App) saveSetting(key, value string) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Settings().Set(key, value); err != nil {
		log.Warn("save setting", "key", key, "error", err)
	}
}

// Start opens the camera and begins the driver loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(a.config.Engine.Session.TickRate)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	log.Info("driver started", "tick_rate", a.config.Engine.Session.TickRate)
	return nil
}

// Stop halts the driver loop, waits for pending score writes and hooks, and
// releases the camera, the tracker and the renderer.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}
	a.pending.Wait()

	if err := a.camera.Close(); err != nil {
		log.Warn("close camera", "error", err)
	}
	a.gate.Close()
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Warn("close detector", "error", err)
		}
	}
	if a.renderer != nil {
		if err := a.renderer.Close(); err != nil {
			log.Warn("close renderer", "error", err)
		}
	}

	log.Info("driver stopped")
}

// Wait blocks until every finished session has been stored and its hooks have run.
func (a *App) Wait() {
	a.pending.Wait()
}

// hookContext returns the context completion hooks run under.
func hookContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), HookTimeout)
}
