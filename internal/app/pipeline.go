package app

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/detector"
	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/log"
	"github.com/ayusman/handarcade/internal/plugin"
	"github.com/ayusman/handarcade/internal/session"
	"github.com/ayusman/handarcade/internal/store"
)

// run is the driver loop. Every tick reads one camera frame and advances the
// engine once. A failed read skips the tick; the camera is retried on the next one.
func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.Engine.Session.TickRate))
	defer ticker.Stop()

	var readErrors int
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				// Log the first failure of a streak only.
				if readErrors == 0 {
					log.Warn("camera read failed", "error", err)
				}
				readErrors++
				continue
			}
			if readErrors > 0 {
				log.Info("camera recovered", "failed_reads", readErrors)
				readErrors = 0
			}
			a.ProcessFrame(frame)
			frame.Close()
		}
	}
}

// ProcessFrame runs one tick of the pipeline on frame. A nil frame ticks the
// engine with nothing detected:
//
//  1. The motion gate decides whether the tracker runs; skipped frames reuse
//     the previous sample.
//  2. The tracker result is converted to an engine frame and the engine ticks.
//  3. The snapshot is rendered to the MJPEG hub, published on the WebSocket
//     hub and handed to observers.
func (a *App) ProcessFrame(frame *gocv.Mat) arcade.Snapshot {
	f := a.sample(frame)

	snap, err := a.engine.Tick(f)
	if err != nil {
		log.Error("engine tick", "error", err)
	}
	if snap.Transition {
		log.Info("mode changed", "mode", snap.Mode, "exercise", snap.Exercise.Slug(), "score", snap.Score)
	}

	if a.renderer != nil && a.config.Frames != nil {
		jpeg, err := a.renderer.Encode(snap, frame)
		if err != nil {
			log.Warn("render frame", "error", err)
		} else {
			a.config.Frames.Publish(jpeg)
		}
	}
	if a.config.Snapshots != nil {
		a.config.Snapshots.Publish(snap)
	}

	a.mu.RLock()
	observers := a.observers
	a.mu.RUnlock()
	for _, fn := range observers {
		fn(snap)
	}
	return snap
}

// sample produces the engine input for one frame.
func (a *App) sample(frame *gocv.Mat) arcade.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled || frame == nil || a.detector == nil {
		a.last = arcade.Frame{}
		return a.last
	}
	if !a.gate.Allow(frame, a.last.Detected) {
		return a.last
	}

	res, err := a.detector.Detect(frame)
	if err != nil {
		log.Debug("tracker failed", "error", err)
		a.last = arcade.Frame{}
		return a.last
	}
	a.last = detector.ToFrame(res, a.config.Detector)
	return a.last
}

// handleComplete receives finished sessions from the engine. It runs with the
// engine locked, so persistence and hooks are handed to a goroutine.
func (a *App) handleComplete(r session.Result) {
	best, newBest := a.rememberBest(r.Exercise, r.Score)
	ended := time.Now()

	log.Info("session complete",
		"exercise", r.Exercise.Slug(),
		"score", r.Score,
		"best", best,
		"new_best", newBest,
	)

	a.pending.Go(func() {
		a.record(r, best, newBest, ended)
	})
}

// rememberBest folds score into the driver's copy of the best scores and
// reports the resulting best and whether score set it.
func (a *App) rememberBest(ex game.Exercise, score int) (int, bool) {
	a.bestMu.Lock()
	defer a.bestMu.Unlock()

	prev, seen := a.best[ex]
	if !seen || score > prev {
		a.best[ex] = score
		return score, score > prev
	}
	return prev, false
}

// record stores a finished session and fires its completion hooks.
func (a *App) record(r session.Result, best int, newBest bool, ended time.Time) {
	stats, err := json.Marshal(r.Stats)
	if err != nil {
		log.Warn("encode session stats", "error", err)
		stats = []byte("{}")
	}
	runID := uuid.NewString()

	if a.config.Store != nil {
		score := &store.Score{
			RunID:    runID,
			Exercise: r.Exercise.Slug(),
			Score:    r.Score,
			Frames:   r.Frames,
			Stats:    stats,
		}
		if err := a.config.Store.Scores().Create(score); err != nil {
			log.Error("save score", "exercise", r.Exercise.Slug(), "error", err)
		}
	}

	if a.hooks == nil {
		return
	}

	ctx, cancel := hookContext()
	defer cancel()

	if _, err := a.hooks.Fire(ctx, plugin.Session{
		RunID:    runID,
		Exercise: r.Exercise.Slug(),
		Score:    r.Score,
		Best:     best,
		NewBest:  newBest,
		Frames:   r.Frames,
		Stats:    stats,
		EndedAt:  ended,
	}); err != nil {
		log.Warn("completion hooks", "error", err)
	}
}
