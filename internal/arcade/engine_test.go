package arcade

import (
	"reflect"
	"testing"

	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/geom"
	"github.com/ayusman/handarcade/internal/gesture"
	"github.com/ayusman/handarcade/internal/session"
)

var (
	raised  = Frame{Detected: true, Wrist: geom.Vec2{X: 0.5, Y: 0.2}}
	lowered = Frame{Detected: true, Wrist: geom.Vec2{X: 0.5, Y: 0.8}}
	missing = Frame{}
)

func tickN(t *testing.T, e *Engine, f Frame, n int) Snapshot {
	t.Helper()
	var snap Snapshot
	for i := 0; i < n; i++ {
		var err error
		snap, err = e.Tick(f)
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	return snap
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return cfg
}

func TestEngine_InitialSnapshot(t *testing.T) {
	e := New(testConfig())
	snap := e.Snapshot()

	if snap.Mode != session.Menu {
		t.Errorf("Mode = %v, want menu", snap.Mode)
	}
	if len(snap.Exercises) != len(game.Exercises) {
		t.Fatalf("%d exercises listed, want %d", len(snap.Exercises), len(game.Exercises))
	}
	if snap.Exercises[0].Slug != "fruit-slicer" || snap.Exercises[0].Name != "Fruit Slicer" {
		t.Errorf("first exercise = %+v", snap.Exercises[0])
	}
	if snap.Cursor != game.DefaultArea.Center() {
		t.Errorf("Cursor = %+v, want area center", snap.Cursor)
	}
	if snap.Game != nil {
		t.Error("menu snapshot carries a game state")
	}
	if snap.Remaining != session.DefaultSessionSeconds {
		t.Errorf("Remaining = %d, want %d", snap.Remaining, session.DefaultSessionSeconds)
	}
}

func TestEngine_HoldStartsSession(t *testing.T) {
	e := New(testConfig())

	snap := tickN(t, e, raised, session.DefaultConfirmFrames-1)
	if snap.Mode != session.Menu {
		t.Fatalf("Mode = %v before the hold completed", snap.Mode)
	}
	if snap.Gesture.Dwell != session.DefaultConfirmFrames-1 {
		t.Errorf("Dwell = %d, want %d", snap.Gesture.Dwell, session.DefaultConfirmFrames-1)
	}

	snap = tickN(t, e, raised, 1)
	if snap.Mode != session.Playing || !snap.Transition {
		t.Fatalf("Mode = %v transition = %v, want playing transition", snap.Mode, snap.Transition)
	}
	if snap.Game == nil || snap.Game.Exercise != game.FruitSlicer {
		t.Fatalf("Game = %+v, want fruit slicer state", snap.Game)
	}
	if snap.Tick != uint64(session.DefaultConfirmFrames) {
		t.Errorf("Tick = %d, want %d", snap.Tick, session.DefaultConfirmFrames)
	}
}

func TestEngine_Trail(t *testing.T) {
	e := New(testConfig())

	snap := tickN(t, e, lowered, DefaultTrailLength+10)
	if len(snap.Trail) != DefaultTrailLength {
		t.Errorf("trail length = %d, want %d", len(snap.Trail), DefaultTrailLength)
	}
	if snap.Trail[len(snap.Trail)-1] != snap.Cursor {
		t.Errorf("last trail point %+v != cursor %+v", snap.Trail[len(snap.Trail)-1], snap.Cursor)
	}

	held := snap.Cursor
	snap = tickN(t, e, missing, 1)
	if len(snap.Trail) != 0 {
		t.Errorf("trail length = %d after detection loss, want 0", len(snap.Trail))
	}
	if snap.Cursor != held {
		t.Errorf("cursor moved during dropout: %+v -> %+v", held, snap.Cursor)
	}
	if snap.Detected {
		t.Error("Detected = true for a missing frame")
	}
}

func TestEngine_SessionCompletesIntoSinkAndBest(t *testing.T) {
	cfg := testConfig()
	cfg.Session = session.Config{ConfirmFrames: 5, SessionSeconds: 2, TickRate: 60}
	e := New(cfg)
	if err := e.Select(game.DodgeObstacles); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	var results []session.Result
	e.OnComplete(func(r session.Result) { results = append(results, r) })

	tickN(t, e, raised, 5)
	snap := tickN(t, e, missing, cfg.Session.SessionFrames())
	if snap.Mode != session.Complete {
		t.Fatalf("Mode = %v, want complete", snap.Mode)
	}
	if len(results) != 1 {
		t.Fatalf("sink called %d times, want 1", len(results))
	}
	if results[0].Exercise != game.DodgeObstacles || results[0].Score != snap.Score {
		t.Errorf("result = %+v, snapshot score %d", results[0], snap.Score)
	}
	if snap.Best != snap.Score || e.Best(game.DodgeObstacles) != snap.Score {
		t.Errorf("Best = %d, want %d", snap.Best, snap.Score)
	}
}

func TestEngine_SetBest(t *testing.T) {
	e := New(testConfig())
	e.SetBest(game.FruitSlicer, 120)
	e.SetBest(game.FruitSlicer, 80)

	snap := e.Snapshot()
	if snap.Best != 120 || snap.Exercises[0].Best != 120 {
		t.Errorf("Best = %d / %d, want 120", snap.Best, snap.Exercises[0].Best)
	}
}

func TestEngine_DeterministicWithSeed(t *testing.T) {
	frames := make([]Frame, 0, 400)
	for i := 0; i < 400; i++ {
		switch {
		case i < 30:
			frames = append(frames, raised)
		case i%7 == 0:
			frames = append(frames, missing)
		default:
			frames = append(frames, Frame{Detected: true, Wrist: geom.Vec2{X: float64(i%100) / 100, Y: 0.6}})
		}
	}

	a, b := New(testConfig()), New(testConfig())
	for i, f := range frames {
		sa, _ := a.Tick(f)
		sb, _ := b.Tick(f)
		if !reflect.DeepEqual(sa, sb) {
			t.Fatalf("frame %d: snapshots differ", i)
		}
	}
}

func TestEngine_SnapshotIsolation(t *testing.T) {
	e := New(testConfig())
	snap := tickN(t, e, lowered, 3)
	snap.Trail[0] = geom.Vec2{X: -1, Y: -1}
	snap.Exercises[0].Name = "changed"

	again := e.Snapshot()
	if again.Trail[0] == (geom.Vec2{X: -1, Y: -1}) || again.Exercises[0].Name == "changed" {
		t.Error("mutating a snapshot changed the engine")
	}
}

func TestEngine_ReferenceRuleWithoutReference(t *testing.T) {
	cfg := testConfig()
	cfg.Gesture = gesture.Config{Rule: gesture.RuleAboveReference}
	e := New(cfg)

	snap := tickN(t, e, raised, 60)
	if snap.Gesture.Up || snap.Mode != session.Menu {
		t.Errorf("raised without a reference: up=%v mode=%v", snap.Gesture.Up, snap.Mode)
	}

	withShoulder := raised
	withShoulder.Reference = geom.Vec2{X: 0.5, Y: 0.4}
	withShoulder.HasReference = true
	snap = tickN(t, e, withShoulder, session.DefaultConfirmFrames)
	if snap.Mode != session.Playing {
		t.Errorf("Mode = %v, want playing", snap.Mode)
	}
}

func TestEngine_RaiseMakesRunnerJump(t *testing.T) {
	cfg := testConfig()
	cfg.Session = session.Config{ConfirmFrames: 5, SessionSeconds: 10, TickRate: 60}
	e := New(cfg)
	if err := e.Select(game.DinoRunner); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	snap := tickN(t, e, raised, 5)
	if snap.Mode != session.Playing {
		t.Fatalf("Mode = %v, want playing", snap.Mode)
	}

	// The hold that started the session is not a jump.
	snap = tickN(t, e, raised, 1)
	if snap.Game.Stats.Jumps != 0 {
		t.Fatalf("Jumps = %d while still holding the start gesture", snap.Game.Stats.Jumps)
	}

	standing := tickN(t, e, lowered, 1).Game.Runner.Y
	snap = tickN(t, e, raised, 1)
	jumped := false
	for _, ev := range snap.Events {
		jumped = jumped || ev.Kind == game.EventJumped
	}
	if !jumped || snap.Game.Stats.Jumps != 1 {
		t.Errorf("raise produced events %+v, jumps %d", snap.Events, snap.Game.Stats.Jumps)
	}
	if snap.Game.Runner.Y >= standing {
		t.Errorf("runner y = %v, want above %v", snap.Game.Runner.Y, standing)
	}
}
