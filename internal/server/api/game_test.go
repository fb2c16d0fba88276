package api

import (
	"net/http"
	"testing"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/plugin"
	"github.com/ayusman/handarcade/internal/session"
)

func TestGameHandler_Snapshot(t *testing.T) {
	engine := arcade.New(arcade.Config{Seed: 7})
	h := newRouter(NewGameHandler(engine, nil))

	rec := do(t, h, http.MethodGet, "/game", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var snap map[string]any
	decode(t, rec, &snap)
	if snap["mode"] != "menu" {
		t.Errorf("mode = %v, want menu", snap["mode"])
	}
	if snap["exercise"] != "fruit-slicer" {
		t.Errorf("exercise = %v, want fruit-slicer", snap["exercise"])
	}
}

func TestGameHandler_Exercises(t *testing.T) {
	engine := arcade.New(arcade.Config{Seed: 7})
	engine.SetBest(game.SpeedTapper, 70)
	h := newRouter(NewGameHandler(engine, nil))

	rec := do(t, h, http.MethodGet, "/exercises", nil)
	var resp exercisesResponse
	decode(t, rec, &resp)

	if resp.Selected != "fruit-slicer" {
		t.Errorf("Selected = %q", resp.Selected)
	}
	if len(resp.Exercises) != len(game.Exercises) {
		t.Fatalf("expected %d exercises, got %d", len(game.Exercises), len(resp.Exercises))
	}
	if resp.Exercises[3].Slug != "speed-tapper" || resp.Exercises[3].Best != 70 {
		t.Errorf("speed tapper entry = %+v", resp.Exercises[3])
	}
}

func TestGameHandler_Select(t *testing.T) {
	engine := arcade.New(arcade.Config{Seed: 7})
	var selected []game.Exercise
	h := newRouter(NewGameHandler(engine, func(ex game.Exercise) { selected = append(selected, ex) }))

	rec := do(t, h, http.MethodPost, "/game/exercise", map[string]string{"exercise": "shape-trace"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if engine.Snapshot().Exercise != game.ShapeTrace {
		t.Errorf("engine exercise = %v, want ShapeTrace", engine.Snapshot().Exercise)
	}
	if len(selected) != 1 || selected[0] != game.ShapeTrace {
		t.Errorf("onSelect calls = %v", selected)
	}

	for _, body := range []any{"{bad", map[string]string{"exercise": "juggling"}} {
		rec = do(t, h, http.MethodPost, "/game/exercise", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: expected status %d, got %d", body, http.StatusBadRequest, rec.Code)
		}
	}
}

type playingController struct {
	snap arcade.Snapshot
}

func (p playingController) Snapshot() arcade.Snapshot { return p.snap }

func (playingController) Select(game.Exercise) error { return session.ErrNotInMenu }

func TestGameHandler_Select_NotInMenu(t *testing.T) {
	h := newRouter(NewGameHandler(playingController{}, nil))

	rec := do(t, h, http.MethodPost, "/game/exercise", map[string]string{"exercise": "dodge-obstacles"})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

type fakeLister []*plugin.Plugin

func (f fakeLister) List() []*plugin.Plugin { return f }

func TestPluginHandler_List(t *testing.T) {
	h := newRouter(NewPluginHandler(fakeLister{
		{Manifest: plugin.Manifest{Name: "notify", Actions: []string{"notify", "new-best"}}},
		{Manifest: plugin.Manifest{Name: "score-log", Actions: []string{"append"}}},
	}))

	rec := do(t, h, http.MethodGet, "/plugins", nil)
	var resp pluginsResponse
	decode(t, rec, &resp)
	if len(resp.Plugins) != 2 || resp.Plugins[0].Name != "notify" {
		t.Errorf("unexpected plugins %+v", resp.Plugins)
	}
}
