package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/store"
)

func TestAPI_HookAndScoreWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	engine := arcade.New(arcade.Config{Seed: 11})
	srv := New(Config{Store: s, Engine: engine})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Bind a hook to every exercise
	createBody := `{"plugin_name": "score-log", "action_name": "append"}`
	resp, err := client.Post(ts.URL+"/api/hooks", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/hooks error = %v", err)
	}
	var hook store.Hook
	json.NewDecoder(resp.Body).Decode(&hook)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/hooks status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if hook.Exercise != store.AnyExercise {
		t.Errorf("hook exercise = %q, want %q", hook.Exercise, store.AnyExercise)
	}

	// 2. A finished session shows up in the score table
	if err := s.Scores().Create(&store.Score{Exercise: "dodge-obstacles", Score: 25}); err != nil {
		t.Fatal(err)
	}
	resp, err = client.Get(ts.URL + "/api/scores/best")
	if err != nil {
		t.Fatalf("GET /api/scores/best error = %v", err)
	}
	var best map[string]int
	json.NewDecoder(resp.Body).Decode(&best)
	resp.Body.Close()
	if best["dodge-obstacles"] != 25 {
		t.Errorf("best = %v", best)
	}

	// 3. Select an exercise from the menu
	resp, err = client.Post(ts.URL+"/api/game/exercise", "application/json", bytes.NewBufferString(`{"exercise":"speed-tapper"}`))
	if err != nil {
		t.Fatalf("POST /api/game/exercise error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /api/game/exercise status = %d", resp.StatusCode)
	}
	if got := engine.Snapshot().Exercise.Slug(); got != "speed-tapper" {
		t.Errorf("engine exercise = %q, want speed-tapper", got)
	}

	// 4. Delete the hook
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/hooks/"+hook.ID, nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/hooks error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	ts := httptest.NewServer(New(Config{}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
