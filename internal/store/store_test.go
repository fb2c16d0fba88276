package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "handarcade-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"scores", "hooks", "settings"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}

	for _, idx := range []string{"idx_scores_exercise_score", "idx_hooks_exercise"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
			idx,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %q should exist after migrations: %v", idx, err)
		}
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Scores().Create(&Score{Exercise: "fruit-slicer", Score: 40}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	best, err := s.Scores().Best("fruit-slicer")
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}
	if best != 40 {
		t.Errorf("Best() after reopen = %d, want 40", best)
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}

	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestScoreRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Scores()

	sc := &Score{
		RunID:    "run-1",
		Exercise: "dodge-obstacles",
		Score:    35,
		Frames:   2700,
		Stats:    json.RawMessage(`{"hits":2,"dodges":9}`),
	}
	if err := repo.Create(sc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sc.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	got, err := repo.GetByID(sc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.RunID != "run-1" || got.Exercise != "dodge-obstacles" || got.Score != 35 || got.Frames != 2700 {
		t.Errorf("GetByID() = %+v", got)
	}
	if string(got.Stats) != `{"hits":2,"dodges":9}` {
		t.Errorf("Stats = %s", got.Stats)
	}

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestScoreRepository_CreateDefaults(t *testing.T) {
	s := newTestStore(t)
	repo := s.Scores()

	sc := &Score{Exercise: "speed-tapper", Score: 0}
	if err := repo.Create(sc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sc.RunID != sc.ID {
		t.Errorf("RunID = %q, want ID %q", sc.RunID, sc.ID)
	}

	got, err := repo.GetByID(sc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if string(got.Stats) != "{}" {
		t.Errorf("Stats = %s, want {}", got.Stats)
	}
}

func TestScoreRepository_RejectsNegative(t *testing.T) {
	s := newTestStore(t)

	if err := s.Scores().Create(&Score{Exercise: "fruit-slicer", Score: -5}); err == nil {
		t.Error("Create() with negative score should fail")
	}
}

func TestScoreRepository_Best(t *testing.T) {
	s := newTestStore(t)
	repo := s.Scores()

	best, err := repo.Best("fruit-slicer")
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}
	if best != 0 {
		t.Errorf("Best() with no scores = %d, want 0", best)
	}

	for _, v := range []struct {
		ex    string
		score int
	}{
		{"fruit-slicer", 30},
		{"fruit-slicer", 80},
		{"fruit-slicer", 50},
		{"shape-trace", 115},
	} {
		if err := repo.Create(&Score{Exercise: v.ex, Score: v.score}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	best, err = repo.Best("fruit-slicer")
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}
	if best != 80 {
		t.Errorf("Best(fruit-slicer) = %d, want 80", best)
	}

	all, err := repo.BestByExercise()
	if err != nil {
		t.Fatalf("BestByExercise() error = %v", err)
	}
	if len(all) != 2 || all["fruit-slicer"] != 80 || all["shape-trace"] != 115 {
		t.Errorf("BestByExercise() = %v", all)
	}
}

func TestScoreRepository_TopAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.Scores()

	for _, score := range []int{10, 70, 40, 90, 20} {
		if err := repo.Create(&Score{Exercise: "speed-tapper", Score: score}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if err := repo.Create(&Score{Exercise: "dodge-obstacles", Score: 100}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	top, err := repo.Top("speed-tapper", 3)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	want := []int{90, 70, 40}
	if len(top) != len(want) {
		t.Fatalf("Top() returned %d scores, want %d", len(top), len(want))
	}
	for i, w := range want {
		if top[i].Score != w {
			t.Errorf("Top()[%d] = %d, want %d", i, top[i].Score, w)
		}
	}

	overall, err := repo.Top("", 1)
	if err != nil {
		t.Fatalf("Top(all) error = %v", err)
	}
	if len(overall) != 1 || overall[0].Exercise != "dodge-obstacles" {
		t.Errorf("Top(all, 1) = %+v", overall)
	}

	list, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 6 {
		t.Errorf("List() returned %d scores, want 6", len(list))
	}
}

func TestScoreRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Scores()

	sc := &Score{Exercise: "shape-trace", Score: 65}
	if err := repo.Create(sc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(sc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(sc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(sc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSettingRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get(SettingLastExercise); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() unset error = %v, want ErrNotFound", err)
	}

	v, err := repo.GetOr(SettingTrackingEnabled, "true")
	if err != nil || v != "true" {
		t.Errorf("GetOr() = %q, %v; want default", v, err)
	}

	if err := repo.Set(SettingLastExercise, "dodge-obstacles"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set(SettingLastExercise, "speed-tapper"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	v, err = repo.Get(SettingLastExercise)
	if err != nil || v != "speed-tapper" {
		t.Errorf("Get() = %q, %v; want speed-tapper", v, err)
	}

	if err := repo.Set(SettingTrackingEnabled, "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	all, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 || all[SettingTrackingEnabled] != "false" {
		t.Errorf("All() = %v", all)
	}
}
