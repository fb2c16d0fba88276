package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AnyExercise matches every exercise in a hook binding.
const AnyExercise = "*"

// Hook binds a finished session of an exercise to a plugin action.
type Hook struct {
	ID         string          `json:"id"`
	Exercise   string          `json:"exercise"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// HookRepository provides CRUD operations for hooks.
type HookRepository struct {
	db *sql.DB
}

// Hooks returns the hook repository for this store.
func (s *Store) Hooks() *HookRepository {
	return &HookRepository{db: s.db}
}

const hookColumns = `id, exercise, plugin_name, action_name, config, enabled, created_at`

// Create inserts a new hook. Empty IDs are generated and an empty exercise
// matches every exercise.
func (r *HookRepository) Create(h *Hook) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.Exercise == "" {
		h.Exercise = AnyExercise
	}
	h.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO hooks (`+hookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Exercise, h.PluginName, h.ActionName, string(configOrEmpty(h.Config)), boolInt(h.Enabled), h.CreatedAt,
	)
	return err
}

// GetByID retrieves a hook by its ID.
func (r *HookRepository) GetByID(id string) (*Hook, error) {
	h, err := scanHook(r.db.QueryRow(`SELECT `+hookColumns+` FROM hooks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return h, err
}

// ForExercise returns the enabled hooks that fire when exercise completes,
// including wildcard hooks, oldest first.
func (r *HookRepository) ForExercise(exercise string) ([]*Hook, error) {
	return r.query(
		`SELECT `+hookColumns+` FROM hooks
		 WHERE enabled = 1 AND (exercise = ? OR exercise = ?)
		 ORDER BY created_at ASC`,
		exercise, AnyExercise,
	)
}

// List retrieves all hooks, newest first.
func (r *HookRepository) List() ([]*Hook, error) {
	return r.query(`SELECT ` + hookColumns + ` FROM hooks ORDER BY created_at DESC`)
}

// Update updates an existing hook.
func (r *HookRepository) Update(h *Hook) error {
	if h.Exercise == "" {
		h.Exercise = AnyExercise
	}

	result, err := r.db.Exec(
		`UPDATE hooks SET exercise = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		h.Exercise, h.PluginName, h.ActionName, string(configOrEmpty(h.Config)), boolInt(h.Enabled), h.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a hook by its ID.
func (r *HookRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM hooks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *HookRepository) query(q string, args ...any) ([]*Hook, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []*Hook
	for rows.Next() {
		h, err := scanHook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hooks, nil
}

func scanHook(s scanner) (*Hook, error) {
	h := &Hook{}
	var config string
	var enabled int

	err := s.Scan(&h.ID, &h.Exercise, &h.PluginName, &h.ActionName, &config, &enabled, &h.CreatedAt)
	if err != nil {
		return nil, err
	}

	h.Config = json.RawMessage(config)
	h.Enabled = enabled != 0
	return h, nil
}

func configOrEmpty(c json.RawMessage) json.RawMessage {
	if c == nil {
		return json.RawMessage("{}")
	}
	return c
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
