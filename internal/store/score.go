package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Score is one finished session.
type Score struct {
	ID        string          `json:"id"`
	RunID     string          `json:"run_id"`
	Exercise  string          `json:"exercise"`
	Score     int             `json:"score"`
	Frames    int             `json:"frames"`
	Stats     json.RawMessage `json:"stats"`
	CreatedAt time.Time       `json:"created_at"`
}

// ScoreRepository provides access to the scores table.
type ScoreRepository struct {
	db *sql.DB
}

// Scores returns the score repository for this store.
func (s *Store) Scores() *ScoreRepository {
	return &ScoreRepository{db: s.db}
}

const scoreColumns = `id, run_id, exercise, score, frames, stats, created_at`

// Create inserts a score. Empty IDs are generated.
func (r *ScoreRepository) Create(sc *Score) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	if sc.RunID == "" {
		sc.RunID = sc.ID
	}
	if sc.Score < 0 {
		return fmt.Errorf("negative score %d", sc.Score)
	}
	sc.CreatedAt = time.Now().UTC()

	stats := sc.Stats
	if stats == nil {
		stats = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO scores (`+scoreColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.RunID, sc.Exercise, sc.Score, sc.Frames, string(stats), sc.CreatedAt,
	)
	return err
}

// GetByID retrieves a score by its ID.
func (r *ScoreRepository) GetByID(id string) (*Score, error) {
	row := r.db.QueryRow(`SELECT `+scoreColumns+` FROM scores WHERE id = ?`, id)
	sc, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sc, err
}

// Best returns the highest score recorded for an exercise, or 0 if none.
func (r *ScoreRepository) Best(exercise string) (int, error) {
	var best sql.NullInt64
	err := r.db.QueryRow(`SELECT MAX(score) FROM scores WHERE exercise = ?`, exercise).Scan(&best)
	if err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

// BestByExercise returns the highest score of every exercise that has one.
func (r *ScoreRepository) BestByExercise() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT exercise, MAX(score) FROM scores GROUP BY exercise`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	best := make(map[string]int)
	for rows.Next() {
		var ex string
		var score int
		if err := rows.Scan(&ex, &score); err != nil {
			return nil, err
		}
		best[ex] = score
	}
	return best, rows.Err()
}

// Top returns up to limit scores for an exercise, best first. An empty
// exercise ranks all exercises together.
func (r *ScoreRepository) Top(exercise string, limit int) ([]*Score, error) {
	if limit <= 0 {
		limit = 10
	}
	if exercise == "" {
		return r.query(`SELECT `+scoreColumns+` FROM scores ORDER BY score DESC, created_at ASC LIMIT ?`, limit)
	}
	return r.query(
		`SELECT `+scoreColumns+` FROM scores WHERE exercise = ? ORDER BY score DESC, created_at ASC LIMIT ?`,
		exercise, limit,
	)
}

// List returns up to limit scores, newest first.
func (r *ScoreRepository) List(limit int) ([]*Score, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(`SELECT `+scoreColumns+` FROM scores ORDER BY created_at DESC LIMIT ?`, limit)
}

// Delete removes a score by its ID.
func (r *ScoreRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM scores WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScoreRepository) query(q string, args ...any) ([]*Score, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*Score
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScore(s scanner) (*Score, error) {
	sc := &Score{}
	var stats string
	if err := s.Scan(&sc.ID, &sc.RunID, &sc.Exercise, &sc.Score, &sc.Frames, &stats, &sc.CreatedAt); err != nil {
		return nil, err
	}
	sc.Stats = json.RawMessage(stats)
	return sc, nil
}
