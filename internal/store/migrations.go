package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Scores table - one row per finished session
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			exercise TEXT NOT NULL,
			score INTEGER NOT NULL CHECK(score >= 0),
			frames INTEGER NOT NULL,
			stats TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Hooks table - plugin actions to run when a session completes
		`CREATE TABLE IF NOT EXISTS hooks (
			id TEXT PRIMARY KEY,
			exercise TEXT NOT NULL DEFAULT '*',
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scores_exercise_score ON scores(exercise, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_exercise ON hooks(exercise)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
