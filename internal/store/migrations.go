package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per recorded analysis session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			started_at_ms INTEGER NOT NULL,
			ended_at_ms INTEGER NOT NULL DEFAULT 0,
			frame_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Movement summaries table - per-movement totals within a session
		`CREATE TABLE IF NOT EXISTS movement_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			movement TEXT NOT NULL,
			repetitions INTEGER NOT NULL DEFAULT 0,
			quality_score REAL NOT NULL DEFAULT 0,
			issues TEXT NOT NULL DEFAULT ''
		)`,

		// Trajectory documents table - exported trajectory JSON per session
		`CREATE TABLE IF NOT EXISTS trajectory_documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_movement_summaries_session_id ON movement_summaries(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trajectory_documents_session_id ON trajectory_documents(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
