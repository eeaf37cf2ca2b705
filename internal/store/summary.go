package store

import (
	"database/sql"
)

// MovementSummary aggregates one movement's results within a session.
type MovementSummary struct {
	ID           int64
	SessionID    string
	Movement     string
	Repetitions  int
	QualityScore float64
	Issues       string
}

// SummaryRepository provides operations for movement summaries.
type SummaryRepository struct {
	db *sql.DB
}

// Summaries returns the movement summary repository for this store.
func (s *Store) Summaries() *SummaryRepository {
	return &SummaryRepository{db: s.db}
}

// Create inserts all summaries for a session in a single transaction,
// replacing any existing rows for that session.
func (r *SummaryRepository) Create(sessionID string, summaries []MovementSummary) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM movement_summaries WHERE session_id = ?`, sessionID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO movement_summaries (session_id, movement, repetitions, quality_score, issues)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sum := range summaries {
		if _, err := stmt.Exec(sessionID, sum.Movement, sum.Repetitions, sum.QualityScore, sum.Issues); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBySessionID retrieves all summaries for a given session.
func (r *SummaryRepository) GetBySessionID(sessionID string) ([]MovementSummary, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, movement, repetitions, quality_score, issues
		 FROM movement_summaries
		 WHERE session_id = ?
		 ORDER BY movement`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []MovementSummary
	for rows.Next() {
		var sum MovementSummary
		if err := rows.Scan(&sum.ID, &sum.SessionID, &sum.Movement, &sum.Repetitions, &sum.QualityScore, &sum.Issues); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
