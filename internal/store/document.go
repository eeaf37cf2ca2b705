package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// TrajectoryDocument is an exported trajectory snapshot attached to a
// session. Data holds the export JSON produced by the trajectory
// engine.
type TrajectoryDocument struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// DocumentRepository provides operations for trajectory documents.
type DocumentRepository struct {
	db *sql.DB
}

// Documents returns the trajectory document repository for this store.
func (s *Store) Documents() *DocumentRepository {
	return &DocumentRepository{db: s.db}
}

// Create inserts one trajectory document for a session.
func (r *DocumentRepository) Create(sessionID string, data json.RawMessage) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO trajectory_documents (session_id, data) VALUES (?, ?)`,
		sessionID, string(data),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetBySessionID retrieves all trajectory documents for a given
// session, oldest first.
func (r *DocumentRepository) GetBySessionID(sessionID string) ([]TrajectoryDocument, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, data, created_at
		 FROM trajectory_documents
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []TrajectoryDocument
	for rows.Next() {
		var d TrajectoryDocument
		var data string
		if err := rows.Scan(&d.ID, &d.SessionID, &data, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Data = json.RawMessage(data)
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// Latest retrieves the most recent trajectory document for a session.
func (r *DocumentRepository) Latest(sessionID string) (*TrajectoryDocument, error) {
	var d TrajectoryDocument
	var data string

	err := r.db.QueryRow(
		`SELECT id, session_id, data, created_at
		 FROM trajectory_documents
		 WHERE session_id = ?
		 ORDER BY id DESC LIMIT 1`,
		sessionID,
	).Scan(&d.ID, &d.SessionID, &data, &d.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	d.Data = json.RawMessage(data)
	return &d, nil
}

// DeleteBySessionID removes all trajectory documents for a session.
func (r *DocumentRepository) DeleteBySessionID(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM trajectory_documents WHERE session_id = ?`, sessionID)
	return err
}
