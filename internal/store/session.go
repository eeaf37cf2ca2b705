package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session represents one recorded analysis session.
type Session struct {
	ID          string
	Name        string
	Source      string
	StartedAtMs int64
	EndedAtMs   int64
	FrameCount  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database. A missing ID is
// filled in with a fresh UUID.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	now := time.Now()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, name, source, started_at_ms, ended_at_ms, frame_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Source, sess.StartedAtMs, sess.EndedAtMs, sess.FrameCount, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}

	err := r.db.QueryRow(
		`SELECT id, name, source, started_at_ms, ended_at_ms, frame_count, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Name, &sess.Source, &sess.StartedAtMs, &sess.EndedAtMs, &sess.FrameCount, &sess.CreatedAt, &sess.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, name, source, started_at_ms, ended_at_ms, frame_count, created_at, updated_at
		 FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		err := rows.Scan(&sess.ID, &sess.Name, &sess.Source, &sess.StartedAtMs, &sess.EndedAtMs, &sess.FrameCount, &sess.CreatedAt, &sess.UpdatedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Update updates an existing session in the database.
func (r *SessionRepository) Update(sess *Session) error {
	sess.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE sessions SET name = ?, source = ?, started_at_ms = ?, ended_at_ms = ?, frame_count = ?, updated_at = ?
		 WHERE id = ?`,
		sess.Name, sess.Source, sess.StartedAtMs, sess.EndedAtMs, sess.FrameCount, sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a session from the database by its ID. Summaries and
// trajectory documents cascade.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
