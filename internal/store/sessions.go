package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Session is a practice or round container. Sessions are append-only: once
// recorded they are never updated or deleted. A round session references
// the course snapshot it was played on; range sessions leave it empty.
type Session struct {
	ID         int64
	Date       string // ISO-8601 timestamp of the session itself
	Source     string // originating batch or file token
	DeviceType string
	Location   string
	CourseHash string // empty for range sessions
	IngestedAt string
}

// SessionParams are the caller-supplied fields of a new session.
type SessionParams struct {
	Date       string
	Source     string
	DeviceType string
	Location   string
	CourseHash string
}

// InsertSession appends a new session row and returns it. A non-empty
// course hash must reference an existing course snapshot.
func (s *Store) InsertSession(ctx context.Context, p SessionParams) (Session, error) {
	if p.Date == "" {
		return Session{}, &Error{Code: CodeInvalidRange, Table: "sessions", Message: "session date is required"}
	}
	ingestedAt := s.timestamp()

	var courseHash any
	if p.CourseHash != "" {
		courseHash = p.CourseHash
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_date, source, device_type, location, course_hash, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Date, p.Source, p.DeviceType, p.Location, courseHash, ingestedAt)
	if err != nil {
		return Session{}, mapSQLiteError(err, "sessions")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Session{}, fmt.Errorf("insert session: last insert id: %w", err)
	}

	return Session{
		ID:         id,
		Date:       p.Date,
		Source:     p.Source,
		DeviceType: p.DeviceType,
		Location:   p.Location,
		CourseHash: p.CourseHash,
		IngestedAt: ingestedAt,
	}, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (Session, bool, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx, `
		SELECT session_id, session_date, source, device_type, location, course_hash, ingested_at
		FROM sessions WHERE session_id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("get session: %w", err)
	}
	return sess, true, nil
}

// ListSessions returns all sessions ordered by session date, then id, so
// repeated calls observe the identical order.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, session_date, source, device_type, location, course_hash, ingested_at
		FROM sessions
		ORDER BY session_date ASC, session_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var courseHash sql.NullString
	if err := row.Scan(&sess.ID, &sess.Date, &sess.Source, &sess.DeviceType, &sess.Location, &courseHash, &sess.IngestedAt); err != nil {
		return Session{}, err
	}
	sess.CourseHash = courseHash.String
	return sess, nil
}
