package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairwaykit/fairway/internal/canon"
)

// FactKey is the stable logical key of an evolving value: the owning
// session, a hole number, and an actor index (0 for single-player rounds).
type FactKey struct {
	SessionID int64
	Hole      int
	Actor     int
}

// Fact is one append-log row for a logical key. Corrections append new
// rows; history is never erased.
type Fact struct {
	ID         int64
	Key        FactKey
	Value      canon.Value
	RecordedAt string
}

// RecordFact appends a new fact row for the logical key. It never updates:
// recording a correction for an existing key produces a second row with a
// later recorded_at, and reads resolve latest-wins.
func (s *Store) RecordFact(ctx context.Context, key FactKey, value canon.Value) (Fact, error) {
	if key.Hole < 1 || key.Hole > 18 {
		return Fact{}, &Error{Code: CodeInvalidRange, Table: "facts", Message: fmt.Sprintf("hole %d out of range 1-18", key.Hole)}
	}
	if key.Actor < 0 {
		return Fact{}, &Error{Code: CodeInvalidRange, Table: "facts", Message: fmt.Sprintf("actor index %d must be >= 0", key.Actor)}
	}

	valueJSON, err := s.codec.Canonicalize(value)
	if err != nil {
		return Fact{}, fmt.Errorf("record fact: %w", err)
	}
	recordedAt := s.timestamp()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO facts (session_id, hole, actor, value_json, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, key.SessionID, key.Hole, key.Actor, string(valueJSON), recordedAt)
	if err != nil {
		return Fact{}, mapSQLiteError(err, "facts")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Fact{}, fmt.Errorf("record fact: last insert id: %w", err)
	}

	return Fact{ID: id, Key: key, Value: value, RecordedAt: recordedAt}, nil
}

// CurrentValue resolves the current value for a logical key: the row with
// the maximum recorded_at, ties resolved toward the greater row id. The
// ordering (recorded_at, fact_id) is total, so the answer is stable across
// repeated queries even under duplicate timestamps. Returns found=false if
// no row exists for the key.
func (s *Store) CurrentValue(ctx context.Context, key FactKey) (canon.Value, bool, error) {
	var valueJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT value_json FROM facts
		WHERE session_id = ? AND hole = ? AND actor = ?
		ORDER BY recorded_at DESC, fact_id DESC
		LIMIT 1
	`, key.SessionID, key.Hole, key.Actor).Scan(&valueJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("current value: %w", err)
	}

	v, err := canon.FromJSON([]byte(valueJSON))
	if err != nil {
		return nil, false, fmt.Errorf("current value: %w", err)
	}
	return v, true, nil
}

// History returns every fact row for a logical key, oldest first.
// Corrections are visible, not erased; this is the audit view.
func (s *Store) History(ctx context.Context, key FactKey) ([]Fact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fact_id, value_json, recorded_at FROM facts
		WHERE session_id = ? AND hole = ? AND actor = ?
		ORDER BY recorded_at ASC, fact_id ASC
	`, key.SessionID, key.Hole, key.Actor)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	facts := []Fact{}
	for rows.Next() {
		f := Fact{Key: key}
		var valueJSON string
		if err := rows.Scan(&f.ID, &valueJSON, &f.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		v, err := canon.FromJSON([]byte(valueJSON))
		if err != nil {
			return nil, fmt.Errorf("history: fact %d: %w", f.ID, err)
		}
		f.Value = v
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return facts, nil
}
