package store

import (
	"context"
	"fmt"

	"github.com/fairwaykit/fairway/internal/canon"
)

// Shot is one raw per-fact record delivered by the ingest boundary. The
// sequence index is caller-assigned and must be unique within the owning
// session; the metric map is open-ended.
type Shot struct {
	SequenceIndex int
	Club          string
	Metrics       canon.Object
}

// ShotRecord is a stored shot row.
type ShotRecord struct {
	ID            int64
	SessionID     int64
	SequenceIndex int
	Club          string
	Metrics       canon.Object
	RecordedAt    string
}

// InsertShots appends a batch of shots to a session in one transaction.
// All rows or none: a duplicate sequence index (UNIQUE_CONSTRAINT), a
// missing session (FOREIGN_KEY) or an unserializable metric map rolls the
// whole batch back. Metric maps are stored as canonical JSON.
func (s *Store) InsertShots(ctx context.Context, sessionID int64, shots []Shot) ([]ShotRecord, error) {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert shots: %w", err)
	}
	defer tx.Rollback()

	recordedAt := s.timestamp()
	records := make([]ShotRecord, 0, len(shots))
	for _, shot := range shots {
		if shot.SequenceIndex < 0 {
			return nil, &Error{
				Code:    CodeInvalidRange,
				Table:   "shots",
				Message: fmt.Sprintf("sequence index %d must be >= 0", shot.SequenceIndex),
			}
		}

		metrics := shot.Metrics
		if metrics == nil {
			metrics = canon.Object{}
		}
		metricsJSON, err := s.codec.Canonicalize(metrics)
		if err != nil {
			return nil, fmt.Errorf("insert shots: sequence %d: %w", shot.SequenceIndex, err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO shots (session_id, sequence_index, club, metrics_json, recorded_at)
			VALUES (?, ?, ?, ?, ?)
		`, sessionID, shot.SequenceIndex, shot.Club, string(metricsJSON), recordedAt)
		if err != nil {
			return nil, mapSQLiteError(err, "shots")
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert shots: last insert id: %w", err)
		}

		records = append(records, ShotRecord{
			ID:            id,
			SessionID:     sessionID,
			SequenceIndex: shot.SequenceIndex,
			Club:          shot.Club,
			Metrics:       metrics,
			RecordedAt:    recordedAt,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert shots: commit: %w", err)
	}
	return records, nil
}

// ListShots returns every shot of a session ordered by sequence index.
func (s *Store) ListShots(ctx context.Context, sessionID int64) ([]ShotRecord, error) {
	return s.listShots(ctx, `
		SELECT shot_id, session_id, sequence_index, club, metrics_json, recorded_at
		FROM shots
		WHERE session_id = ?
		ORDER BY sequence_index ASC
	`, sessionID)
}

// ListShotsByClub returns a session's shots for one club, ordered by
// sequence index.
func (s *Store) ListShotsByClub(ctx context.Context, sessionID int64, club string) ([]ShotRecord, error) {
	return s.listShots(ctx, `
		SELECT shot_id, session_id, sequence_index, club, metrics_json, recorded_at
		FROM shots
		WHERE session_id = ? AND club = ?
		ORDER BY sequence_index ASC
	`, sessionID, club)
}

// SessionClubs returns the distinct clubs present in a session's shots, in
// code-point order.
func (s *Store) SessionClubs(ctx context.Context, sessionID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT club FROM shots
		WHERE session_id = ?
		ORDER BY club ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session clubs: %w", err)
	}
	defer rows.Close()

	clubs := []string{}
	for rows.Next() {
		var club string
		if err := rows.Scan(&club); err != nil {
			return nil, fmt.Errorf("session clubs: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session clubs: %w", err)
	}
	return clubs, nil
}

func (s *Store) listShots(ctx context.Context, query string, args ...any) ([]ShotRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shots: %w", err)
	}
	defer rows.Close()

	records := []ShotRecord{}
	for rows.Next() {
		var rec ShotRecord
		var metricsJSON string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.SequenceIndex, &rec.Club, &metricsJSON, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("list shots: %w", err)
		}
		metrics, err := parseObject(metricsJSON)
		if err != nil {
			return nil, fmt.Errorf("list shots: shot %d: %w", rec.ID, err)
		}
		rec.Metrics = metrics
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shots: %w", err)
	}
	return records, nil
}

// parseObject decodes stored canonical JSON back into an object. This is a
// decode, not a canonicalization: read paths never re-derive bytes or
// hashes from what they load.
func parseObject(data string) (canon.Object, error) {
	v, err := canon.FromJSON([]byte(data))
	if err != nil {
		return nil, err
	}
	obj, ok := v.(canon.Object)
	if !ok {
		return nil, fmt.Errorf("stored value is %T, expected object", v)
	}
	return obj, nil
}
