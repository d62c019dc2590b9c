package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairwaykit/fairway/internal/canon"
)

// TemplateRecord is a stored grading template. The hash is authoritative:
// it was computed once at insert time and is never recomputed on read.
type TemplateRecord struct {
	Hash          string
	SchemaVersion string
	Club          string
	CanonicalJSON string
	CreatedAt     string
}

// InsertTemplate persists a template document, keyed by its content hash.
//
// The document is canonicalized and hashed exactly once. If a row with the
// same hash already exists, the existing record is returned unchanged and
// inserted is false: idempotent insert, not an error. The conflict check and
// the re-read happen inside one transaction, so concurrent identical inserts
// resolve to exactly one stored row.
//
// The club and schema_version metadata columns are projections of the
// content: the document must carry string fields "club" and
// "schema_version".
func (s *Store) InsertTemplate(ctx context.Context, content canon.Object) (rec TemplateRecord, inserted bool, err error) {
	club, err := stringField(content, "club")
	if err != nil {
		return TemplateRecord{}, false, err
	}
	schemaVersion, err := stringField(content, "schema_version")
	if err != nil {
		return TemplateRecord{}, false, err
	}

	// Write path: canonicalize and hash once, here and nowhere else.
	canonical, err := s.codec.Canonicalize(content)
	if err != nil {
		return TemplateRecord{}, false, fmt.Errorf("insert template: %w", err)
	}
	hash := s.codec.HashHex(canonical)
	createdAt := s.timestamp()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return TemplateRecord{}, false, fmt.Errorf("insert template: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO templates (template_hash, schema_version, club, canonical_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(template_hash) DO NOTHING
	`, hash, schemaVersion, club, string(canonical), createdAt)
	if err != nil {
		return TemplateRecord{}, false, mapSQLiteError(err, "templates")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return TemplateRecord{}, false, fmt.Errorf("insert template: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Identical content already stored; return it unchanged.
		rec, err = scanTemplate(tx.QueryRowContext(ctx, `
			SELECT template_hash, schema_version, club, canonical_json, created_at
			FROM templates WHERE template_hash = ?
		`, hash))
		if err != nil {
			return TemplateRecord{}, false, fmt.Errorf("insert template: re-read existing: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return TemplateRecord{}, false, fmt.Errorf("insert template: commit: %w", err)
		}
		return rec, false, nil
	}

	if err := tx.Commit(); err != nil {
		return TemplateRecord{}, false, fmt.Errorf("insert template: commit: %w", err)
	}

	return TemplateRecord{
		Hash:          hash,
		SchemaVersion: schemaVersion,
		Club:          club,
		CanonicalJSON: string(canonical),
		CreatedAt:     createdAt,
	}, true, nil
}

// GetTemplate retrieves a template by hash.
//
// This is a pure storage lookup: it must never invoke the canonicalizer or
// hasher. The stored hash is authoritative.
func (s *Store) GetTemplate(ctx context.Context, hash string) (TemplateRecord, bool, error) {
	rec, err := scanTemplate(s.db.QueryRowContext(ctx, `
		SELECT template_hash, schema_version, club, canonical_json, created_at
		FROM templates WHERE template_hash = ?
	`, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return TemplateRecord{}, false, nil
	}
	if err != nil {
		return TemplateRecord{}, false, fmt.Errorf("get template: %w", err)
	}
	return rec, true, nil
}

// ListTemplatesByClub returns all templates for a club, oldest first.
func (s *Store) ListTemplatesByClub(ctx context.Context, club string) ([]TemplateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template_hash, schema_version, club, canonical_json, created_at
		FROM templates
		WHERE club = ?
		ORDER BY created_at ASC, template_hash ASC
	`, club)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	records := []TemplateRecord{}
	for rows.Next() {
		rec, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return records, nil
}

// ListTemplates returns every stored template, ordered by club then age.
func (s *Store) ListTemplates(ctx context.Context) ([]TemplateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template_hash, schema_version, club, canonical_json, created_at
		FROM templates
		ORDER BY club ASC, created_at ASC, template_hash ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	records := []TemplateRecord{}
	for rows.Next() {
		rec, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return records, nil
}

// TemplateHashesByClub returns the newest template hash per club, for the
// whole table. Used by the ingest boundary to resolve templates.
func (s *Store) TemplateHashesByClub(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT club, template_hash
		FROM templates
		ORDER BY created_at ASC, template_hash ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("template hashes by club: %w", err)
	}
	defer rows.Close()

	hashes := map[string]string{}
	for rows.Next() {
		var club, hash string
		if err := rows.Scan(&club, &hash); err != nil {
			return nil, fmt.Errorf("template hashes by club: %w", err)
		}
		hashes[club] = hash // later rows win: newest per club
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("template hashes by club: %w", err)
	}
	return hashes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (TemplateRecord, error) {
	var rec TemplateRecord
	err := row.Scan(&rec.Hash, &rec.SchemaVersion, &rec.Club, &rec.CanonicalJSON, &rec.CreatedAt)
	return rec, err
}

// stringField extracts a required string field from a content object.
func stringField(content canon.Object, key string) (string, error) {
	v, ok := content[key]
	if !ok {
		return "", &Error{Code: CodeInvalidRange, Message: fmt.Sprintf("content missing required field %q", key)}
	}
	str, ok := v.(canon.String)
	if !ok {
		return "", &Error{Code: CodeInvalidRange, Message: fmt.Sprintf("content field %q must be a string", key)}
	}
	return string(str), nil
}
