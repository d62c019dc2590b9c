package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/fairwaykit/fairway/internal/canon"
)

// Hole is one hole of a course definition.
type Hole struct {
	Number      int
	Par         int
	StrokeIndex *int // optional handicap index
}

// Course is a fixed course definition: a snapshot entity. Once inserted it
// is identified by its content hash and can never change; a revised layout
// is a new course with a new hash.
type Course struct {
	Name  string
	Tee   string
	Holes []Hole
}

// CourseRecord is a stored course snapshot with its child holes.
type CourseRecord struct {
	Hash          string
	Name          string
	Tee           string
	HoleCount     int
	CanonicalJSON string
	CreatedAt     string
	Holes         []Hole
}

// InsertCourse persists a course snapshot and its holes in one transaction.
//
// Validation happens before any row is written: the hole set must be 18
// holes numbered 1-18, or 9 holes forming a contiguous block starting at 1
// or at 10. Any other numbering is rejected with an INVALID_HOLE_SET error
// and nothing is stored. Par must be 3-6; stroke index, when present, 1-18.
//
// Like all hash-addressed inserts, the content is canonicalized and hashed
// exactly once and re-inserting an identical course is a no-op returning
// the existing record.
func (s *Store) InsertCourse(ctx context.Context, course Course) (rec CourseRecord, inserted bool, err error) {
	if err := validateCourse(course); err != nil {
		return CourseRecord{}, false, err
	}

	holes := append([]Hole(nil), course.Holes...)
	sort.Slice(holes, func(i, j int) bool { return holes[i].Number < holes[j].Number })

	content := courseContent(course.Name, course.Tee, holes)
	canonical, err := s.codec.Canonicalize(content)
	if err != nil {
		return CourseRecord{}, false, fmt.Errorf("insert course: %w", err)
	}
	hash := s.codec.HashHex(canonical)
	createdAt := s.timestamp()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return CourseRecord{}, false, fmt.Errorf("insert course: %w", err)
	}
	defer tx.Rollback() // Rolls back the whole snapshot on any failure

	result, err := tx.ExecContext(ctx, `
		INSERT INTO courses (course_hash, name, tee, hole_count, canonical_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(course_hash) DO NOTHING
	`, hash, course.Name, course.Tee, len(holes), string(canonical), createdAt)
	if err != nil {
		return CourseRecord{}, false, mapSQLiteError(err, "courses")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return CourseRecord{}, false, fmt.Errorf("insert course: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		existing, found, err := s.readCourseTx(ctx, tx, hash)
		if err != nil {
			return CourseRecord{}, false, fmt.Errorf("insert course: re-read existing: %w", err)
		}
		if !found {
			return CourseRecord{}, false, fmt.Errorf("insert course: conflict row vanished for hash %s", hash)
		}
		if err := tx.Commit(); err != nil {
			return CourseRecord{}, false, fmt.Errorf("insert course: commit: %w", err)
		}
		return existing, false, nil
	}

	for _, h := range holes {
		var strokeIndex any
		if h.StrokeIndex != nil {
			strokeIndex = *h.StrokeIndex
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO course_holes (course_hash, hole_number, par, stroke_index)
			VALUES (?, ?, ?, ?)
		`, hash, h.Number, h.Par, strokeIndex); err != nil {
			return CourseRecord{}, false, mapSQLiteError(err, "course_holes")
		}
	}

	if err := tx.Commit(); err != nil {
		return CourseRecord{}, false, fmt.Errorf("insert course: commit: %w", err)
	}

	return CourseRecord{
		Hash:          hash,
		Name:          course.Name,
		Tee:           course.Tee,
		HoleCount:     len(holes),
		CanonicalJSON: string(canonical),
		CreatedAt:     createdAt,
		Holes:         holes,
	}, true, nil
}

// GetCourse retrieves a course snapshot and its holes by hash.
// Pure storage lookup: never invokes the canonicalizer or hasher.
func (s *Store) GetCourse(ctx context.Context, hash string) (CourseRecord, bool, error) {
	var rec CourseRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT course_hash, name, tee, hole_count, canonical_json, created_at
		FROM courses WHERE course_hash = ?
	`, hash).Scan(&rec.Hash, &rec.Name, &rec.Tee, &rec.HoleCount, &rec.CanonicalJSON, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CourseRecord{}, false, nil
	}
	if err != nil {
		return CourseRecord{}, false, fmt.Errorf("get course: %w", err)
	}

	holes, err := s.readHoles(ctx, hash)
	if err != nil {
		return CourseRecord{}, false, err
	}
	rec.Holes = holes
	return rec, true, nil
}

func (s *Store) readHoles(ctx context.Context, hash string) ([]Hole, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hole_number, par, stroke_index
		FROM course_holes
		WHERE course_hash = ?
		ORDER BY hole_number ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("get course holes: %w", err)
	}
	defer rows.Close()

	holes := []Hole{}
	for rows.Next() {
		var h Hole
		var strokeIndex sql.NullInt64
		if err := rows.Scan(&h.Number, &h.Par, &strokeIndex); err != nil {
			return nil, fmt.Errorf("get course holes: %w", err)
		}
		if strokeIndex.Valid {
			si := int(strokeIndex.Int64)
			h.StrokeIndex = &si
		}
		holes = append(holes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get course holes: %w", err)
	}
	return holes, nil
}

// readCourseTx reads a course and its holes inside an open transaction.
func (s *Store) readCourseTx(ctx context.Context, tx *sql.Tx, hash string) (CourseRecord, bool, error) {
	var rec CourseRecord
	err := tx.QueryRowContext(ctx, `
		SELECT course_hash, name, tee, hole_count, canonical_json, created_at
		FROM courses WHERE course_hash = ?
	`, hash).Scan(&rec.Hash, &rec.Name, &rec.Tee, &rec.HoleCount, &rec.CanonicalJSON, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CourseRecord{}, false, nil
	}
	if err != nil {
		return CourseRecord{}, false, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT hole_number, par, stroke_index
		FROM course_holes
		WHERE course_hash = ?
		ORDER BY hole_number ASC
	`, hash)
	if err != nil {
		return CourseRecord{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var h Hole
		var strokeIndex sql.NullInt64
		if err := rows.Scan(&h.Number, &h.Par, &strokeIndex); err != nil {
			return CourseRecord{}, false, err
		}
		if strokeIndex.Valid {
			si := int(strokeIndex.Int64)
			h.StrokeIndex = &si
		}
		rec.Holes = append(rec.Holes, h)
	}
	return rec, true, rows.Err()
}

// validateCourse checks the hole set and per-hole ranges before anything
// touches the database.
func validateCourse(course Course) error {
	numbers := map[int]bool{}
	for _, h := range course.Holes {
		if numbers[h.Number] {
			return &Error{
				Code:    CodeInvalidHoleSet,
				Table:   "course_holes",
				Message: fmt.Sprintf("duplicate hole number %d", h.Number),
			}
		}
		numbers[h.Number] = true

		if h.Par < 3 || h.Par > 6 {
			return &Error{
				Code:    CodeInvalidRange,
				Table:   "course_holes",
				Message: fmt.Sprintf("hole %d: par %d out of range 3-6", h.Number, h.Par),
			}
		}
		if h.StrokeIndex != nil && (*h.StrokeIndex < 1 || *h.StrokeIndex > 18) {
			return &Error{
				Code:    CodeInvalidRange,
				Table:   "course_holes",
				Message: fmt.Sprintf("hole %d: stroke index %d out of range 1-18", h.Number, *h.StrokeIndex),
			}
		}
	}

	switch len(course.Holes) {
	case 18:
		for n := 1; n <= 18; n++ {
			if !numbers[n] {
				return &Error{
					Code:    CodeInvalidHoleSet,
					Table:   "course_holes",
					Message: fmt.Sprintf("18-hole course missing hole %d", n),
				}
			}
		}
	case 9:
		// A 9-hole set must be a contiguous front (1-9) or back (10-18) half.
		start := 1
		if !numbers[1] {
			start = 10
		}
		for n := start; n < start+9; n++ {
			if !numbers[n] {
				return &Error{
					Code:    CodeInvalidHoleSet,
					Table:   "course_holes",
					Message: fmt.Sprintf("9-hole course must cover holes %d-%d contiguously", start, start+8),
				}
			}
		}
	default:
		return &Error{
			Code:    CodeInvalidHoleSet,
			Table:   "course_holes",
			Message: fmt.Sprintf("course must have 9 or 18 holes, got %d", len(course.Holes)),
		}
	}

	return nil
}

// courseContent builds the hashable content object. Storage metadata
// (created_at) and the hash itself are excluded; holes are ordered by
// number so logically identical courses share one identity.
func courseContent(name, tee string, holes []Hole) canon.Object {
	holeValues := make(canon.Array, len(holes))
	for i, h := range holes {
		hv := canon.Object{
			"number": canon.Int(h.Number),
			"par":    canon.Int(h.Par),
		}
		if h.StrokeIndex != nil {
			hv["stroke_index"] = canon.Int(*h.StrokeIndex)
		}
		holeValues[i] = hv
	}
	return canon.Object{
		"name":       canon.String(name),
		"tee":        canon.String(tee),
		"hole_count": canon.Int(len(holes)),
		"holes":      holeValues,
	}
}
