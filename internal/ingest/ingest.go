// Package ingest is the upstream boundary: it accepts raw shot batches
// from launch monitors or exports, validates them, and persists them
// through the store. The kernel trusts but verifies the caller-assigned
// sequence index: any duplicate within a batch rejects the whole batch
// before a row is written.
package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fairwaykit/fairway/internal/canon"
	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/kpi"
	"github.com/fairwaykit/fairway/internal/store"
)

// Record is one raw shot as delivered by the caller. The sequence index is
// caller-assigned and must be unique within its batch.
type Record struct {
	SequenceIndex int
	Club          string
	Metrics       canon.Object
}

// Batch is one delivery: session metadata plus its records. An empty
// Source is replaced by a generated token so every session can be traced
// back to its delivery.
type Batch struct {
	Date       string
	DeviceType string
	Location   string
	Source     string
	Records    []Record
}

// DuplicateSequenceError rejects a batch whose caller-assigned sequence
// indices collide. Nothing from the batch is persisted.
type DuplicateSequenceError struct {
	Index int
}

func (e *DuplicateSequenceError) Error() string {
	return fmt.Sprintf("duplicate sequence index %d in batch", e.Index)
}

// Result reports one imported batch.
type Result struct {
	SessionID     int64
	Source        string
	ImportedCount int
	SkippedCount  int
	SkippedClubs  []string // clubs without a template, code-point order

	// Summaries are recomputed per imported club; they are derived values
	// and are never persisted.
	Summaries      map[string]classify.Summary
	TemplateHashes map[string]string
}

// Importer wires the ingest boundary to a store.
type Importer struct {
	store *store.Store
	log   *zap.Logger
}

// NewImporter returns an importer. A nil logger disables logging.
func NewImporter(s *store.Store, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: s, log: log}
}

// Import validates and persists one batch, then recomputes a summary per
// imported club. Records for clubs without a stored template are skipped
// and counted, never silently dropped.
func (imp *Importer) Import(ctx context.Context, batch Batch) (Result, error) {
	if err := checkSequenceIndices(batch.Records); err != nil {
		return Result{}, err
	}

	source := batch.Source
	if source == "" {
		source = uuid.NewString()
	}

	hashes, err := imp.store.TemplateHashesByClub(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: %w", err)
	}

	var shots []store.Shot
	skippedClubs := map[string]bool{}
	skipped := 0
	for _, rec := range batch.Records {
		if _, ok := hashes[rec.Club]; !ok {
			skippedClubs[rec.Club] = true
			skipped++
			continue
		}
		shots = append(shots, store.Shot{
			SequenceIndex: rec.SequenceIndex,
			Club:          rec.Club,
			Metrics:       rec.Metrics,
		})
	}

	sess, err := imp.store.InsertSession(ctx, store.SessionParams{
		Date:       batch.Date,
		Source:     source,
		DeviceType: batch.DeviceType,
		Location:   batch.Location,
	})
	if err != nil {
		return Result{}, fmt.Errorf("ingest: %w", err)
	}

	if _, err := imp.store.InsertShots(ctx, sess.ID, shots); err != nil {
		return Result{}, fmt.Errorf("ingest: %w", err)
	}

	result := Result{
		SessionID:      sess.ID,
		Source:         source,
		ImportedCount:  len(shots),
		SkippedCount:   skipped,
		Summaries:      map[string]classify.Summary{},
		TemplateHashes: map[string]string{},
	}
	for club := range skippedClubs {
		result.SkippedClubs = append(result.SkippedClubs, club)
	}
	sort.Strings(result.SkippedClubs)

	clubs, err := imp.store.SessionClubs(ctx, sess.ID)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: %w", err)
	}
	for _, club := range clubs {
		summary, hash, err := imp.summarizeClub(ctx, sess.ID, club, hashes[club])
		if err != nil {
			return Result{}, err
		}
		result.Summaries[club] = summary
		result.TemplateHashes[club] = hash
	}

	imp.log.Info("batch imported",
		zap.Int64("session_id", sess.ID),
		zap.String("source", source),
		zap.Int("imported", result.ImportedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Strings("skipped_clubs", result.SkippedClubs),
	)

	return result, nil
}

func (imp *Importer) summarizeClub(ctx context.Context, sessionID int64, club, hash string) (classify.Summary, string, error) {
	rec, found, err := imp.store.GetTemplate(ctx, hash)
	if err != nil {
		return classify.Summary{}, "", fmt.Errorf("ingest: template for %q: %w", club, err)
	}
	if !found {
		return classify.Summary{}, "", fmt.Errorf("ingest: template %s for %q vanished", hash, club)
	}
	tpl, err := kpi.ParseCanonical([]byte(rec.CanonicalJSON))
	if err != nil {
		return classify.Summary{}, "", fmt.Errorf("ingest: template for %q: %w", club, err)
	}

	shots, err := imp.store.ListShotsByClub(ctx, sessionID, club)
	if err != nil {
		return classify.Summary{}, "", fmt.Errorf("ingest: %w", err)
	}
	summary, err := classify.Summarize(shots, tpl)
	if err != nil {
		return classify.Summary{}, "", fmt.Errorf("ingest: %w", err)
	}
	return summary, hash, nil
}

func checkSequenceIndices(records []Record) error {
	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		if seen[rec.SequenceIndex] {
			return &DuplicateSequenceError{Index: rec.SequenceIndex}
		}
		seen[rec.SequenceIndex] = true
	}
	return nil
}
