package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fairwaykit/fairway/internal/canon"
)

func TestRecordFact_AppendsNeverUpdates(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	sess := testSession(t, s)
	key := FactKey{SessionID: sess.ID, Hole: 3}

	if _, err := s.RecordFact(ctx, key, canon.Int(6)); err != nil {
		t.Fatalf("RecordFact() failed: %v", err)
	}
	if _, err := s.RecordFact(ctx, key, canon.Int(5)); err != nil {
		t.Fatalf("RecordFact() correction failed: %v", err)
	}

	if n := countRows(t, s, "facts"); n != 2 {
		t.Errorf("fact rows = %d, want 2 (corrections append, never overwrite)", n)
	}
}

func TestCurrentValue_LatestWins(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	sess := testSession(t, s)
	key := FactKey{SessionID: sess.ID, Hole: 3}

	// Three writes at strictly increasing timestamps (the stepped clock
	// advances one second per call).
	for _, v := range []int64{6, 5, 4} {
		if _, err := s.RecordFact(ctx, key, canon.Int(v)); err != nil {
			t.Fatalf("RecordFact(%d) failed: %v", v, err)
		}
	}

	value, found, err := s.CurrentValue(ctx, key)
	if err != nil {
		t.Fatalf("CurrentValue() failed: %v", err)
	}
	if !found {
		t.Fatal("no current value after three writes")
	}
	if value != canon.Int(4) {
		t.Errorf("current value = %#v, want the last write Int(4)", value)
	}
}

// With a frozen clock every write carries an identical recorded_at, and
// the row id breaks the tie. The answer must be stable across repeated
// queries, not dependent on scan order.
func TestCurrentValue_TiedTimestampsResolveByRowID(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(func() time.Time { return frozen }))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	sess := testSession(t, s)
	key := FactKey{SessionID: sess.ID, Hole: 9}

	var last Fact
	for _, v := range []int64{7, 6, 5} {
		last, err = s.RecordFact(ctx, key, canon.Int(v))
		if err != nil {
			t.Fatalf("RecordFact(%d) failed: %v", v, err)
		}
	}

	history, err := s.History(ctx, key)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	for i := 1; i < len(history); i++ {
		if history[i].RecordedAt != history[0].RecordedAt {
			t.Fatalf("expected identical timestamps, got %q and %q", history[0].RecordedAt, history[i].RecordedAt)
		}
	}

	for i := 0; i < 5; i++ {
		value, found, err := s.CurrentValue(ctx, key)
		if err != nil || !found {
			t.Fatalf("CurrentValue() query %d: found=%v err=%v", i, found, err)
		}
		if value != last.Value {
			t.Errorf("query %d: current value = %#v, want greatest row id's Int(5)", i, value)
		}
	}
}

func TestCurrentValue_MissingKey(t *testing.T) {
	s, _ := createTestStore(t)
	sess := testSession(t, s)

	_, found, err := s.CurrentValue(context.Background(), FactKey{SessionID: sess.ID, Hole: 1})
	if err != nil {
		t.Fatalf("CurrentValue() failed: %v", err)
	}
	if found {
		t.Error("found = true for a key with no facts")
	}
}

func TestCurrentValue_KeysAreIndependent(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	sess := testSession(t, s)

	if _, err := s.RecordFact(ctx, FactKey{SessionID: sess.ID, Hole: 1}, canon.Int(4)); err != nil {
		t.Fatalf("RecordFact() failed: %v", err)
	}
	if _, err := s.RecordFact(ctx, FactKey{SessionID: sess.ID, Hole: 2}, canon.Int(5)); err != nil {
		t.Fatalf("RecordFact() failed: %v", err)
	}
	if _, err := s.RecordFact(ctx, FactKey{SessionID: sess.ID, Hole: 1, Actor: 1}, canon.Int(3)); err != nil {
		t.Fatalf("RecordFact() failed: %v", err)
	}

	cases := []struct {
		key  FactKey
		want canon.Value
	}{
		{FactKey{SessionID: sess.ID, Hole: 1}, canon.Int(4)},
		{FactKey{SessionID: sess.ID, Hole: 2}, canon.Int(5)},
		{FactKey{SessionID: sess.ID, Hole: 1, Actor: 1}, canon.Int(3)},
	}
	for _, c := range cases {
		value, found, err := s.CurrentValue(ctx, c.key)
		if err != nil || !found {
			t.Fatalf("CurrentValue(%+v): found=%v err=%v", c.key, found, err)
		}
		if value != c.want {
			t.Errorf("CurrentValue(%+v) = %#v, want %#v", c.key, value, c.want)
		}
	}
}

func TestHistory_OldestFirst(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	sess := testSession(t, s)
	key := FactKey{SessionID: sess.ID, Hole: 12}

	for _, v := range []int64{6, 5, 4} {
		if _, err := s.RecordFact(ctx, key, canon.Int(v)); err != nil {
			t.Fatalf("RecordFact(%d) failed: %v", v, err)
		}
	}

	history, err := s.History(ctx, key)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	for i, want := range []canon.Value{canon.Int(6), canon.Int(5), canon.Int(4)} {
		if history[i].Value != want {
			t.Errorf("history[%d].Value = %#v, want %#v", i, history[i].Value, want)
		}
		if i > 0 && history[i].RecordedAt < history[i-1].RecordedAt {
			t.Errorf("history not ordered oldest first at index %d", i)
		}
	}
}

func TestRecordFact_HoleOutOfRange(t *testing.T) {
	s, _ := createTestStore(t)
	sess := testSession(t, s)

	for _, hole := range []int{0, -1, 19} {
		_, err := s.RecordFact(context.Background(), FactKey{SessionID: sess.ID, Hole: hole}, canon.Int(4))
		if !IsInvalidRange(err) {
			t.Errorf("hole %d: error = %v, want INVALID_RANGE", hole, err)
		}
	}
}

func TestRecordFact_NegativeActor(t *testing.T) {
	s, _ := createTestStore(t)
	sess := testSession(t, s)

	_, err := s.RecordFact(context.Background(), FactKey{SessionID: sess.ID, Hole: 1, Actor: -1}, canon.Int(4))
	if !IsInvalidRange(err) {
		t.Errorf("error = %v, want INVALID_RANGE", err)
	}
}

func TestRecordFact_MissingSession(t *testing.T) {
	s, _ := createTestStore(t)

	_, err := s.RecordFact(context.Background(), FactKey{SessionID: 999, Hole: 1}, canon.Int(4))
	if !IsForeignKeyViolation(err) {
		t.Errorf("error = %v, want FOREIGN_KEY", err)
	}
}

func TestRecordFact_StructuredValue(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	sess := testSession(t, s)
	key := FactKey{SessionID: sess.ID, Hole: 5}

	if _, err := s.RecordFact(ctx, key, canon.Object{
		"strokes": canon.Int(5),
		"putts":   canon.Int(2),
	}); err != nil {
		t.Fatalf("RecordFact() failed: %v", err)
	}

	value, found, err := s.CurrentValue(ctx, key)
	if err != nil || !found {
		t.Fatalf("CurrentValue(): found=%v err=%v", found, err)
	}
	obj, ok := value.(canon.Object)
	if !ok {
		t.Fatalf("value type = %T, want canon.Object", value)
	}
	if obj["strokes"] != canon.Int(5) || obj["putts"] != canon.Int(2) {
		t.Errorf("round-tripped object = %#v", obj)
	}
}
