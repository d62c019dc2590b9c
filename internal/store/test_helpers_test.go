package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fairwaykit/fairway/internal/canon"
	"github.com/fairwaykit/fairway/internal/testutil"
)

// countingCodec wraps the production codec and counts invocations. The
// store's contract is that inserts canonicalize and hash exactly once per
// logical insert, and fetches never do; these counters verify it.
type countingCodec struct {
	mu               sync.Mutex
	inner            canon.Codec
	canonicalizeCall int
	hashCalls        int
}

func newCountingCodec() *countingCodec {
	return &countingCodec{inner: canon.DefaultCodec{}}
}

func (c *countingCodec) Canonicalize(v canon.Value) ([]byte, error) {
	c.mu.Lock()
	c.canonicalizeCall++
	c.mu.Unlock()
	return c.inner.Canonicalize(v)
}

func (c *countingCodec) HashHex(canonical []byte) string {
	c.mu.Lock()
	c.hashCalls++
	c.mu.Unlock()
	return c.inner.HashHex(canonical)
}

func (c *countingCodec) counts() (canonicalizations, hashes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canonicalizeCall, c.hashCalls
}

// createTestStore creates a store backed by a temp file with a counting
// codec and a deterministic clock stepping one second per stamp.
func createTestStore(t *testing.T) (*Store, *countingCodec) {
	t.Helper()
	codec := newCountingCodec()
	clock := testutil.NewSteppedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second)

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithCodec(codec), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, codec
}

// testTemplateContent is a minimal valid template document.
func testTemplateContent(club string) canon.Object {
	return canon.Object{
		"schema_version":     canon.String("1.0"),
		"club":               canon.String(club),
		"aggregation_method": canon.String("worst_metric"),
		"metrics": canon.Object{
			"ball_speed": canon.Object{
				"direction": canon.String("higher_is_better"),
				"a_min":     canon.Float(108.92),
				"b_min":     canon.Float(106.6),
			},
		},
	}
}

// testSession inserts a session and returns it.
func testSession(t *testing.T, s *Store) Session {
	t.Helper()
	sess, err := s.InsertSession(context.Background(), SessionParams{
		Date:   "2026-03-01T10:00:00Z",
		Source: "range-batch-1",
	})
	if err != nil {
		t.Fatalf("InsertSession() failed: %v", err)
	}
	return sess
}

// frontNine builds holes 1-9 with par 4.
func frontNine() []Hole {
	holes := make([]Hole, 9)
	for i := range holes {
		holes[i] = Hole{Number: i + 1, Par: 4}
	}
	return holes
}

// fullEighteen builds holes 1-18 with par 4.
func fullEighteen() []Hole {
	holes := make([]Hole, 18)
	for i := range holes {
		holes[i] = Hole{Number: i + 1, Par: 4}
	}
	return holes
}
