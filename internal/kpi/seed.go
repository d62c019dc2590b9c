package kpi

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/fairwaykit/fairway/internal/store"
)

//go:embed seeds/*.json
var seedFS embed.FS

// SeedResult reports one seeded template.
type SeedResult struct {
	Club     string
	Hash     string
	Inserted bool // false when the template was already present
}

// SeedTemplates returns the built-in seed templates, ordered by club.
func SeedTemplates() ([]Template, error) {
	entries, err := fs.ReadDir(seedFS, "seeds")
	if err != nil {
		return nil, fmt.Errorf("read seed templates: %w", err)
	}

	templates := make([]Template, 0, len(entries))
	for _, entry := range entries {
		data, err := fs.ReadFile(seedFS, "seeds/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read seed template %s: %w", entry.Name(), err)
		}
		t, err := Load(data)
		if err != nil {
			return nil, fmt.Errorf("seed template %s: %w", entry.Name(), err)
		}
		templates = append(templates, t)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Club < templates[j].Club })
	return templates, nil
}

// EnsureSeeded inserts the built-in seed templates. Content addressing
// makes this idempotent: running it against an already seeded store is a
// no-op that reports Inserted=false for every template.
func EnsureSeeded(ctx context.Context, s *store.Store) ([]SeedResult, error) {
	templates, err := SeedTemplates()
	if err != nil {
		return nil, err
	}

	results := make([]SeedResult, 0, len(templates))
	for _, t := range templates {
		rec, inserted, err := s.InsertTemplate(ctx, t.ContentValue())
		if err != nil {
			return nil, fmt.Errorf("seed template %q: %w", t.Club, err)
		}
		results = append(results, SeedResult{Club: t.Club, Hash: rec.Hash, Inserted: inserted})
	}
	return results, nil
}
