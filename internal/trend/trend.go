// Package trend recomputes per-session summaries for a club across
// session history. Every data point is derived on demand from stored
// shots and the club's template; nothing here reads or writes derived
// state.
package trend

import (
	"context"
	"fmt"

	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/kpi"
	"github.com/fairwaykit/fairway/internal/store"
)

// Options filters a trend computation.
type Options struct {
	// Window keeps only the most recent N qualifying sessions. Zero keeps
	// all of them.
	Window int

	// MinValidity drops sessions whose summary is weaker than this status.
	// Empty admits everything.
	MinValidity classify.Validity
}

// Point is one session's recomputed summary for the club.
type Point struct {
	SessionID int64
	Date      string
	Summary   classify.Summary
}

// ClubTrend is the chronological trend for one club.
type ClubTrend struct {
	Club         string
	TemplateHash string
	Points       []Point // oldest first

	TotalShots int

	// WeightedAPercentage is the shot-weighted average A-percentage over
	// the included points: total A shots over total shots. Nil when the
	// trend covers no shots.
	WeightedAPercentage *float64
}

// ComputeClubTrend walks all sessions chronologically and summarizes the
// club's shots in each. Sessions without shots for the club are skipped;
// sessions below the minimum validity are dropped; the window, when set,
// keeps the most recent qualifying points.
func ComputeClubTrend(ctx context.Context, s *store.Store, club string, opts Options) (ClubTrend, error) {
	hashes, err := s.TemplateHashesByClub(ctx)
	if err != nil {
		return ClubTrend{}, fmt.Errorf("club trend: %w", err)
	}
	hash, ok := hashes[club]
	if !ok {
		return ClubTrend{}, fmt.Errorf("club trend: no template for club %q", club)
	}

	rec, found, err := s.GetTemplate(ctx, hash)
	if err != nil {
		return ClubTrend{}, fmt.Errorf("club trend: %w", err)
	}
	if !found {
		return ClubTrend{}, fmt.Errorf("club trend: template %s vanished", hash)
	}
	tpl, err := kpi.ParseCanonical([]byte(rec.CanonicalJSON))
	if err != nil {
		return ClubTrend{}, fmt.Errorf("club trend: %w", err)
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return ClubTrend{}, fmt.Errorf("club trend: %w", err)
	}

	minRank := classify.ValidityRank(opts.MinValidity)
	trend := ClubTrend{Club: club, TemplateHash: hash}
	for _, sess := range sessions {
		shots, err := s.ListShotsByClub(ctx, sess.ID, club)
		if err != nil {
			return ClubTrend{}, fmt.Errorf("club trend: session %d: %w", sess.ID, err)
		}
		if len(shots) == 0 {
			continue
		}
		summary, err := classify.Summarize(shots, tpl)
		if err != nil {
			return ClubTrend{}, fmt.Errorf("club trend: session %d: %w", sess.ID, err)
		}
		if classify.ValidityRank(summary.ValidityStatus) < minRank {
			continue
		}
		trend.Points = append(trend.Points, Point{SessionID: sess.ID, Date: sess.Date, Summary: summary})
	}

	if opts.Window > 0 && len(trend.Points) > opts.Window {
		trend.Points = trend.Points[len(trend.Points)-opts.Window:]
	}

	var aShots int
	for _, p := range trend.Points {
		trend.TotalShots += p.Summary.TotalShots
		aShots += p.Summary.ACount
	}
	if trend.TotalShots > 0 {
		pct := float64(aShots) / float64(trend.TotalShots) * 100
		trend.WeightedAPercentage = &pct
	}

	return trend, nil
}
