// Package classify grades shots against a club's template and aggregates
// the grades into summaries. The engine is pure: it owns no state, borrows
// shots and template by value, and identical inputs always produce
// identical outputs. Nothing computed here is ever persisted as
// authoritative.
package classify

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fairwaykit/fairway/internal/canon"
	"github.com/fairwaykit/fairway/internal/kpi"
	"github.com/fairwaykit/fairway/internal/store"
)

// Grade is a shot classification. Ordering is worst-dominates: C over B
// over A.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// AggregationWorstMetric is the only aggregation strategy the engine
// implements: a shot's overall grade is the worst of its evaluated
// per-metric grades.
const AggregationWorstMetric = "worst_metric"

// ErrUnsupportedAggregation is returned when a template names an
// aggregation strategy the engine does not implement.
var ErrUnsupportedAggregation = errors.New("unsupported aggregation method")

// recognizedMetrics is the closed enumeration of metric identifiers the
// engine evaluates. Template entries outside this set are ignored during
// grading but round-trip through storage without loss.
var recognizedMetrics = map[string]bool{
	"ball_speed":    true,
	"smash_factor":  true,
	"spin_rate":     true,
	"descent_angle": true,
}

// UnrecognizedMetrics returns the template's metric names the engine will
// not evaluate, in code-point order.
func UnrecognizedMetrics(tpl kpi.Template) []string {
	var names []string
	for name := range tpl.Metrics {
		if !recognizedMetrics[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Classify grades each shot against the template. The result has one grade
// per shot, in input order.
func Classify(shots []store.ShotRecord, tpl kpi.Template) ([]Grade, error) {
	if tpl.AggregationMethod != AggregationWorstMetric {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAggregation, tpl.AggregationMethod)
	}

	grades := make([]Grade, len(shots))
	for i, shot := range shots {
		grades[i] = gradeShot(shot.Metrics, tpl)
	}
	return grades, nil
}

// gradeShot evaluates one shot. Unknown template metrics are skipped; a
// recognized metric missing from the shot contributes a C. A shot with
// zero evaluated metrics grades A: no evidence of a problem.
func gradeShot(metrics canon.Object, tpl kpi.Template) Grade {
	overall := GradeA
	for name, threshold := range tpl.Metrics {
		if !recognizedMetrics[name] {
			continue
		}
		value, ok := metricNumber(metrics, name)
		if !ok {
			overall = worseOf(overall, GradeC)
			continue
		}
		overall = worseOf(overall, gradeMetric(value, threshold))
	}
	return overall
}

func gradeMetric(value float64, th kpi.Threshold) Grade {
	switch th.Direction {
	case kpi.HigherIsBetter:
		if th.AMin != nil && value >= *th.AMin {
			return GradeA
		}
		if th.BMin != nil && value >= *th.BMin {
			return GradeB
		}
	case kpi.LowerIsBetter:
		if th.AMax != nil && value <= *th.AMax {
			return GradeA
		}
		if th.BMax != nil && value <= *th.BMax {
			return GradeB
		}
	}
	return GradeC
}

func worseOf(a, b Grade) Grade {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

func rank(g Grade) int {
	switch g {
	case GradeC:
		return 2
	case GradeB:
		return 1
	}
	return 0
}

// metricNumber extracts a numeric metric value from a shot's open-ended
// metric map. Non-numeric values count as missing.
func metricNumber(metrics canon.Object, name string) (float64, bool) {
	v, ok := metrics[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case canon.Int:
		return float64(n), true
	case canon.Float:
		return float64(n), true
	}
	return 0, false
}
