package classify

import (
	"fmt"

	"github.com/fairwaykit/fairway/internal/kpi"
	"github.com/fairwaykit/fairway/internal/store"
)

// Validity qualifies a summary by sample size.
type Validity string

const (
	ValidityInvalid   Validity = "invalid_insufficient_data" // fewer than 5 shots
	ValidityLowSample Validity = "valid_low_sample_warning"  // 5-14 shots
	ValidityValid     Validity = "valid"                     // 15 or more shots
)

// ValidityRank orders validity statuses from weakest to strongest, for
// minimum-validity filtering.
func ValidityRank(v Validity) int {
	switch v {
	case ValidityValid:
		return 2
	case ValidityLowSample:
		return 1
	}
	return 0
}

// Summary aggregates one set of graded shots.
//
// The pointer fields model explicit absence: APercentage is nil below the
// 5-shot sample threshold (not zero), and each average is nil when no
// A-graded shot carries that metric.
type Summary struct {
	TotalShots int
	ACount     int
	BCount     int
	CCount     int

	APercentage *float64

	AvgCarry     *float64
	AvgBallSpeed *float64
	AvgSpin      *float64
	AvgDescent   *float64

	ValidityStatus Validity
}

// averagedMetrics maps summary average fields to shot metric names.
// Averages draw only from A-graded shots holding the metric.
var averagedMetrics = []struct {
	metric string
	assign func(*Summary, *float64)
}{
	{"carry", func(s *Summary, v *float64) { s.AvgCarry = v }},
	{"ball_speed", func(s *Summary, v *float64) { s.AvgBallSpeed = v }},
	{"spin_rate", func(s *Summary, v *float64) { s.AvgSpin = v }},
	{"descent_angle", func(s *Summary, v *float64) { s.AvgDescent = v }},
}

// Aggregate folds grades into a Summary. grades and shots must be parallel
// slices as produced by Classify.
func Aggregate(grades []Grade, shots []store.ShotRecord) (Summary, error) {
	if len(grades) != len(shots) {
		return Summary{}, fmt.Errorf("aggregate: %d grades for %d shots", len(grades), len(shots))
	}

	s := Summary{TotalShots: len(shots)}
	for _, g := range grades {
		switch g {
		case GradeA:
			s.ACount++
		case GradeB:
			s.BCount++
		case GradeC:
			s.CCount++
		default:
			return Summary{}, fmt.Errorf("aggregate: unknown grade %q", g)
		}
	}

	s.ValidityStatus = validityFor(s.TotalShots)
	if s.TotalShots >= 5 {
		pct := float64(s.ACount) / float64(s.TotalShots) * 100
		s.APercentage = &pct
	}

	for _, am := range averagedMetrics {
		am.assign(&s, averageOverA(grades, shots, am.metric))
	}

	return s, nil
}

// Summarize is the common classify-then-aggregate path.
func Summarize(shots []store.ShotRecord, tpl kpi.Template) (Summary, error) {
	grades, err := Classify(shots, tpl)
	if err != nil {
		return Summary{}, err
	}
	return Aggregate(grades, shots)
}

func validityFor(total int) Validity {
	switch {
	case total < 5:
		return ValidityInvalid
	case total < 15:
		return ValidityLowSample
	}
	return ValidityValid
}

// averageOverA computes the mean of one metric over A-graded shots that
// carry it. Returns nil when none do.
func averageOverA(grades []Grade, shots []store.ShotRecord, metric string) *float64 {
	var sum float64
	var n int
	for i, shot := range shots {
		if grades[i] != GradeA {
			continue
		}
		if v, ok := metricNumber(shot.Metrics, metric); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
