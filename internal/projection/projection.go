// Package projection exports recomputed summaries as deterministic
// documents. Projections flow one way: they are regenerable from stored
// facts at any time and are never accepted back as authoritative input.
package projection

import (
	"errors"

	"github.com/fairwaykit/fairway/internal/canon"
	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/store"
)

// SchemaVersion identifies the projection document shape.
const SchemaVersion = "1.0"

// ErrProjectionImport rejects any attempt to ingest a projection.
var ErrProjectionImport = errors.New("projections are regenerable exports, not authoritative inputs")

// Projection is one exported club-session summary.
type Projection struct {
	Session      store.Session
	Club         string
	TemplateHash string
	Summary      classify.Summary
}

// Generate builds a projection from a session, its club and template, and
// the recomputed summary.
func Generate(sess store.Session, club, templateHash string, summary classify.Summary) Projection {
	return Projection{Session: sess, Club: club, TemplateHash: templateHash, Summary: summary}
}

// Document returns the projection as a value ready for canonicalization.
// Absent statistics are omitted, not emitted as null or zero.
func (p Projection) Document() canon.Object {
	summary := canon.Object{
		"total_shots":     canon.Int(int64(p.Summary.TotalShots)),
		"a_count":         canon.Int(int64(p.Summary.ACount)),
		"b_count":         canon.Int(int64(p.Summary.BCount)),
		"c_count":         canon.Int(int64(p.Summary.CCount)),
		"validity_status": canon.String(p.Summary.ValidityStatus),
	}
	if p.Summary.APercentage != nil {
		summary["a_percentage"] = canon.Float(*p.Summary.APercentage)
	}

	averages := canon.Object{}
	putAvg(averages, "carry", p.Summary.AvgCarry)
	putAvg(averages, "ball_speed", p.Summary.AvgBallSpeed)
	putAvg(averages, "spin_rate", p.Summary.AvgSpin)
	putAvg(averages, "descent_angle", p.Summary.AvgDescent)
	if len(averages) > 0 {
		summary["averages"] = averages
	}

	return canon.Object{
		"schema_version": canon.String(SchemaVersion),
		"kind":           canon.String("club_session_summary"),
		"session": canon.Object{
			"id":     canon.Int(p.Session.ID),
			"date":   canon.String(p.Session.Date),
			"source": canon.String(p.Session.Source),
		},
		"club":          canon.String(p.Club),
		"template_hash": canon.String(p.TemplateHash),
		"summary":       summary,
	}
}

// Serialize emits the projection as canonical JSON. Identical inputs
// always produce byte-identical output.
func (p Projection) Serialize() ([]byte, error) {
	return canon.MarshalCanonical(p.Document())
}

// Hash returns the content hash of the serialized projection.
func (p Projection) Hash() (string, error) {
	hash, _, err := canon.HashValue(p.Document())
	return hash, err
}

// Import always fails: a projection can never re-enter the system as data.
func Import(data []byte) error {
	return ErrProjectionImport
}

func putAvg(obj canon.Object, key string, v *float64) {
	if v != nil {
		obj[key] = canon.Float(*v)
	}
}
