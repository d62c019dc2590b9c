package projection

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaykit/fairway/internal/canon"
	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/store"
)

func ptr(f float64) *float64 { return &f }

func fixtureProjection() Projection {
	return Generate(
		store.Session{ID: 7, Date: "2026-03-01T10:00:00Z", Source: "range-batch-1"},
		"7i",
		"85d005ea362702de607fed4c8857e4cfd0f837a5a13f69bded348c968e4a94fe",
		classify.Summary{
			TotalShots:     6,
			ACount:         3,
			BCount:         2,
			CCount:         1,
			APercentage:    ptr(50),
			AvgCarry:       ptr(162.5),
			AvgBallSpeed:   ptr(110.25),
			AvgSpin:        ptr(6500),
			ValidityStatus: classify.ValidityLowSample,
		},
	)
}

func TestSerialize_Golden(t *testing.T) {
	g := goldie.New(t)

	data, err := fixtureProjection().Serialize()
	require.NoError(t, err)
	g.Assert(t, "club_session_summary", data)
}

func TestSerialize_Deterministic(t *testing.T) {
	p := fixtureProjection()
	first, err := p.Serialize()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.Serialize()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHash_MatchesSerializedBytes(t *testing.T) {
	p := fixtureProjection()
	data, err := p.Serialize()
	require.NoError(t, err)

	hash, err := p.Hash()
	require.NoError(t, err)
	assert.Equal(t, canon.SHA256Hex(data), hash)
}

// Absent statistics disappear from the document instead of serializing as
// null or zero.
func TestDocument_OmitsAbsentStatistics(t *testing.T) {
	p := Generate(
		store.Session{ID: 3, Date: "2026-03-02T10:00:00Z", Source: "range-batch-2"},
		"7i",
		"85d005ea362702de607fed4c8857e4cfd0f837a5a13f69bded348c968e4a94fe",
		classify.Summary{
			TotalShots:     3,
			CCount:         3,
			ValidityStatus: classify.ValidityInvalid,
		},
	)

	doc := p.Document()
	summary := doc["summary"].(canon.Object)
	assert.NotContains(t, summary, "a_percentage")
	assert.NotContains(t, summary, "averages")
}

func TestImport_AlwaysRejected(t *testing.T) {
	data, err := fixtureProjection().Serialize()
	require.NoError(t, err)
	assert.ErrorIs(t, Import(data), ErrProjectionImport)
	assert.ErrorIs(t, Import(nil), ErrProjectionImport)
}
