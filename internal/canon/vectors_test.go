package canon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vector is one entry of the frozen canonical-form battery. Each carries a
// literal input document, the literal expected canonical string, and the
// literal expected SHA-256 digest. These are compared byte-for-byte: any
// drift here changes every content address in every database.
type vector struct {
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	Canonical string          `json:"canonical"`
	SHA256    string          `json:"sha256"`
}

func loadVectors(t *testing.T) []vector {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "vectors.json"))
	require.NoError(t, err)

	var doc struct {
		Vectors []vector `json:"vectors"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotEmpty(t, doc.Vectors)
	return doc.Vectors
}

func TestCanonicalVectors(t *testing.T) {
	for _, vec := range loadVectors(t) {
		t.Run(vec.Name, func(t *testing.T) {
			v, err := FromJSON(vec.Input)
			require.NoError(t, err)

			canonical, err := MarshalCanonical(v)
			require.NoError(t, err)
			assert.Equal(t, vec.Canonical, string(canonical))

			assert.Equal(t, vec.SHA256, SHA256Hex(canonical))
		})
	}
}

func TestCanonicalVectors_HashValueAgrees(t *testing.T) {
	// HashValue is the write-path composition; it must agree with
	// canonicalize-then-hash for every vector.
	for _, vec := range loadVectors(t) {
		v, err := FromJSON(vec.Input)
		require.NoError(t, err)

		hash, canonical, err := HashValue(v)
		require.NoError(t, err)
		assert.Equal(t, vec.SHA256, hash, vec.Name)
		assert.Equal(t, vec.Canonical, string(canonical), vec.Name)
	}
}

func TestTemplateFixtures_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)

	goldenHashes := loadTemplateHashes(t)
	for _, name := range []string{"template_7i", "template_5i", "template_driver"} {
		t.Run(name, func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join("testdata", name+".json"))
			require.NoError(t, err)

			v, err := FromJSON(raw)
			require.NoError(t, err)

			canonical, err := MarshalCanonical(v)
			require.NoError(t, err)
			g.Assert(t, name, canonical)

			assert.Equal(t, goldenHashes[name], SHA256Hex(canonical))
		})
	}
}

func loadTemplateHashes(t *testing.T) map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "template_hashes.json"))
	require.NoError(t, err)

	hashes := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &hashes))
	return hashes
}

func TestVerifyContent(t *testing.T) {
	v, err := FromJSON([]byte(`{"b":1,"a":2}`))
	require.NoError(t, err)

	hash, _, err := HashValue(v)
	require.NoError(t, err)

	ok, err := VerifyContent(v, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyContent(v, "0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.False(t, ok)
}
