package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const batchYAML = `
date: "2026-03-01T10:00:00Z"
source: range-batch-1
records:
  - sequence_index: 0
    club: 7i
    metrics: {ball_speed: 112.0, smash_factor: 1.40, spin_rate: 6500, descent_angle: 47.0}
  - sequence_index: 1
    club: 7i
    metrics: {ball_speed: 95.0, smash_factor: 1.30, spin_rate: 5000, descent_angle: 40.0}
  - sequence_index: 2
    club: 5i
    metrics: {ball_speed: 120.0, smash_factor: 1.42, spin_rate: 5200, descent_angle: 44.0}
`

const nineHoleCourseYAML = `
name: Heath Links
tee: white
holes:
  - {number: 1, par: 4}
  - {number: 2, par: 3, stroke_index: 17}
  - {number: 3, par: 4}
  - {number: 4, par: 5}
  - {number: 5, par: 4}
  - {number: 6, par: 3}
  - {number: 7, par: 4}
  - {number: 8, par: 5}
  - {number: 9, par: 4}
`

func TestSeedCommand_Idempotent(t *testing.T) {
	dir := t.TempDir()

	first := runCommand(t, dir, []string{"seed"}, false)
	assert.Contains(t, first, "installed")
	assert.Contains(t, first, "7i")

	second := runCommand(t, dir, []string{"seed"}, false)
	assert.Contains(t, second, "already present")
	assert.NotContains(t, second, " installed")
}

func TestIngestAndAnalyze(t *testing.T) {
	dir := t.TempDir()
	runCommand(t, dir, []string{"seed"}, false)

	batch := writeTempFile(t, "batch.yaml", batchYAML)
	out := runCommand(t, dir, []string{"ingest", batch}, false)
	assert.Contains(t, out, "imported 3 shots, skipped 0")
	assert.Contains(t, out, "7i")
	assert.Contains(t, out, "5i")

	out = runCommand(t, dir, []string{"analyze", "--session", "1"}, false)
	assert.Contains(t, out, "7i")
	assert.Contains(t, out, "invalid_insufficient_data")
}

func TestIngest_SkipsClubsWithoutTemplates(t *testing.T) {
	dir := t.TempDir()
	runCommand(t, dir, []string{"seed"}, false)

	batch := writeTempFile(t, "batch.yaml", `
date: "2026-03-01T10:00:00Z"
source: range-batch-2
records:
  - {sequence_index: 0, club: pw, metrics: {ball_speed: 95.0}}
  - {sequence_index: 1, club: 7i, metrics: {ball_speed: 112.0, smash_factor: 1.40, spin_rate: 6500, descent_angle: 47.0}}
`)
	out := runCommand(t, dir, []string{"ingest", batch}, false)
	assert.Contains(t, out, "imported 1 shots, skipped 1")
	assert.Contains(t, out, "pw")
}

func TestTemplateAddListShow(t *testing.T) {
	dir := t.TempDir()

	tpl := writeTempFile(t, "pw.yaml", `
schema_version: "1.0"
club: pw
aggregation_method: worst_metric
metrics:
  ball_speed:
    direction: higher_is_better
    a_min: 96.0
    b_min: 92.0
`)
	out := runCommand(t, dir, []string{"template", "add", tpl}, false)
	assert.Contains(t, out, "stored template for pw")

	hash := extractHash(t, out)
	out = runCommand(t, dir, []string{"template", "add", tpl}, false)
	assert.Contains(t, out, "already stored")
	assert.Contains(t, out, hash)

	out = runCommand(t, dir, []string{"template", "list", "--club", "pw"}, false)
	assert.Contains(t, out, "pw")

	out = runCommand(t, dir, []string{"template", "show", hash}, false)
	assert.Contains(t, out, `"club":"pw"`)
}

func TestTemplateAdd_InvalidDocument(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTempFile(t, "bad.yaml", "club: pw\n")
	out := runCommand(t, dir, []string{"template", "add", tpl}, true)
	assert.Contains(t, out, "invalid template")
}

func TestCourseAddShow(t *testing.T) {
	dir := t.TempDir()

	course := writeTempFile(t, "course.yaml", nineHoleCourseYAML)
	out := runCommand(t, dir, []string{"course", "add", course}, false)
	assert.Contains(t, out, `stored course "Heath Links"`)

	hash := extractHash(t, out)
	out = runCommand(t, dir, []string{"course", "show", hash}, false)
	assert.Contains(t, out, "Heath Links")
	assert.Contains(t, out, "9 holes")
}

func TestCourseAdd_NonContiguousRejected(t *testing.T) {
	dir := t.TempDir()

	course := writeTempFile(t, "bad.yaml", strings.Replace(nineHoleCourseYAML,
		"{number: 9, par: 4}", "{number: 10, par: 4}", 1))
	out := runCommand(t, dir, []string{"course", "add", course}, true)
	assert.Contains(t, out, "INVALID_HOLE_SET")
}

func TestScoreRecordCurrentHistory(t *testing.T) {
	dir := t.TempDir()
	runCommand(t, dir, []string{"seed"}, false)
	batch := writeTempFile(t, "batch.yaml", batchYAML)
	runCommand(t, dir, []string{"ingest", batch}, false)

	runCommand(t, dir, []string{"score", "record", "--session", "1", "--hole", "4", "6"}, false)
	runCommand(t, dir, []string{"score", "record", "--session", "1", "--hole", "4", "5"}, false)

	out := runCommand(t, dir, []string{"score", "current", "--session", "1", "--hole", "4"}, false)
	assert.Contains(t, out, "5")
	assert.NotContains(t, out, "6")

	out = runCommand(t, dir, []string{"score", "history", "--session", "1", "--hole", "4"}, false)
	assert.Contains(t, out, "6")
	assert.Contains(t, out, "5")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	runCommand(t, dir, []string{"seed"}, false)
	batch := writeTempFile(t, "batch.yaml", batchYAML)
	runCommand(t, dir, []string{"ingest", batch}, false)

	out := runCommand(t, dir, []string{"export", "--session", "1", "--club", "7i"}, false)
	assert.Contains(t, out, `"kind":"club_session_summary"`)
	assert.Contains(t, out, `"club":"7i"`)
	assert.Contains(t, out, `"total_shots":2`)

	// Deterministic: a second export emits identical bytes.
	again := runCommand(t, dir, []string{"export", "--session", "1", "--club", "7i"}, false)
	assert.Equal(t, out, again)
}

func TestTrendCommand(t *testing.T) {
	dir := t.TempDir()
	runCommand(t, dir, []string{"seed"}, false)
	batch := writeTempFile(t, "batch.yaml", batchYAML)
	runCommand(t, dir, []string{"ingest", batch}, false)

	out := runCommand(t, dir, []string{"trend", "7i"}, false)
	assert.Contains(t, out, "2026-03-01T10:00:00Z")
	assert.Contains(t, out, "shot-weighted A%")

	out = runCommand(t, dir, []string{"trend", "pw"}, true)
	assert.Contains(t, out, "pw")
}

// extractHash pulls the 64-hex content hash out of command output.
func extractHash(t *testing.T, out string) string {
	t.Helper()
	for _, field := range strings.Fields(out) {
		if len(field) == 64 {
			return field
		}
	}
	t.Fatalf("no content hash in output: %s", out)
	return ""
}
