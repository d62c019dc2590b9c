package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fairwaykit/fairway/internal/canon"
	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/ingest"
)

// batchFile is the on-disk shape of an ingest batch (YAML or JSON).
type batchFile struct {
	Date       string `yaml:"date"`
	Source     string `yaml:"source"`
	DeviceType string `yaml:"device_type"`
	Location   string `yaml:"location"`
	Records    []struct {
		SequenceIndex int            `yaml:"sequence_index"`
		Club          string         `yaml:"club"`
		Metrics       map[string]any `yaml:"metrics"`
	} `yaml:"records"`
}

// NewIngestCommand imports a shot batch file.
func NewIngestCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <batch-file>",
		Short: "Import a shot batch from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := readBatchFile(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			log, err := newLogger(opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "building logger", err)
			}
			defer log.Sync()

			result, err := ingest.NewImporter(s, log).Import(cmd.Context(), batch)
			if err != nil {
				return WrapExitError(ExitFailure, "importing batch", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %d: imported %d shots, skipped %d\n",
				result.SessionID, result.ImportedCount, result.SkippedCount)
			if len(result.SkippedClubs) > 0 {
				gradeYellow.Fprintf(out, "no template for: %v\n", result.SkippedClubs)
			}
			renderSummaries(out, result.Summaries)
			return nil
		},
	}
}

func readBatchFile(path string) (ingest.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingest.Batch{}, WrapExitError(ExitCommandError, fmt.Sprintf("reading batch file %s", path), err)
	}

	var raw batchFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ingest.Batch{}, WrapExitError(ExitCommandError, fmt.Sprintf("parsing batch file %s", path), err)
	}

	batch := ingest.Batch{
		Date:       raw.Date,
		Source:     raw.Source,
		DeviceType: raw.DeviceType,
		Location:   raw.Location,
	}
	for _, rec := range raw.Records {
		metrics, err := metricsObject(rec.Metrics)
		if err != nil {
			return ingest.Batch{}, WrapExitError(ExitCommandError,
				fmt.Sprintf("batch record %d", rec.SequenceIndex), err)
		}
		batch.Records = append(batch.Records, ingest.Record{
			SequenceIndex: rec.SequenceIndex,
			Club:          rec.Club,
			Metrics:       metrics,
		})
	}
	return batch, nil
}

func metricsObject(m map[string]any) (canon.Object, error) {
	if m == nil {
		return canon.Object{}, nil
	}
	v, err := canon.FromGo(m)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(canon.Object)
	if !ok {
		return nil, fmt.Errorf("metrics must be an object")
	}
	return obj, nil
}

// renderSummaries prints one table row per club.
func renderSummaries(out io.Writer, summaries map[string]classify.Summary) {
	if len(summaries) == 0 {
		return
	}
	clubs := make([]string, 0, len(summaries))
	for club := range summaries {
		clubs = append(clubs, club)
	}
	sort.Strings(clubs)

	table := tablewriter.NewWriter(out)
	table.Header("Club", "Shots", "A", "B", "C", "A%", "Validity")
	for _, club := range clubs {
		s := summaries[club]
		table.Append([]string{
			club,
			fmt.Sprintf("%d", s.TotalShots),
			gradeGreen.Sprintf("%d", s.ACount),
			gradeYellow.Sprintf("%d", s.BCount),
			gradeRed.Sprintf("%d", s.CCount),
			formatPct(s.APercentage),
			string(s.ValidityStatus),
		})
	}
	table.Render()
}

func formatPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *p)
}
