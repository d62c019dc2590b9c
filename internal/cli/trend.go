package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/trend"
)

// NewTrendCommand renders the per-session trend for one club.
func NewTrendCommand(opts *RootOptions) *cobra.Command {
	var window int
	var minValidity string

	cmd := &cobra.Command{
		Use:   "trend <club>",
		Short: "Show a club's recomputed summaries across sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trendOpts := trend.Options{Window: window}
			switch minValidity {
			case "", string(classify.ValidityInvalid):
			case string(classify.ValidityLowSample):
				trendOpts.MinValidity = classify.ValidityLowSample
			case string(classify.ValidityValid):
				trendOpts.MinValidity = classify.ValidityValid
			default:
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown validity %q", minValidity))
			}

			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := trend.ComputeClubTrend(cmd.Context(), s, args[0], trendOpts)
			if err != nil {
				return WrapExitError(ExitFailure, "computing trend", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(result)
			}

			out := cmd.OutOrStdout()
			table := tablewriter.NewWriter(out)
			table.Header("Session", "Date", "Shots", "A", "B", "C", "A%", "Validity")
			for _, p := range result.Points {
				table.Append([]string{
					fmt.Sprintf("%d", p.SessionID),
					p.Date,
					fmt.Sprintf("%d", p.Summary.TotalShots),
					gradeGreen.Sprintf("%d", p.Summary.ACount),
					gradeYellow.Sprintf("%d", p.Summary.BCount),
					gradeRed.Sprintf("%d", p.Summary.CCount),
					formatPct(p.Summary.APercentage),
					string(p.Summary.ValidityStatus),
				})
			}
			table.Render()

			if result.WeightedAPercentage != nil {
				fmt.Fprintf(out, "shot-weighted A%%: %.1f over %d shots\n",
					*result.WeightedAPercentage, result.TotalShots)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", 0, "keep only the most recent N sessions (0 = all)")
	cmd.Flags().StringVar(&minValidity, "min-validity", "", "drop sessions below this validity status")
	return cmd
}
