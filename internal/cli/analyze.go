package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/kpi"
)

// NewAnalyzeCommand recomputes per-club summaries for a session. Nothing
// is written: summaries are derived values, recomputed on every call.
func NewAnalyzeCommand(opts *RootOptions) *cobra.Command {
	var sessionID int64
	var club string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Recompute shot summaries for a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if _, found, err := s.GetSession(ctx, sessionID); err != nil {
				return WrapExitError(ExitCommandError, "fetching session", err)
			} else if !found {
				return NewExitError(ExitFailure, fmt.Sprintf("no session %d", sessionID))
			}

			clubs := []string{club}
			if club == "" {
				if clubs, err = s.SessionClubs(ctx, sessionID); err != nil {
					return WrapExitError(ExitCommandError, "listing session clubs", err)
				}
			}

			hashes, err := s.TemplateHashesByClub(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "resolving templates", err)
			}

			summaries := map[string]classify.Summary{}
			for _, c := range clubs {
				hash, ok := hashes[c]
				if !ok {
					gradeYellow.Fprintf(cmd.OutOrStdout(), "no template for %s, skipping\n", c)
					continue
				}
				rec, found, err := s.GetTemplate(ctx, hash)
				if err != nil || !found {
					return WrapExitError(ExitCommandError, fmt.Sprintf("fetching template for %s", c), err)
				}
				tpl, err := kpi.ParseCanonical([]byte(rec.CanonicalJSON))
				if err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("parsing template for %s", c), err)
				}
				shots, err := s.ListShotsByClub(ctx, sessionID, c)
				if err != nil {
					return WrapExitError(ExitCommandError, "listing shots", err)
				}
				summary, err := classify.Summarize(shots, tpl)
				if err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("classifying %s shots", c), err)
				}
				summaries[c] = summary
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(summaries)
			}
			renderSummaries(cmd.OutOrStdout(), summaries)
			return nil
		},
	}

	cmd.Flags().Int64Var(&sessionID, "session", 0, "session id")
	cmd.Flags().StringVar(&club, "club", "", "restrict to one club")
	cmd.MarkFlagRequired("session")
	return cmd
}
