package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/kpi"
	"github.com/fairwaykit/fairway/internal/projection"
)

// NewExportCommand serializes a club-session summary projection. The
// output is regenerable at any time and is never accepted back as input.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var sessionID int64
	var club, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a club-session summary as canonical JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			sess, found, err := s.GetSession(ctx, sessionID)
			if err != nil {
				return WrapExitError(ExitCommandError, "fetching session", err)
			}
			if !found {
				return NewExitError(ExitFailure, fmt.Sprintf("no session %d", sessionID))
			}

			hashes, err := s.TemplateHashesByClub(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "resolving templates", err)
			}
			hash, ok := hashes[club]
			if !ok {
				return NewExitError(ExitFailure, fmt.Sprintf("no template for club %q", club))
			}

			rec, found, err := s.GetTemplate(ctx, hash)
			if err != nil || !found {
				return WrapExitError(ExitCommandError, "fetching template", err)
			}
			tpl, err := kpi.ParseCanonical([]byte(rec.CanonicalJSON))
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing template", err)
			}

			shots, err := s.ListShotsByClub(ctx, sessionID, club)
			if err != nil {
				return WrapExitError(ExitCommandError, "listing shots", err)
			}
			summary, err := classify.Summarize(shots, tpl)
			if err != nil {
				return WrapExitError(ExitFailure, "classifying shots", err)
			}

			data, err := projection.Generate(sess, club, hash, summary).Serialize()
			if err != nil {
				return WrapExitError(ExitCommandError, "serializing projection", err)
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("writing %s", outPath), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote projection to %s\n", outPath)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().Int64Var(&sessionID, "session", 0, "session id")
	cmd.Flags().StringVar(&club, "club", "", "club to summarize")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("club")
	return cmd
}
