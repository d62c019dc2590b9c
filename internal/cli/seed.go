package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairwaykit/fairway/internal/kpi"
)

// NewSeedCommand installs the built-in club templates.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the built-in club templates",
		Long: "Installs the default grading templates. Content addressing makes this\n" +
			"idempotent: templates already present are left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := kpi.EnsureSeeded(cmd.Context(), s)
			if err != nil {
				return WrapExitError(ExitCommandError, "seeding templates", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(results)
			}

			for _, r := range results {
				state := "already present"
				if r.Inserted {
					state = "installed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s  %s\n", r.Club, r.Hash, state)
			}
			return nil
		},
	}
}
