package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fairwaykit/fairway/internal/classify"
	"github.com/fairwaykit/fairway/internal/kpi"
	"github.com/fairwaykit/fairway/internal/store"
)

// NewTemplateCommand groups template operations.
func NewTemplateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage grading templates",
	}
	cmd.AddCommand(newTemplateAddCommand(opts))
	cmd.AddCommand(newTemplateListCommand(opts))
	cmd.AddCommand(newTemplateShowCommand(opts))
	return cmd
}

func newTemplateAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <template-file>",
		Short: "Validate and store a template document",
		Long: "Validates a YAML or JSON template against the schema, then stores it\n" +
			"under its content hash. Re-adding identical content is a no-op.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := kpi.LoadFile(args[0])
			if err != nil {
				if kpi.IsValidationError(err) {
					return WrapExitError(ExitFailure, "invalid template", err)
				}
				return WrapExitError(ExitCommandError, "loading template", err)
			}

			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, inserted, err := s.InsertTemplate(cmd.Context(), tpl.ContentValue())
			if err != nil {
				return WrapExitError(ExitFailure, "storing template", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(map[string]any{
					"club":     rec.Club,
					"hash":     rec.Hash,
					"inserted": inserted,
				})
			}

			out := cmd.OutOrStdout()
			if inserted {
				fmt.Fprintf(out, "stored template for %s as %s\n", rec.Club, rec.Hash)
			} else {
				fmt.Fprintf(out, "template for %s already stored as %s\n", rec.Club, rec.Hash)
			}
			if unrec := classify.UnrecognizedMetrics(tpl); len(unrec) > 0 {
				gradeYellow.Fprintf(out, "note: metrics not evaluated by grading: %v\n", unrec)
			}
			return nil
		},
	}
}

func newTemplateListCommand(opts *RootOptions) *cobra.Command {
	var club string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			var records []store.TemplateRecord
			if club != "" {
				records, err = s.ListTemplatesByClub(cmd.Context(), club)
			} else {
				records, err = s.ListTemplates(cmd.Context())
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "listing templates", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(records)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Club", "Hash", "Schema", "Created")
			for _, rec := range records {
				table.Append([]string{rec.Club, rec.Hash, rec.SchemaVersion, rec.CreatedAt})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&club, "club", "", "filter by club (empty lists all)")
	return cmd
}

func newTemplateShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash>",
		Short: "Print a stored template's canonical content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, found, err := s.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "fetching template", err)
			}
			if !found {
				return NewExitError(ExitFailure, fmt.Sprintf("no template with hash %s", args[0]))
			}

			fmt.Fprintln(cmd.OutOrStdout(), rec.CanonicalJSON)
			return nil
		},
	}
}
