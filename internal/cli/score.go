package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fairwaykit/fairway/internal/canon"
	"github.com/fairwaykit/fairway/internal/store"
)

// NewScoreCommand groups the append-log score operations.
func NewScoreCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Record and read hole scores",
		Long: "Scores are an append-only log. Recording a correction appends a new\n" +
			"entry; the current value is resolved latest-wins and the full history\n" +
			"stays auditable.",
	}
	cmd.AddCommand(newScoreRecordCommand(opts))
	cmd.AddCommand(newScoreCurrentCommand(opts))
	cmd.AddCommand(newScoreHistoryCommand(opts))
	return cmd
}

func factKeyFlags(cmd *cobra.Command, sessionID *int64, hole, actor *int) {
	cmd.Flags().Int64Var(sessionID, "session", 0, "session id")
	cmd.Flags().IntVar(hole, "hole", 0, "hole number (1-18)")
	cmd.Flags().IntVar(actor, "actor", 0, "actor index (0 for single player)")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("hole")
}

func newScoreRecordCommand(opts *RootOptions) *cobra.Command {
	var sessionID int64
	var hole, actor int

	cmd := &cobra.Command{
		Use:   "record <value>",
		Short: "Append a score entry for a hole",
		Long: "The value is a JSON literal: a plain number for strokes, or an object\n" +
			"for richer per-hole facts such as {\"strokes\":5,\"putts\":2}.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := canon.FromJSON([]byte(args[0]))
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing value", err)
			}

			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			fact, err := s.RecordFact(cmd.Context(), store.FactKey{
				SessionID: sessionID,
				Hole:      hole,
				Actor:     actor,
			}, value)
			if err != nil {
				return WrapExitError(ExitFailure, "recording score", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(map[string]any{
					"fact_id":     fact.ID,
					"recorded_at": fact.RecordedAt,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded entry %d for session %d hole %d at %s\n",
				fact.ID, sessionID, hole, fact.RecordedAt)
			return nil
		},
	}
	factKeyFlags(cmd, &sessionID, &hole, &actor)
	return cmd
}

func newScoreCurrentCommand(opts *RootOptions) *cobra.Command {
	var sessionID int64
	var hole, actor int

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Resolve the current score for a hole",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			value, found, err := s.CurrentValue(cmd.Context(), store.FactKey{
				SessionID: sessionID,
				Hole:      hole,
				Actor:     actor,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "resolving current value", err)
			}
			if !found {
				return NewExitError(ExitFailure,
					fmt.Sprintf("no score recorded for session %d hole %d", sessionID, hole))
			}

			data, err := canon.MarshalCanonical(value)
			if err != nil {
				return WrapExitError(ExitCommandError, "serializing value", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(map[string]any{"value": string(data)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	factKeyFlags(cmd, &sessionID, &hole, &actor)
	return cmd
}

func newScoreHistoryCommand(opts *RootOptions) *cobra.Command {
	var sessionID int64
	var hole, actor int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the full score history for a hole, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			facts, err := s.History(cmd.Context(), store.FactKey{
				SessionID: sessionID,
				Hole:      hole,
				Actor:     actor,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "reading history", err)
			}

			type entry struct {
				FactID     int64  `json:"fact_id"`
				Value      string `json:"value"`
				RecordedAt string `json:"recorded_at"`
			}
			entries := make([]entry, 0, len(facts))
			for _, fact := range facts {
				data, err := canon.MarshalCanonical(fact.Value)
				if err != nil {
					return WrapExitError(ExitCommandError, "serializing value", err)
				}
				entries = append(entries, entry{FactID: fact.ID, Value: string(data), RecordedAt: fact.RecordedAt})
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(entries)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Entry", "Value", "Recorded")
			for _, e := range entries {
				table.Append([]string{fmt.Sprintf("%d", e.FactID), e.Value, e.RecordedAt})
			}
			table.Render()
			return nil
		},
	}
	factKeyFlags(cmd, &sessionID, &hole, &actor)
	return cmd
}
