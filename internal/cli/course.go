package cli

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fairwaykit/fairway/internal/store"
)

// courseFile is the on-disk shape of a course definition (YAML or JSON).
type courseFile struct {
	Name  string `yaml:"name"`
	Tee   string `yaml:"tee"`
	Holes []struct {
		Number      int  `yaml:"number"`
		Par         int  `yaml:"par"`
		StrokeIndex *int `yaml:"stroke_index"`
	} `yaml:"holes"`
}

// NewCourseCommand groups course operations.
func NewCourseCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage course snapshots",
	}
	cmd.AddCommand(newCourseAddCommand(opts))
	cmd.AddCommand(newCourseShowCommand(opts))
	return cmd
}

func newCourseAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <course-file>",
		Short: "Validate and store a course snapshot",
		Long: "Stores a course definition under its content hash. The hole set must be\n" +
			"18 holes, or a contiguous front or back nine; anything else is rejected\n" +
			"before a row is written.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := readCourseFile(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, inserted, err := s.InsertCourse(cmd.Context(), course)
			if err != nil {
				return WrapExitError(ExitFailure, "storing course", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(map[string]any{
					"name":     rec.Name,
					"tee":      rec.Tee,
					"holes":    rec.HoleCount,
					"hash":     rec.Hash,
					"inserted": inserted,
				})
			}

			state := "already stored"
			if inserted {
				state = "stored"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s course %q (%s, %d holes) as %s\n",
				state, rec.Name, rec.Tee, rec.HoleCount, rec.Hash)
			return nil
		},
	}
}

func newCourseShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash>",
		Short: "Print a stored course snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, found, err := s.GetCourse(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "fetching course", err)
			}
			if !found {
				return NewExitError(ExitFailure, fmt.Sprintf("no course with hash %s", args[0]))
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if f.JSON() {
				return f.Success(rec)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s), %d holes\n", rec.Name, rec.Tee, rec.HoleCount)
			table := tablewriter.NewWriter(out)
			table.Header("Hole", "Par", "SI")
			for _, h := range rec.Holes {
				si := "-"
				if h.StrokeIndex != nil {
					si = fmt.Sprintf("%d", *h.StrokeIndex)
				}
				table.Append([]string{fmt.Sprintf("%d", h.Number), fmt.Sprintf("%d", h.Par), si})
			}
			table.Render()
			return nil
		},
	}
}

func readCourseFile(path string) (store.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Course{}, WrapExitError(ExitCommandError, fmt.Sprintf("reading course file %s", path), err)
	}

	var raw courseFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return store.Course{}, WrapExitError(ExitCommandError, fmt.Sprintf("parsing course file %s", path), err)
	}

	course := store.Course{Name: raw.Name, Tee: raw.Tee}
	for _, h := range raw.Holes {
		course.Holes = append(course.Holes, store.Hole{
			Number:      h.Number,
			Par:         h.Par,
			StrokeIndex: h.StrokeIndex,
		})
	}
	return course, nil
}
