package tags

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	corpussvc "github.com/Paintersrp/citegraph/internal/services/corpus"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/internal/tagsync"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

func NewCmdTags(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags with the number of papers carrying them",
		Long: heredoc.Doc(`
			Tags lists every tag in the library. The subcommands edit the tags of
			papers; all edits of one command are written together.

			Examples:
			  citegraph tags add vaswani2017attention attention seq2seq
			  citegraph tags rename seq2seq sequence-modeling
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := s.Corpus.AcquireSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			counts := snap.Tags()
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				if counts[names[i]] != counts[names[j]] {
					return counts[names[i]] > counts[names[j]]
				}
				return names[i] < names[j]
			})

			out := cmd.OutOrStdout()
			if flags.HandleJSON(cmd) {
				return cmdutil.PrintJSON(out, counts)
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "No tags yet.")
				return nil
			}
			t := table.New().Border(lipgloss.NormalBorder()).Headers("Tag", "Papers")
			for _, name := range names {
				t.Row(name, strconv.Itoa(counts[name]))
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}

	flags.AddJSON(cmd)

	cmd.AddCommand(
		newCmdEdit(s, "add", "Add tags to a paper", func(current, args []string) []string {
			return append(current, args...)
		}),
		newCmdEdit(s, "remove", "Remove tags from a paper", func(current, args []string) []string {
			drop := paper.NormalizeTags(args)
			return slices.DeleteFunc(current, func(t string) bool {
				return slices.Contains(drop, t)
			})
		}),
		newCmdEdit(s, "set", "Replace the tags of a paper", func(_, args []string) []string {
			return args
		}),
		newCmdRename(s),
	)

	return cmd
}

func newCmdEdit(s *state.State, use, short string, apply func(current, args []string) []string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id> <tag>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var result []string
			err := reconcile(cmd, s, func(snap corpussvc.Snapshot, r *tagsync.Reconciler) error {
				if _, ok := snap.Paper(id); !ok {
					return fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
				}
				r.SetTags(id, apply(r.Tags(id), args[1:]))
				result = r.Tags(id)
				return nil
			})
			if err != nil {
				return err
			}
			if len(result) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no tags\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, strings.Join(result, ", "))
			}
			return nil
		},
	}
}

func newCmdRename(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a tag on every paper carrying it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := paper.NormalizeTag(args[0]), paper.NormalizeTag(args[1])
			if from == "" || to == "" {
				return fmt.Errorf("tag names cannot be empty")
			}

			renamed := 0
			err := reconcile(cmd, s, func(snap corpussvc.Snapshot, r *tagsync.Reconciler) error {
				for _, p := range snap.Papers {
					current := r.Tags(p.ID)
					i := slices.Index(current, from)
					if i < 0 {
						continue
					}
					current[i] = to
					r.SetTags(p.ID, current)
					renamed++
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q on %d papers\n", from, to, renamed)
			return nil
		},
	}
}

// reconcile runs edit against a reconciler seeded from the current corpus and
// writes the resulting changes in one flush.
func reconcile(cmd *cobra.Command, s *state.State, edit func(corpussvc.Snapshot, *tagsync.Reconciler) error) error {
	snap, err := s.Corpus.AcquireSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	r := tagsync.New(s.Corpus, tagsync.FromPapers(snap.Papers), tagsync.Options{})
	defer r.Close()

	if err := edit(snap, r); err != nil {
		return err
	}
	if len(r.Pending()) == 0 {
		return nil
	}
	return r.Flush(cmd.Context())
}
