package review

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	reviewsvc "github.com/Paintersrp/citegraph/internal/review"
	"github.com/Paintersrp/citegraph/internal/state"
	tuireview "github.com/Paintersrp/citegraph/internal/tui/review"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

// now is replaced in tests.
var now = time.Now

// NewCmdReview wires the `review` command that lists the papers most worth
// revisiting and walks through them.
func NewCmdReview(s *state.State) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "review",
		Aliases: []string{"r"},
		Short:   "List the papers most worth revisiting",
		Long: heredoc.Doc(`
			Review orders papers from least to most familiar, then by importance
			and year. Use "review checklist" to rate them one by one from the
			terminal, or "review tui" for the interactive queue. Sessions are
			appended to a markdown log in the library's review directory.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queue, err := buildQueue(cmd, s, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.HandleJSON(cmd) {
				return cmdutil.PrintJSON(out, queue)
			}
			printQueue(out, queue)
			return nil
		},
	}

	addQueueFlags(cmd, &limit)
	flags.AddJSON(cmd)

	cmd.AddCommand(
		newCmdChecklist(s),
		newCmdTUI(s),
		newCmdLogs(s),
	)

	return cmd
}

func newCmdChecklist(s *state.State) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Rate the queued papers one by one and log the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queue, err := buildQueue(cmd, s, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(queue) == 0 {
				fmt.Fprintln(out, "No papers match the review filters.")
				return nil
			}

			updates, err := reviewsvc.RunChecklist(queue, cmd.InOrStdin(), out)
			if err != nil {
				return err
			}

			ts := now()
			reviewed := reviewsvc.ReviewedIDs(queue, updates, 0)
			if err := reviewsvc.ApplySession(cmd.Context(), s.Corpus, updates, reviewed, ts); err != nil {
				return err
			}

			dir, err := reviewsvc.EnsureLogDir(s.Dir, s.Library.Review.Directory)
			if err != nil {
				return err
			}
			path, err := reviewsvc.WriteMarkdownLog(dir, updates, queue, ts)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Review log saved to %s\n", relPath(s.Dir, path))
			return nil
		},
	}

	addQueueFlags(cmd, &limit)

	return cmd
}

func newCmdTUI(s *state.State) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive review queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := queueOptions(cmd, s, limit)
			if err != nil {
				return err
			}
			return tuireview.Run(s, opts)
		},
	}

	addQueueFlags(cmd, &limit)

	return cmd
}

func newCmdLogs(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "List saved review logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := reviewsvc.ListReviewLogs(s.Library.ReviewDir())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, "No review logs yet.")
				return nil
			}
			for _, log := range logs {
				fmt.Fprintf(out, "%s  %s  %d sessions\n",
					log.Timestamp.Format("2006-01-02 15:04"), relPath(s.Dir, log.Path), log.Sessions)
				for _, line := range log.Preview {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
			return nil
		},
	}
}

func addQueueFlags(cmd *cobra.Command, limit *int) {
	cmd.Flags().IntVarP(limit, "limit", "n", 0, "Maximum number of papers, 0 for all; defaults to the library's review limit")
	flags.AddTags(cmd)
	cmd.Flags().StringSliceP("category", "c", nil, "Only queue papers in these categories")
}

func queueOptions(cmd *cobra.Command, s *state.State, limit int) (reviewsvc.QueueOptions, error) {
	if !cmd.Flags().Changed("limit") && s.Library != nil {
		limit = s.Library.Review.Limit
	}
	tags, err := flags.HandleTags(cmd)
	if err != nil {
		return reviewsvc.QueueOptions{}, err
	}
	rawCategories, err := cmd.Flags().GetStringSlice("category")
	if err != nil {
		return reviewsvc.QueueOptions{}, err
	}
	categories := make([]paper.Category, 0, len(rawCategories))
	for _, raw := range rawCategories {
		c, err := paper.ParseCategory(raw)
		if err != nil {
			return reviewsvc.QueueOptions{}, err
		}
		categories = append(categories, c)
	}
	return reviewsvc.QueueOptions{Limit: limit, Tags: tags, Categories: categories}, nil
}

func buildQueue(cmd *cobra.Command, s *state.State, limit int) ([]reviewsvc.QueueItem, error) {
	opts, err := queueOptions(cmd, s, limit)
	if err != nil {
		return nil, err
	}
	snap, err := s.Corpus.AcquireSnapshot(cmd.Context())
	if err != nil {
		return nil, err
	}
	return reviewsvc.BuildQueue(snap.Papers, opts), nil
}

func printQueue(w io.Writer, queue []reviewsvc.QueueItem) {
	if len(queue) == 0 {
		fmt.Fprintln(w, "No papers match the review filters.")
		return
	}
	fmt.Fprintf(w, "Review queue (%d papers):\n", len(queue))
	for i, item := range queue {
		fmt.Fprintf(w, "%2d. %s (%d) [%s]\n", i+1, item.Paper.Title, item.Paper.Year, item.Paper.ID)
		fmt.Fprintf(w, "    %s\n", item.Reason)
	}
}

func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
