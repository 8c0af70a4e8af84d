package paper

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/render"
	"github.com/Paintersrp/citegraph/internal/search"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

func newCmdSearch(s *state.State) *cobra.Command {
	var titlesOnly bool

	cmd := &cobra.Command{
		Use:     "search [term]",
		Aliases: []string{"find", "s"},
		Short:   "Search titles, authors, tags, abstracts and notes",
		Long: heredoc.Doc(`
			Search matches the term case-insensitively. Title matches come first,
			then ids, authors, tags, abstracts and notes. Without a term every
			paper passing the tag and category filters is listed.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := flags.HandleTags(cmd)
			if err != nil {
				return err
			}
			category, err := flags.HandleCategory(cmd)
			if err != nil {
				return err
			}

			snap, err := s.Corpus.AcquireSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			idx := search.NewIndex(search.Config{EnableBody: !titlesOnly})
			idx.Build(snap.Papers)
			q := search.Query{Tags: tags}
			if len(args) > 0 {
				q.Term = args[0]
			}
			if category != "" {
				q.Categories = []paper.Category{category}
			}
			results := idx.Search(q)

			out := cmd.OutOrStdout()
			if flags.HandleJSON(cmd) {
				return cmdutil.PrintJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No papers found.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s  %s (%d)\n", r.Paper.ID, render.Truncate(r.Paper.Title, titleWidth), r.Paper.Year)
				switch r.MatchFrom {
				case search.MatchAuthor, search.MatchTag:
					fmt.Fprintf(out, "    %s\n", r.Snippet)
				case search.MatchAbstract, search.MatchNotes:
					fmt.Fprintf(out, "    %s: %s\n", r.MatchFrom, r.Snippet)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&titlesOnly, "no-body", false, "Skip abstracts and notes")
	flags.AddTags(cmd)
	flags.AddCategory(cmd, "Only search papers in this category")
	flags.AddJSON(cmd)

	return cmd
}
