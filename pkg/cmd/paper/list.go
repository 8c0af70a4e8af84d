package paper

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/render"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

const titleWidth = 48

func newCmdList(s *state.State) *cobra.Command {
	var (
		favorites  bool
		showHidden bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List papers, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			papers := make([]paper.Paper, 0, len(snap.Papers))
			for _, p := range snap.Papers {
				if !showHidden && s.View.IsHidden(p.ID) {
					continue
				}
				if favorites && !p.Favorite {
					continue
				}
				if category != "" && p.Category != category {
					continue
				}
				if !hasAllTags(p, tags) {
					continue
				}
				papers = append(papers, p)
			}
			sort.SliceStable(papers, func(i, j int) bool {
				if papers[i].Year != papers[j].Year {
					return papers[i].Year > papers[j].Year
				}
				return papers[i].ID < papers[j].ID
			})

			out := cmd.OutOrStdout()
			if flags.HandleJSON(cmd) {
				return cmdutil.PrintJSON(out, papers)
			}
			if len(papers) == 0 {
				fmt.Fprintln(out, "No papers found.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "Year", "Title", "Category", "Familiarity", "Imp")
			for _, p := range papers {
				title := p.Title
				if p.Favorite {
					title = "★ " + title
				}
				t.Row(
					p.ID,
					strconv.Itoa(p.Year),
					render.Truncate(title, titleWidth),
					string(p.Category),
					p.Familiarity.Label(),
					importance(p.Importance),
				)
			}
			fmt.Fprintln(out, t.String())
			fmt.Fprintf(out, "%d papers\n", len(papers))
			return nil
		},
	}

	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only list favorites")
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "Include papers hidden from the graph")
	flags.AddTags(cmd)
	flags.AddCategory(cmd, "Only list papers in this category")
	flags.AddJSON(cmd)

	return cmd
}

func hasAllTags(p paper.Paper, tags []string) bool {
	for _, tag := range tags {
		if !p.HasTag(tag) {
			return false
		}
	}
	return true
}

func importance(rating int) string {
	if rating <= 0 {
		return "-"
	}
	return strconv.Itoa(rating)
}
