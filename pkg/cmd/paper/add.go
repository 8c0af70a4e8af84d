package paper

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

func newCmdAdd(s *state.State) *cobra.Command {
	var (
		p           paper.Paper
		familiarity string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"a", "new"},
		Short:   "Add a paper to the library",
		Long: heredoc.Doc(`
			Add stores a new paper. Without --id, an id is derived from the first
			author's surname, the year and the first significant title word.

			Examples:
			  citegraph paper add --title "Attention Is All You Need" \
			    --author "Ashish Vaswani" --author "Noam Shazeer" --year 2017 \
			    --category transformer --tags "transformers attention"
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := flags.HandleTags(cmd)
			if err != nil {
				return err
			}
			category, err := flags.HandleCategory(cmd)
			if err != nil {
				return err
			}
			if familiarity != "" {
				level, err := paper.ParseFamiliarity(familiarity)
				if err != nil {
					return err
				}
				p.Familiarity = level
			}

			p.ID = strings.TrimSpace(p.ID)
			p.Title = strings.TrimSpace(p.Title)
			p.Tags = tags
			p.Category = category
			p.Authors = trimAll(p.Authors)

			stored, err := s.Corpus.AddPaper(cmd.Context(), p)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s\n", stored.ID, stored.Citation())
			return nil
		},
	}

	cmd.Flags().StringVar(&p.ID, "id", "", "Paper id; derived from author, year and title when empty")
	cmd.Flags().StringVar(&p.Title, "title", "", "Paper title")
	cmd.Flags().StringArrayVarP(&p.Authors, "author", "a", nil, "Author, repeat for each author in order")
	cmd.Flags().IntVarP(&p.Year, "year", "y", 0, "Publication year")
	cmd.Flags().StringVar(&p.Abstract, "abstract", "", "Abstract text")
	cmd.Flags().StringVar(&p.Notes, "notes", "", "Reading notes")
	cmd.Flags().StringVarP(&familiarity, "familiarity", "f", "", "Familiarity level or its number (0-4)")
	cmd.Flags().IntVarP(&p.Importance, "importance", "i", 0, "Importance rating 1-5")
	cmd.Flags().BoolVar(&p.Favorite, "favorite", false, "Mark the paper as a favorite")
	flags.AddTags(cmd)
	flags.AddCategory(cmd, "Category: compression, autoencoder, quantization, transformer, cnn or other")
	cmd.MarkFlagRequired("title")

	return cmd
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
