package link

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
)

// selectType is replaced in tests.
var selectType = func() (string, error) {
	choices := make([]string, 0, len(paper.AllRelationshipTypes))
	for _, t := range paper.AllRelationshipTypes {
		choices = append(choices, string(t))
	}
	sel := selection.New("How does the first paper relate to the second?", choices)
	sel.PageSize = len(choices)
	return sel.RunPrompt()
}

func NewCmdLink(s *state.State) *cobra.Command {
	var (
		rawType     string
		strength    int
		description string
	)

	cmd := &cobra.Command{
		Use:   "link [from] [to]",
		Short: "Record how one paper relates to another",
		Long: heredoc.Doc(`
			Link stores a typed, weighted relationship from one paper to another.
			Types: extends, builds_on, compares_with, inspired_by, inspires,
			challenges, applies and related. "A inspires B" is stored as
			"B inspired_by A". Linking the same pair with the same type twice
			keeps the first relationship.

			Examples:
			  citegraph link vaswani2017attention bahdanau2014neural --type builds_on --strength 8
			  citegraph link          # pick both papers and the type interactively
		`),
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := arg.HandlePaper(cmd.Context(), s, args, "Select the paper the link starts from")
			if err != nil {
				return err
			}
			var rest []string
			if len(args) > 1 {
				rest = args[1:]
			}
			to, err := arg.HandlePaper(cmd.Context(), s, rest, "Select the paper it relates to")
			if err != nil {
				return err
			}

			if rawType == "" {
				if !cmdutil.IsInteractive(cmd.InOrStdin()) {
					return fmt.Errorf("--type is required")
				}
				if rawType, err = selectType(); err != nil {
					return err
				}
			}
			relType, err := paper.ParseRelationshipType(rawType)
			if err != nil {
				return err
			}

			stored, created, err := s.Corpus.AddRelationship(cmd.Context(), paper.Relationship{
				From:        from.ID,
				To:          to.ID,
				Type:        relType,
				Strength:    strength,
				Description: description,
			})
			if err != nil {
				return err
			}

			titles := map[string]string{from.ID: from.Title, to.ID: to.Title}
			sentence := stored.Sentence(titles[stored.From], titles[stored.To])
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Linked: %s (strength %d) [%s]\n", sentence, stored.Strength, stored.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Already linked: %s [%s]\n", sentence, stored.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rawType, "type", "t", "", "Relationship type")
	cmd.Flags().IntVarP(&strength, "strength", "s", 5, "Strength from 1 to 10")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Free text description of the relationship")

	return cmd
}
