package paper

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
)

func newCmdRate(s *state.State) *cobra.Command {
	var (
		familiarity string
		rating      int
		reviewed    bool
	)

	cmd := &cobra.Command{
		Use:   "rate [id]",
		Short: "Set the familiarity level or importance rating of a paper",
		Long: heredoc.Doc(`
			Rate records how well you know a paper and how much it matters to
			you. Familiarity is one of not_started, difficult, moderate, familiar
			or expert, or its number 0-4. Importance is 1-5, and 0 clears it.

			Examples:
			  citegraph paper rate vaswani2017attention --familiarity familiar
			  citegraph paper rate vaswani2017attention -i 5 --reviewed
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setFamiliarity := cmd.Flags().Changed("familiarity")
			setImportance := cmd.Flags().Changed("importance")
			if !setFamiliarity && !setImportance && !reviewed {
				return fmt.Errorf("nothing to change: pass --familiarity, --importance or --reviewed")
			}

			var level paper.Familiarity
			if setFamiliarity {
				var err error
				if level, err = paper.ParseFamiliarity(familiarity); err != nil {
					return err
				}
			}

			p, err := arg.HandlePaper(cmd.Context(), s, args, "Select paper to rate")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if setFamiliarity {
				if p, err = s.Corpus.SetFamiliarity(ctx, p.ID, level); err != nil {
					return err
				}
			}
			if setImportance {
				if p, err = s.Corpus.SetImportance(ctx, p.ID, rating); err != nil {
					return err
				}
			}
			if reviewed {
				if p, err = s.Corpus.MarkReviewed(ctx, p.ID, time.Now()); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: familiarity %s, importance %s\n",
				p.ID, p.Familiarity.Label(), importance(p.Importance))
			return nil
		},
	}

	cmd.Flags().StringVarP(&familiarity, "familiarity", "f", "", "Familiarity level or its number (0-4)")
	cmd.Flags().IntVarP(&rating, "importance", "i", 0, "Importance rating 1-5, 0 clears")
	cmd.Flags().BoolVar(&reviewed, "reviewed", false, "Also mark the paper as reviewed today")

	return cmd
}
