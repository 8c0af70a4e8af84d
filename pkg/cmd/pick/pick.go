package pick

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
)

func NewCmdPick(s *state.State) *cobra.Command {
	var citation bool

	cmd := &cobra.Command{
		Use:   "pick [query]",
		Short: "Fuzzy find a paper and print its id",
		Long:  "Pick opens a fuzzy finder over titles, years, authors and tags and prints the id of the chosen paper, for use in other commands: citegraph bridges $(citegraph pick).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := arg.HandlePaper(cmd.Context(), s, args, "Select paper")
			if err != nil {
				return err
			}
			if citation {
				fmt.Fprintln(cmd.OutOrStdout(), p.Citation())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&citation, "citation", false, "Print a short citation instead of the id")

	return cmd
}
