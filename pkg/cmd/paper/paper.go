package paper

import (
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/state"
)

func NewCmdPaper(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "paper",
		Aliases: []string{"p", "papers"},
		Short:   "Add, inspect and rate papers",
	}

	cmd.AddCommand(
		newCmdAdd(s),
		newCmdShow(s),
		newCmdList(s),
		newCmdSearch(s),
		newCmdRate(s),
		newCmdFavorite(s),
		newCmdHide(s),
		newCmdUnhide(s),
		newCmdRemove(s),
	)

	return cmd
}
