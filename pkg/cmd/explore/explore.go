package explore

import (
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/state"
	tuiexplore "github.com/Paintersrp/citegraph/internal/tui/explore"
)

func NewCmdExplore(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "explore",
		Aliases: []string{"x", "ui"},
		Short:   "Browse papers with their connections, bridges and notes",
		Long: `Explore lists the library next to toggleable panels for details (1),
connections (2), bridge suggestions (3) and notes (4). Hide papers with x,
star them with f and edit tags with t. The view is saved on exit, and
changes to the library on disk are picked up while it runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tuiexplore.Run(s)
		},
	}
}
