package paper

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
)

func newCmdFavorite(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "favorite [id]",
		Aliases: []string{"fav", "star"},
		Short:   "Toggle the favorite mark of a paper",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := arg.HandlePaper(cmd.Context(), s, args, "Select paper to favorite")
			if err != nil {
				return err
			}
			p, err = s.Corpus.ToggleFavorite(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			if p.Favorite {
				fmt.Fprintf(cmd.OutOrStdout(), "★ %s is now a favorite\n", p.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer a favorite\n", p.ID)
			}
			return nil
		},
	}
}

func newCmdHide(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "hide <id>...",
		Short: "Hide papers from the graph without deleting them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			papers, err := arg.HandleIDs(cmd.Context(), s, args)
			if err != nil {
				return err
			}
			changed := 0
			for _, p := range papers {
				if s.View.Hide(p.ID) {
					changed++
				}
			}
			if err := s.SaveView(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hid %d papers (%d hidden in total)\n", changed, len(s.View.Hidden))
			return nil
		},
	}
}

func newCmdUnhide(s *state.State) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "unhide [id]...",
		Short: "Show hidden papers in the graph again",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				args = append([]string(nil), s.View.Hidden...)
			}
			if len(args) == 0 {
				return fmt.Errorf("pass paper ids or --all")
			}
			changed := 0
			for _, id := range args {
				if s.View.Unhide(id) {
					changed++
				}
			}
			if err := s.SaveView(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unhid %d papers (%d hidden in total)\n", changed, len(s.View.Hidden))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Unhide every hidden paper")

	return cmd
}
