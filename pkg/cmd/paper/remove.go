package paper

import (
	"fmt"

	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
)

var confirm = func(prompt string) (bool, error) {
	return confirmation.New(prompt, confirmation.No).RunPrompt()
}

func newCmdRemove(s *state.State) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a paper and every relationship touching it",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := arg.HandlePaper(cmd.Context(), s, args, "Select paper to remove")
			if err != nil {
				return err
			}
			connections, err := s.Corpus.Connections(cmd.Context(), p.ID)
			if err != nil {
				return err
			}

			if !yes {
				if !cmdutil.IsInteractive(cmd.InOrStdin()) {
					return fmt.Errorf("refusing to remove %s without --yes", p.ID)
				}
				ok, err := confirm(fmt.Sprintf("Remove %q and %d relationships?", p.Title, len(connections)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
					return nil
				}
			}

			if err := s.Corpus.RemovePaper(cmd.Context(), p.ID); err != nil {
				return err
			}
			if s.View.Unhide(p.ID) {
				if err := s.SaveView(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s and %d relationships\n", p.ID, len(connections))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
