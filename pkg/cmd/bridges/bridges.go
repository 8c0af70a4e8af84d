package bridges

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/render"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

const defaultWidth = 100

func NewCmdBridges(s *state.State) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "bridges [id]",
		Aliases: []string{"b", "suggest"},
		Short:   "Suggest papers worth linking to a paper",
		Long: heredoc.Doc(`
			Bridges ranks the papers not yet linked to the given one. Shared
			neighbors and the strength of the paths through them count most,
			followed by a shared category, shared tags, publication years close
			together, low familiarity and importance. The weights come from the
			library configuration.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := arg.HandlePaper(cmd.Context(), s, args, "Select paper to bridge from")
			if err != nil {
				return err
			}
			bridges, err := s.Corpus.Bridges(cmd.Context(), p.ID, limit, s.Weights())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.HandleJSON(cmd) {
				return cmdutil.PrintJSON(out, bridges)
			}

			if len(bridges) == 0 {
				fmt.Fprintf(out, "No bridge candidates for %s.\n", p.ID)
				return nil
			}

			width := cmdutil.TerminalWidth(out)
			if width == 0 {
				width = defaultWidth
			}
			fmt.Fprintf(out, "Bridges for %s (%d):\n", p.Title, p.Year)
			for i, b := range bridges {
				line := fmt.Sprintf("%2d. %6.2f  %s (%d) [%s]", i+1, b.Score, b.Paper.Title, b.Paper.Year, b.Paper.ID)
				fmt.Fprintln(out, render.Truncate(line, width))
				fmt.Fprintln(out, render.Truncate("           "+strings.Join(b.Reasons, "; "), width))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of suggestions, 0 for all")
	flags.AddJSON(cmd)

	return cmd
}
