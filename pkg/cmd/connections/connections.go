package connections

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

func NewCmdConnections(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections [id]",
		Aliases: []string{"conn", "c"},
		Short:   "List the papers a paper is linked to, strongest first",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := arg.HandlePaper(cmd.Context(), s, args, "Select paper")
			if err != nil {
				return err
			}
			connections, err := s.Corpus.Connections(cmd.Context(), p.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.HandleJSON(cmd) {
				return cmdutil.PrintJSON(out, connections)
			}

			fmt.Fprintf(out, "%s (%d)\n", p.Title, p.Year)
			if len(connections) == 0 {
				fmt.Fprintln(out, "No connections.")
				return nil
			}
			outgoing, incoming := graph.Split(connections)
			printSection(out, "Outgoing", outgoing)
			printSection(out, "Incoming", incoming)
			return nil
		},
	}

	flags.AddJSON(cmd)

	return cmd
}

func printSection(w io.Writer, title string, connections []graph.Connection) {
	if len(connections) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(connections))
	for _, c := range connections {
		fmt.Fprintf(w, "  %-14s %2d  %s (%d) [%s]\n",
			c.Relationship.Type.Label(),
			c.Relationship.Strength,
			c.Other.Title,
			c.Other.Year,
			c.Other.ID,
		)
		if c.Relationship.Description != "" {
			fmt.Fprintf(w, "  %14s     %s\n", "", c.Relationship.Description)
		}
	}
}
