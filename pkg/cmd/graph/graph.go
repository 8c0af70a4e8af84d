package graph

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/layout"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
)

func NewCmdGraph(s *state.State) *cobra.Command {
	var (
		format     string
		output     string
		direction  string
		showHidden bool
		noLayout   bool
	)

	cmd := &cobra.Command{
		Use:     "graph",
		Aliases: []string{"g"},
		Short:   "Export the laid out relationship graph as JSON or Graphviz DOT",
		Long: heredoc.Doc(`
			Graph lays the library out in layers, with older work above newer
			work, and prints the result. Papers hidden from the view are left
			out unless --hidden is given.

			Examples:
			  citegraph graph --format dot | dot -Tsvg > papers.svg
			  citegraph graph --direction LR -o graph.json
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "dot" {
				return fmt.Errorf("unknown format %q (use json or dot)", format)
			}

			opts, err := s.BuildOptions()
			if err != nil {
				return err
			}
			if direction != "" {
				dir, err := layout.ParseDirection(direction)
				if err != nil {
					return err
				}
				opts.Direction = dir
				lo, _, err := s.Library.Layout.Options()
				if err != nil {
					return err
				}
				lo.Direction = dir
				opts.Layout = layout.NewLayered(lo)
			}
			if showHidden {
				opts.Hidden = nil
			}
			if noLayout {
				opts.Layout = nil
			}

			snap, err := s.Corpus.AcquireSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			g, err := graph.Build(snap.Papers, snap.Relationships, opts)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if format == "dot" {
				buf.WriteString(g.ToDOT())
			} else if err := cmdutil.PrintJSON(&buf, g); err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d nodes and %d edges to %s\n", len(g.Nodes), len(g.Edges), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "Layout direction TB or LR; defaults to the saved view")
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "Include hidden papers")
	cmd.Flags().BoolVar(&noLayout, "no-layout", false, "Skip the layout pass")

	return cmd
}
