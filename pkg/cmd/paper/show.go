package paper

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/render"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/arg"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/flags"
)

var writeClipboard = clipboard.WriteAll

func newCmdShow(s *state.State) *cobra.Command {
	var (
		raw      bool
		copyText bool
	)

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a paper with its connections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := arg.HandlePaper(cmd.Context(), s, args, "Select paper to show")
			if err != nil {
				return err
			}
			connections, err := s.Corpus.Connections(cmd.Context(), p.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.HandleJSON(cmd) {
				return cmdutil.PrintJSON(out, map[string]any{
					"paper":       p,
					"connections": connections,
					"hidden":      s.View.IsHidden(p.ID),
				})
			}

			markdown := render.PaperMarkdown(p) + "\n" + render.ConnectionsMarkdown(connections)
			if copyText {
				if err := writeClipboard(markdown); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
			}

			width := cmdutil.TerminalWidth(out)
			if raw || width == 0 {
				fmt.Fprint(out, markdown)
				return nil
			}
			rendered, err := render.Terminal(markdown, width)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the markdown to the clipboard")
	flags.AddJSON(cmd)

	return cmd
}
