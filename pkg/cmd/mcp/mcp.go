package mcp

import (
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/mcpserver"
	"github.com/Paintersrp/citegraph/internal/state"
)

func NewCmdMCP(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the library to MCP clients over stdio",
		Long: `MCP starts a Model Context Protocol server on stdin and stdout. It
offers tools to list and show papers, resolve connections, suggest bridges,
build the review queue, export the graph and add relationships.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.ServeStdio(s)
		},
	}
}
