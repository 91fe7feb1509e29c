package cmd

import (
	"github.com/huangsam/benchtable/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the Benchtable MCP server",
	Long:    `Launch an MCP server that allows AI agents to generate benchmark tables and count regressions via standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager, version)
	},
}
