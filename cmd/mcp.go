package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/adosprint/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for LLM tool integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client query your sprints and work items directly.
The server uses the PAT from AZURE_PAT or the pat config key. Configure a
client with:

  {
    "mcpServers": {
      "adosprint": { "command": "adosprint", "args": ["mcp"] }
    }
  }

Available tools: ado_list_sprints, ado_sprint_work_items, ado_sprint_summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		srv := mcp.NewServer(newSprintService(logger), viper.GetString("pat"), buildVersion)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
