package cmd

import (
	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server to integrate with LLM tools",
	Long: `Start Model Context Protocol (MCP) server over stdio.

Tools provided by MCP server:
- get_feishu_doc, get_feishu_wiki, analyze_doc (need FEISHU_APP_ID and FEISHU_APP_SECRET)
- github_search, get_github_user (need GITHUB_TOKEN or GH_TOKEN)
- list_presets, get_current_time, convert_time

Tool groups without credentials are skipped with a warning on stderr.`,
	Example: `  mcpkg mcp
  mcpkg mcp --config ./mcpkg.yaml -v`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return mcp.NewServer(cfg, version, verbose).Start(cmd.Context())
}
