package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/config"
	"github.com/z58362026/mcp-packages/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the settings mcpkg runs with after merging the config file and the
environment. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		showConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(w io.Writer, cfg *config.Config) {
	file := cfg.File
	if file == "" {
		file = "(none)"
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintf(w, "  Config file:       %s\n", file)
	fmt.Fprintf(w, "  Feishu base URL:   %s\n", cfg.FeishuBaseURL)
	fmt.Fprintf(w, "  Feishu app ID:     %s\n", maskString(cfg.FeishuAppID))
	fmt.Fprintf(w, "  Feishu app secret: %s\n", maskString(cfg.FeishuAppSecret))
	fmt.Fprintf(w, "  GitHub token:      %s\n", maskString(cfg.GitHubToken))
	fmt.Fprintf(w, "  Timezone:          %s\n", cfg.Timezone)
	fmt.Fprintf(w, "  HTTP timeout:      %s\n", cfg.HTTPTimeout)
	fmt.Fprintln(w)

	if err := cfg.ValidateFeishu(); err != nil {
		fmt.Fprintln(w, ui.Warn("Feishu tools disabled: "+err.Error()))
	} else {
		fmt.Fprintln(w, ui.OK("Feishu tools enabled"))
	}
	if err := cfg.ValidateGitHub(); err != nil {
		fmt.Fprintln(w, ui.Warn("GitHub tools disabled: "+err.Error()))
	} else {
		fmt.Fprintln(w, ui.OK("GitHub tools enabled"))
	}
}

func maskString(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
