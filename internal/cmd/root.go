package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/config"
)

var (
	// verbose is a global flag for verbose output
	verbose bool

	// configFile overrides the config file search
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "mcpkg",
	Short: "mcpkg - requirement document analysis tools for MCP clients",
	Long: `mcpkg serves Model Context Protocol tools over stdio and exposes the same
operations on the command line.

Features:
  - Fetch Feishu documents and wiki pages
  - Resolve a project knowledge base from presets, local files or remote services
  - Plan and write a project directory structure
  - Search GitHub and convert times between zones`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default .mcpkg/config.yaml in the project root or $HOME/.config/mcpkg/config.yaml)")
	// Subcommands register themselves in their own init()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if verbose && cfg.File != "" {
		fmt.Fprintf(os.Stderr, "Using config file %s\n", cfg.File)
	}
	return cfg, nil
}
