package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/knowledge"
)

var presetsJSON bool

var presetsCmd = &cobra.Command{
	Use:   "presets [framework]",
	Short: "List built-in framework presets",
	Long: `List the built-in framework presets. With a framework argument the full
preset is printed as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg, ok := knowledge.LookupPreset(args[0])
			if !ok {
				return fmt.Errorf("unknown preset %q (available: %s)", args[0], strings.Join(knowledge.Presets(), ", "))
			}
			return writeJSON(cmd.OutOrStdout(), cfg)
		}
		return listPresets(cmd.OutOrStdout(), presetsJSON)
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)

	presetsCmd.Flags().BoolVar(&presetsJSON, "json", false, "print names as a JSON array")
}

func listPresets(w io.Writer, asJSON bool) error {
	names := knowledge.Presets()
	if asJSON {
		return writeJSON(w, names)
	}
	for _, name := range names {
		cfg, _ := knowledge.LookupPreset(name)
		fmt.Fprintf(w, "%s (%d conventions, %d templates)\n", name, len(cfg.Standards.Conventions), len(cfg.Templates))
		for _, conv := range cfg.Standards.Conventions {
			fmt.Fprintf(w, "  - %s\n", conv)
		}
	}
	return nil
}
