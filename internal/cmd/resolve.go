package cmd

import (
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/knowledge"
)

var (
	resolveConversation string
	resolveSource       sourceFlags
	resolveSpec         specFlags
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve and print a knowledge base",
	Long: `Resolve the knowledge base a project would be analyzed against and print it
as JSON. Documents read from a file or a remote service are printed as
received. Local files are read as-is; remote sources use the analysis endpoint,
the built-in preset with conversation overrides (frontend projects) or the
remote URL, in that order.`,
	Example: `  mcpkg resolve --kb-path kb.json --type frontend --framework React
  mcpkg resolve --kb-type remote --kb-url https://kb.example.com/react.json --type frontend --framework React --conversation "使用 Redux"`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveConversation, "conversation", "", "free text that may request pattern overrides")
	resolveSource.bind(resolveCmd.Flags())
	resolveSpec.bind(resolveCmd.Flags())
}

func runResolve(cmd *cobra.Command, args []string) error {
	spec, err := resolveSpec.spec()
	if err != nil {
		return err
	}
	source, err := resolveSource.descriptor()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resolver := knowledge.NewResolver(osfs.New("/"), cfg.HTTPClient(), verbose)
	resolved, err := resolver.Resolve(cmd.Context(), source, spec, resolveConversation)
	if err != nil {
		return err
	}
	if len(resolved.Raw) > 0 {
		return writeJSON(cmd.OutOrStdout(), resolved.Raw)
	}
	return writeJSON(cmd.OutOrStdout(), resolved)
}
