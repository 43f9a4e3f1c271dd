package cmd

import (
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/analyzer"
	"github.com/z58362026/mcp-packages/internal/artifact"
	"github.com/z58362026/mcp-packages/internal/feishu"
	"github.com/z58362026/mcp-packages/internal/knowledge"
)

var (
	analyzeDocToken     string
	analyzeDocURL       string
	analyzeWikiURL      string
	analyzeConversation string
	analyzeOutput       string
	analyzeSource       sourceFlags
	analyzeSpec         specFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a Feishu document and plan the project structure",
	Long: `Fetch a Feishu requirement document, resolve the knowledge base and plan the
project structure. With --out the planned directories are created on disk;
otherwise the structure is only printed.

The result is printed to stdout as JSON.`,
	Example: `  mcpkg analyze --doc-url https://acme.feishu.cn/docx/AbC --type frontend --framework React --kb-type remote --kb-url https://kb.example.com/react.json
  mcpkg analyze --wiki-url https://acme.feishu.cn/wiki/XyZ --type backend --framework Express --kb-path kb.yaml --out ./generated`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeDocToken, "doc-token", "", "Feishu document token")
	analyzeCmd.Flags().StringVar(&analyzeDocURL, "doc-url", "", "Feishu document URL")
	analyzeCmd.Flags().StringVar(&analyzeWikiURL, "wiki-url", "", "Feishu wiki URL")
	analyzeCmd.Flags().StringVar(&analyzeConversation, "conversation", "", "free text that may request pattern overrides")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "write the planned structure below this directory")
	analyzeSource.bind(analyzeCmd.Flags())
	analyzeSpec.bind(analyzeCmd.Flags())
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	spec, err := analyzeSpec.spec()
	if err != nil {
		return err
	}
	source, err := analyzeSource.descriptor()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateFeishu(); err != nil {
		return err
	}
	client := cfg.HTTPClient()
	docs, err := feishu.NewClient(cfg.FeishuAppID, cfg.FeishuAppSecret, cfg.FeishuBaseURL, client, verbose)
	if err != nil {
		return err
	}

	fsys := osfs.New("/")
	a := analyzer.New(
		docs,
		knowledge.NewResolver(fsys, client, verbose),
		artifact.NewMaterializer(fsys, verbose),
		verbose,
	)

	result, err := a.Analyze(cmd.Context(), analyzer.Request{
		DocToken:      analyzeDocToken,
		DocURL:        analyzeDocURL,
		WikiURL:       analyzeWikiURL,
		KnowledgeBase: source,
		ProjectSpec:   spec,
		Conversation:  analyzeConversation,
		OutputPath:    analyzeOutput,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
