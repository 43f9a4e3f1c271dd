package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/feishu"
	"github.com/z58362026/mcp-packages/internal/ui"
)

var (
	docURL   string
	docToken string
	docWiki  string
	docOpen  bool
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Print the content of a Feishu document or wiki page",
	Example: `  mcpkg doc --url https://acme.feishu.cn/docx/AbC
  mcpkg doc --wiki https://acme.feishu.cn/wiki/XyZ --open`,
	RunE: runDoc,
}

func init() {
	rootCmd.AddCommand(docCmd)

	docCmd.Flags().StringVar(&docURL, "url", "", "Feishu document URL")
	docCmd.Flags().StringVar(&docToken, "token", "", "Feishu document token")
	docCmd.Flags().StringVar(&docWiki, "wiki", "", "Feishu wiki URL")
	docCmd.Flags().BoolVar(&docOpen, "open", false, "also open the page in the browser")
	docCmd.MarkFlagsMutuallyExclusive("url", "wiki")
	docCmd.MarkFlagsMutuallyExclusive("token", "wiki")
}

func runDoc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateFeishu(); err != nil {
		return err
	}
	client, err := feishu.NewClient(cfg.FeishuAppID, cfg.FeishuAppSecret, cfg.FeishuBaseURL, cfg.HTTPClient(), verbose)
	if err != nil {
		return err
	}

	var (
		text    string
		pageURL string
	)
	if docWiki != "" {
		pageURL = docWiki
		text, err = client.FetchWiki(cmd.Context(), docWiki)
	} else {
		pageURL = docURL
		var token string
		token, err = feishu.ResolveDocToken(docToken, docURL)
		if err == nil {
			text, err = client.FetchDocument(cmd.Context(), token)
		}
	}
	if err != nil {
		return err
	}

	if docOpen {
		if pageURL == "" {
			ui.PrintWarn("--open needs --url or --wiki; a bare token has no page address")
		} else if err := openInBrowser(pageURL); err != nil {
			ui.PrintWarn(fmt.Sprintf("Failed to open browser: %v", err))
		}
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

// openInBrowser keeps the launcher's output off stdout.
func openInBrowser(url string) error {
	browser.Stdout = os.Stderr
	return browser.OpenURL(url)
}
