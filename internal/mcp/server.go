package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gh "github.com/google/go-github/v57/github"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/z58362026/mcp-packages/internal/analyzer"
	"github.com/z58362026/mcp-packages/internal/artifact"
	"github.com/z58362026/mcp-packages/internal/clock"
	"github.com/z58362026/mcp-packages/internal/config"
	"github.com/z58362026/mcp-packages/internal/feishu"
	"github.com/z58362026/mcp-packages/internal/github"
	"github.com/z58362026/mcp-packages/internal/knowledge"
	"github.com/z58362026/mcp-packages/internal/ui"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "mcp-packages"

// documentSource is the Feishu surface the tools use.
type documentSource interface {
	analyzer.DocumentFetcher
	Document(ctx context.Context, docToken string) (any, error)
	Wiki(ctx context.Context, wikiURL string) (any, error)
}

// repoSearcher is the GitHub surface the tools use.
type repoSearcher interface {
	Search(ctx context.Context, req github.SearchRequest) (any, error)
	User(ctx context.Context, username string) (*gh.User, error)
}

// Server is a MCP (Model Context Protocol) server.
// It communicates via JSON-RPC over stdio.
type Server struct {
	version  string
	docs     documentSource
	repos    repoSearcher
	clock    *clock.Clock
	analyzer *analyzer.Analyzer
	verbose  bool
}

// NewServer creates a server from cfg. Tool groups whose credentials are
// missing are left out with a warning on stderr.
func NewServer(cfg *config.Config, version string, verbose bool) *Server {
	client := cfg.HTTPClient()

	var docs documentSource
	if err := cfg.ValidateFeishu(); err != nil {
		ui.PrintWarn(fmt.Sprintf("Feishu tools disabled: %v", err))
	} else if fc, err := feishu.NewClient(cfg.FeishuAppID, cfg.FeishuAppSecret, cfg.FeishuBaseURL, client, verbose); err != nil {
		ui.PrintWarn(fmt.Sprintf("Feishu tools disabled: %v", err))
	} else {
		docs = fc
	}

	var repos repoSearcher
	if err := cfg.ValidateGitHub(); err != nil {
		ui.PrintWarn(fmt.Sprintf("GitHub tools disabled: %v", err))
	} else if gc, err := github.NewClient(cfg.GitHubToken, client, verbose); err != nil {
		ui.PrintWarn(fmt.Sprintf("GitHub tools disabled: %v", err))
	} else {
		repos = gc
	}

	return newServer(docs, repos, clock.New(cfg.Timezone), osfs.New("/"), client, version, verbose)
}

func newServer(docs documentSource, repos repoSearcher, clk *clock.Clock, fsys billy.Filesystem, client *http.Client, version string, verbose bool) *Server {
	s := &Server{
		version: version,
		docs:    docs,
		repos:   repos,
		clock:   clk,
		verbose: verbose,
	}
	if docs != nil {
		s.analyzer = analyzer.New(
			docs,
			knowledge.NewResolver(fsys, client, verbose),
			artifact.NewMaterializer(fsys, verbose),
			verbose,
		)
	}
	return s
}

// Start serves MCP over stdio until ctx is done or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	if s.verbose {
		fmt.Fprintf(os.Stderr, "Serving %d tools on stdio\n", len(s.ToolNames()))
	}
	err := s.sdkServer().Run(ctx, &sdkmcp.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ToolNames lists the tools this server registers, in registration order.
func (s *Server) ToolNames() []string {
	var names []string
	for _, t := range s.tools() {
		names = append(names, t.name)
	}
	return names
}

func (s *Server) sdkServer() *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    ServerName,
		Version: s.version,
	}, nil)
	for _, t := range s.tools() {
		t.register(server)
	}
	return server
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}
