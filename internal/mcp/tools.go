package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/z58362026/mcp-packages/internal/analyzer"
	"github.com/z58362026/mcp-packages/internal/feishu"
	"github.com/z58362026/mcp-packages/internal/github"
	"github.com/z58362026/mcp-packages/internal/knowledge"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

// GetFeishuDocInput represents the input schema for the get_feishu_doc tool.
type GetFeishuDocInput struct {
	DocToken string `json:"docToken,omitempty" jsonschema:"Feishu document token"`
	DocURL   string `json:"docUrl,omitempty" jsonschema:"Full Feishu document URL (wins over docToken)"`
}

// GetFeishuWikiInput represents the input schema for the get_feishu_wiki tool.
type GetFeishuWikiInput struct {
	WikiURL string `json:"wikiUrl" jsonschema:"Full Feishu wiki URL"`
}

// AnalyzeDocInput represents the input schema for the analyze_doc tool.
type AnalyzeDocInput struct {
	DocToken      string                  `json:"docToken,omitempty" jsonschema:"Feishu document token"`
	DocURL        string                  `json:"docUrl,omitempty" jsonschema:"Full Feishu document URL"`
	WikiURL       string                  `json:"wikiUrl,omitempty" jsonschema:"Full Feishu wiki URL, used when no document is given"`
	KnowledgeBase schema.SourceDescriptor `json:"knowledgeBase" jsonschema:"Knowledge base location"`
	ProjectSpec   schema.ProjectSpec      `json:"projectSpec" jsonschema:"Target project description"`
	Conversation  string                  `json:"conversation,omitempty" jsonschema:"Free text that may request pattern overrides such as 使用 Redux"`
	OutputPath    string                  `json:"outputPath,omitempty" jsonschema:"Directory to write the planned structure into; omit to only return it"`
}

// ListPresetsInput represents the input schema for the list_presets tool.
type ListPresetsInput struct{}

// GitHubSearchInput represents the input schema for the github_search tool.
type GitHubSearchInput struct {
	Query   string `json:"query" jsonschema:"Search keywords"`
	Page    int    `json:"page,omitempty" jsonschema:"Page number, defaults to 1"`
	PerPage int    `json:"perPage,omitempty" jsonschema:"Results per page, defaults to 30"`
	Type    string `json:"type,omitempty" jsonschema:"One of repositories, code, issues or users (default repositories)"`
}

// GetGitHubUserInput represents the input schema for the get_github_user tool.
type GetGitHubUserInput struct {
	Username string `json:"username" jsonschema:"GitHub login"`
}

// GetCurrentTimeInput represents the input schema for the get_current_time tool.
type GetCurrentTimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"IANA timezone, defaults to LOCAL_TIMEZONE or Asia/Shanghai"`
}

// ConvertTimeInput represents the input schema for the convert_time tool.
type ConvertTimeInput struct {
	SourceTimezone string `json:"source_timezone" jsonschema:"IANA timezone of the given time"`
	Time           string `json:"time" jsonschema:"Wall clock time as HH:MM"`
	TargetTimezone string `json:"target_timezone" jsonschema:"IANA timezone to convert to"`
}

// PresetSummary describes one built-in preset.
type PresetSummary struct {
	Name        string            `json:"name"`
	Naming      map[string]string `json:"naming,omitempty"`
	Structure   map[string]string `json:"structure,omitempty"`
	Conventions []string          `json:"conventions"`
	Templates   []string          `json:"templates,omitempty"`
}

type tool struct {
	name     string
	register func(*sdkmcp.Server)
}

// textTool adapts a handler returning text to the SDK's typed handler.
func textTool[In any](name, description string, handle func(context.Context, In) (string, error)) tool {
	return tool{
		name: name,
		register: func(server *sdkmcp.Server) {
			sdkmcp.AddTool(server, &sdkmcp.Tool{
				Name:        name,
				Description: description,
			}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, input In) (*sdkmcp.CallToolResult, any, error) {
				text, err := handle(ctx, input)
				if err != nil {
					return nil, nil, err
				}
				return textResult(text), nil, nil
			})
		},
	}
}

func (s *Server) tools() []tool {
	var tools []tool
	if s.docs != nil {
		tools = append(tools,
			textTool("get_feishu_doc", "Fetch the content of a Feishu docx document by token or URL.", s.handleGetFeishuDoc),
			textTool("get_feishu_wiki", "Fetch the docx content behind a Feishu wiki page.", s.handleGetFeishuWiki),
			textTool("analyze_doc", "Analyze a Feishu requirement document against a knowledge base and plan (optionally write) the project structure.", s.handleAnalyzeDoc),
		)
	}
	tools = append(tools,
		textTool("list_presets", "List the built-in framework presets and their conventions.", s.handleListPresets),
	)
	if s.repos != nil {
		tools = append(tools,
			textTool("github_search", "Search GitHub repositories, code, issues or users.", s.handleGitHubSearch),
			textTool("get_github_user", "Look up a GitHub user by login.", s.handleGetGitHubUser),
		)
	}
	tools = append(tools,
		textTool("get_current_time", "Get the current time in a timezone.", s.handleGetCurrentTime),
		textTool("convert_time", "Convert an HH:MM time between timezones.", s.handleConvertTime),
	)
	return tools
}

func (s *Server) handleGetFeishuDoc(ctx context.Context, input GetFeishuDocInput) (string, error) {
	token, err := feishu.ResolveDocToken(input.DocToken, input.DocURL)
	if err != nil {
		return "", err
	}
	doc, err := s.docs.Document(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	return indent(doc)
}

func (s *Server) handleGetFeishuWiki(ctx context.Context, input GetFeishuWikiInput) (string, error) {
	if input.WikiURL == "" {
		return "", schema.Validationf("wikiUrl is required")
	}
	doc, err := s.docs.Wiki(ctx, input.WikiURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch wiki: %w", err)
	}
	return indent(doc)
}

func (s *Server) handleAnalyzeDoc(ctx context.Context, input AnalyzeDocInput) (string, error) {
	result, err := s.analyzer.Analyze(ctx, analyzer.Request{
		DocToken:      input.DocToken,
		DocURL:        input.DocURL,
		WikiURL:       input.WikiURL,
		KnowledgeBase: input.KnowledgeBase,
		ProjectSpec:   input.ProjectSpec,
		Conversation:  input.Conversation,
		OutputPath:    input.OutputPath,
	})
	if err != nil {
		return "", err
	}
	return result.JSON()
}

func (s *Server) handleListPresets(_ context.Context, _ ListPresetsInput) (string, error) {
	var summaries []PresetSummary
	for _, name := range knowledge.Presets() {
		cfg, _ := knowledge.LookupPreset(name)
		summaries = append(summaries, PresetSummary{
			Name:        name,
			Naming:      cfg.Standards.Naming,
			Structure:   cfg.Standards.Structure,
			Conventions: cfg.Standards.Conventions,
			Templates:   cfg.TemplateNames(),
		})
	}
	return indent(summaries)
}

func (s *Server) handleGitHubSearch(ctx context.Context, input GitHubSearchInput) (string, error) {
	result, err := s.repos.Search(ctx, github.SearchRequest{
		Query:   input.Query,
		Page:    input.Page,
		PerPage: input.PerPage,
		Type:    github.SearchType(input.Type),
	})
	if err != nil {
		return "", err
	}
	return indent(result)
}

func (s *Server) handleGetGitHubUser(ctx context.Context, input GetGitHubUserInput) (string, error) {
	user, err := s.repos.User(ctx, input.Username)
	if err != nil {
		return "", err
	}
	return indent(user)
}

func (s *Server) handleGetCurrentTime(_ context.Context, input GetCurrentTimeInput) (string, error) {
	now, err := s.clock.Current(input.Timezone)
	if err != nil {
		return "", err
	}
	return indent(now)
}

func (s *Server) handleConvertTime(_ context.Context, input ConvertTimeInput) (string, error) {
	converted, err := s.clock.Convert(input.SourceTimezone, input.Time, input.TargetTimezone)
	if err != nil {
		return "", err
	}
	return indent(converted)
}

func indent(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}
