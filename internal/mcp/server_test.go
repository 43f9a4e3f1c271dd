package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gh "github.com/google/go-github/v57/github"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z58362026/mcp-packages/internal/clock"
	"github.com/z58362026/mcp-packages/internal/config"
	"github.com/z58362026/mcp-packages/internal/feishu"
	"github.com/z58362026/mcp-packages/internal/github"
	"github.com/z58362026/mcp-packages/internal/ui"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

type fakeDocs struct {
	docs map[string]string
}

func (f *fakeDocs) Document(_ context.Context, token string) (any, error) {
	content, ok := f.docs[token]
	if !ok {
		return nil, &schema.RemoteError{URL: "docx/" + token, Status: 404, Err: errors.New("not found")}
	}
	return map[string]any{"content": content}, nil
}

func (f *fakeDocs) Wiki(ctx context.Context, wikiURL string) (any, error) {
	token, err := feishu.ExtractWikiToken(wikiURL)
	if err != nil {
		return nil, err
	}
	return f.Document(ctx, token)
}

func (f *fakeDocs) FetchDocument(_ context.Context, token string) (string, error) {
	content, ok := f.docs[token]
	if !ok {
		return "", errors.New("not found")
	}
	return content, nil
}

func (f *fakeDocs) FetchWiki(ctx context.Context, wikiURL string) (string, error) {
	token, err := feishu.ExtractWikiToken(wikiURL)
	if err != nil {
		return "", err
	}
	return f.FetchDocument(ctx, token)
}

type fakeRepos struct {
	last github.SearchRequest
}

func (f *fakeRepos) Search(_ context.Context, req github.SearchRequest) (any, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	f.last = req
	return map[string]any{"total_count": 1, "items": []any{map[string]any{"full_name": "acme/" + req.Query}}}, nil
}

func (f *fakeRepos) User(_ context.Context, username string) (*gh.User, error) {
	return &gh.User{Login: gh.String(username), ID: gh.Int64(42)}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeRepos) {
	t.Helper()
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "/kb/team.json", []byte(`{"standards":{"conventions":["团队规范"]}}`), 0o644))

	repos := &fakeRepos{}
	docs := &fakeDocs{docs: map[string]string{"doxReq": "需求", "doxWiki": "wiki 需求"}}
	return newServer(docs, repos, clock.New("UTC"), fsys, nil, "test", false), repos
}

func TestNewServer_SkipsGroupsWithoutCredentials(t *testing.T) {
	prev := ui.Output
	ui.Output = io.Discard
	t.Cleanup(func() { ui.Output = prev })

	s := NewServer(&config.Config{Timezone: "UTC", HTTPTimeout: time.Second}, "test", false)

	assert.Equal(t, []string{"list_presets", "get_current_time", "convert_time"}, s.ToolNames())
}

func TestNewServer_AllGroups(t *testing.T) {
	s := NewServer(&config.Config{
		FeishuAppID:     "cli_a",
		FeishuAppSecret: "secret",
		GitHubToken:     "ghp_x",
		Timezone:        "UTC",
		HTTPTimeout:     time.Second,
	}, "test", false)

	assert.Equal(t, []string{
		"get_feishu_doc", "get_feishu_wiki", "analyze_doc",
		"list_presets",
		"github_search", "get_github_user",
		"get_current_time", "convert_time",
	}, s.ToolNames())
}

func TestHandleGetFeishuDoc(t *testing.T) {
	s, _ := newTestServer(t)

	text, err := s.handleGetFeishuDoc(context.Background(), GetFeishuDocInput{DocURL: "https://acme.feishu.cn/docx/doxReq"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"需求"}`, text)

	_, err = s.handleGetFeishuDoc(context.Background(), GetFeishuDocInput{})
	assert.ErrorIs(t, err, schema.ErrValidation)

	_, err = s.handleGetFeishuDoc(context.Background(), GetFeishuDocInput{DocToken: "missing"})
	assert.ErrorIs(t, err, schema.ErrRemoteResolution)
}

func TestHandleGetFeishuWiki(t *testing.T) {
	s, _ := newTestServer(t)

	text, err := s.handleGetFeishuWiki(context.Background(), GetFeishuWikiInput{WikiURL: "https://acme.feishu.cn/wiki/doxWiki"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"wiki 需求"}`, text)

	_, err = s.handleGetFeishuWiki(context.Background(), GetFeishuWikiInput{})
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestHandleAnalyzeDoc(t *testing.T) {
	s, _ := newTestServer(t)

	text, err := s.handleAnalyzeDoc(context.Background(), AnalyzeDocInput{
		DocToken:      "doxReq",
		KnowledgeBase: schema.SourceDescriptor{Type: schema.SourceLocal, Path: "/kb/team.json"},
		ProjectSpec:   schema.ProjectSpec{Type: schema.ProjectBackend, Framework: "Express"},
		OutputPath:    "/out",
	})
	require.NoError(t, err)

	var result struct {
		Report struct {
			Conventions []string `json:"conventions"`
			Document    string   `json:"document"`
		} `json:"report"`
		Structure  map[string]any `json:"structure"`
		Written    bool           `json:"written"`
		OutputPath string         `json:"outputPath"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, []string{"团队规范"}, result.Report.Conventions)
	assert.Equal(t, "需求", result.Report.Document)
	assert.Contains(t, result.Structure, "src")
	assert.True(t, result.Written)
	assert.Equal(t, "/out", result.OutputPath)

	_, err = s.handleAnalyzeDoc(context.Background(), AnalyzeDocInput{
		DocToken:      "doxReq",
		KnowledgeBase: schema.SourceDescriptor{Type: schema.SourceLocal, Path: "/kb/team.json"},
		ProjectSpec:   schema.ProjectSpec{Type: "desktop", Framework: "Qt"},
	})
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestHandleListPresets(t *testing.T) {
	s, _ := newTestServer(t)

	text, err := s.handleListPresets(context.Background(), ListPresetsInput{})
	require.NoError(t, err)

	var presets []PresetSummary
	require.NoError(t, json.Unmarshal([]byte(text), &presets))
	require.Len(t, presets, 3)
	assert.Equal(t, "next", presets[0].Name)
	assert.Equal(t, "react", presets[1].Name)
	assert.Equal(t, "vue", presets[2].Name)
	assert.NotEmpty(t, presets[1].Conventions)
}

func TestHandleGitHubTools(t *testing.T) {
	s, repos := newTestServer(t)

	text, err := s.handleGitHubSearch(context.Background(), GitHubSearchInput{Query: "tools", Type: "code"})
	require.NoError(t, err)
	assert.Contains(t, text, `"acme/tools"`)
	assert.Equal(t, github.SearchRequest{Query: "tools", Page: 1, PerPage: 30, Type: github.SearchCode}, repos.last)

	_, err = s.handleGitHubSearch(context.Background(), GitHubSearchInput{Query: "tools", Type: "wikis"})
	assert.ErrorIs(t, err, schema.ErrValidation)

	text, err = s.handleGetGitHubUser(context.Background(), GetGitHubUserInput{Username: "octocat"})
	require.NoError(t, err)
	assert.Contains(t, text, `"login": "octocat"`)
}

func TestHandleTimeTools(t *testing.T) {
	s, _ := newTestServer(t)

	text, err := s.handleGetCurrentTime(context.Background(), GetCurrentTimeInput{})
	require.NoError(t, err)
	assert.Contains(t, text, `"timezone": "UTC"`)

	text, err = s.handleConvertTime(context.Background(), ConvertTimeInput{SourceTimezone: "UTC", Time: "10:00", TargetTimezone: "UTC"})
	require.NoError(t, err)
	assert.Contains(t, text, "T10:00:00Z")

	_, err = s.handleConvertTime(context.Background(), ConvertTimeInput{SourceTimezone: "UTC", Time: "25:00", TargetTimezone: "UTC"})
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestSDKServer_ListAndCall(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := s.sdkServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	list, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, s.ToolNames(), names)

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_current_time",
		Arguments: map[string]any{"timezone": "UTC"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Contains(t, res.Content[0].(*sdkmcp.TextContent).Text, "currentTime")

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_feishu_doc",
		Arguments: map[string]any{"docUrl": "https://acme.feishu.cn/sheets/x"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
