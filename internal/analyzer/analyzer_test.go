package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z58362026/mcp-packages/internal/artifact"
	"github.com/z58362026/mcp-packages/internal/knowledge"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

type fakeFetcher struct {
	docs      map[string]string
	wikis     map[string]string
	docCalls  []string
	wikiCalls []string
	err       error
}

func (f *fakeFetcher) FetchDocument(_ context.Context, token string) (string, error) {
	f.docCalls = append(f.docCalls, token)
	if f.err != nil {
		return "", f.err
	}
	return f.docs[token], nil
}

func (f *fakeFetcher) FetchWiki(_ context.Context, url string) (string, error) {
	f.wikiCalls = append(f.wikiCalls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.wikis[url], nil
}

type recordingResolver struct {
	source       schema.SourceDescriptor
	conversation string
}

func (r *recordingResolver) Resolve(_ context.Context, source schema.SourceDescriptor, _ schema.ProjectSpec, conversation string) (*schema.ResolvedConfig, error) {
	r.source = source
	r.conversation = conversation
	return &schema.ResolvedConfig{}, nil
}

const baseKnowledge = `{
  "standards": {
    "naming": {"components": "PascalCase"},
    "conventions": ["使用 TypeScript"]
  },
  "templates": {"page": {"path": "src/pages/index.tsx", "content": ""}}
}`

func newFixture(t *testing.T) (*Analyzer, *fakeFetcher, billy.Filesystem) {
	t.Helper()
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "/kb/base.json", []byte(baseKnowledge), 0o644))

	fetcher := &fakeFetcher{
		docs:  map[string]string{"doxReq": "# 用户管理\n支持登录"},
		wikis: map[string]string{"https://acme.feishu.cn/wiki/wikA": "wiki requirements"},
	}
	a := New(
		fetcher,
		knowledge.NewResolver(fsys, nil, false),
		artifact.NewMaterializer(fsys, false),
		false,
	)
	return a, fetcher, fsys
}

func baseRequest() Request {
	return Request{
		DocToken:      "doxReq",
		KnowledgeBase: schema.SourceDescriptor{Type: schema.SourceLocal, Path: "/kb/base.json"},
		ProjectSpec: schema.ProjectSpec{
			Type:        schema.ProjectFrontend,
			Framework:   "React",
			Conventions: []string{"使用 ESLint"},
		},
	}
}

func TestAnalyze_RenderedResult(t *testing.T) {
	a, fetcher, _ := newFixture(t)

	result, err := a.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"doxReq"}, fetcher.docCalls)
	assert.False(t, result.Written)
	assert.NotEmpty(t, result.Report.ID)

	result.Report.ID = "test-report"
	text, err := result.JSON()
	require.NoError(t, err)
	snaps.MatchSnapshot(t, text)
}

func TestAnalyze_WritesTree(t *testing.T) {
	a, _, fsys := newFixture(t)
	req := baseRequest()
	req.OutputPath = "/out"

	result, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Written)
	assert.Equal(t, "/out", result.OutputPath)
	for _, dir := range []string{"/out/src/components", "/out/src/services", "/out/test/unit", "/out/docs/guides"} {
		info, err := fsys.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}
}

func TestAnalyze_ValidatesBeforeFetching(t *testing.T) {
	a, fetcher, _ := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"missing type", func(r *Request) { r.ProjectSpec.Type = "" }},
		{"unknown type", func(r *Request) { r.ProjectSpec.Type = "mobile" }},
		{"missing framework", func(r *Request) { r.ProjectSpec.Framework = "" }},
		{"local without path", func(r *Request) { r.KnowledgeBase.Path = "" }},
		{"remote without url", func(r *Request) { r.KnowledgeBase = schema.SourceDescriptor{Type: schema.SourceRemote} }},
		{"no document", func(r *Request) { r.DocToken = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)

			_, err := a.Analyze(context.Background(), req)
			assert.ErrorIs(t, err, schema.ErrValidation)
		})
	}
	assert.Empty(t, fetcher.docCalls)
	assert.Empty(t, fetcher.wikiCalls)
}

func TestAnalyze_DocumentSelection(t *testing.T) {
	a, fetcher, _ := newFixture(t)

	req := baseRequest()
	req.DocURL = "https://acme.feishu.cn/docx/doxFromURL"
	_, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"doxFromURL"}, fetcher.docCalls)

	req = baseRequest()
	req.DocToken = ""
	req.WikiURL = "https://acme.feishu.cn/wiki/wikA"
	result, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://acme.feishu.cn/wiki/wikA"}, fetcher.wikiCalls)
	assert.Equal(t, "wiki requirements", result.Report.Document)

	req = baseRequest()
	req.DocToken = ""
	req.DocURL = "https://acme.feishu.cn/sheets/abc"
	_, err = a.Analyze(context.Background(), req)
	assert.ErrorIs(t, err, schema.ErrInvalidReference)
}

func TestAnalyze_FetchFailure(t *testing.T) {
	a, fetcher, _ := newFixture(t)
	fetcher.err = &schema.RemoteError{URL: "https://open.feishu.cn", Status: 403, Err: errors.New("forbidden")}

	_, err := a.Analyze(context.Background(), baseRequest())

	assert.ErrorIs(t, err, schema.ErrRemoteResolution)
}

func TestAnalyze_NoFetcher(t *testing.T) {
	a := New(nil, &recordingResolver{}, nil, false)

	_, err := a.Analyze(context.Background(), baseRequest())

	assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
}

func TestAnalyze_MissingKnowledgeBase(t *testing.T) {
	a, _, fsys := newFixture(t)
	req := baseRequest()
	req.KnowledgeBase.Path = "/kb/missing.json"
	req.OutputPath = "/out"

	_, err := a.Analyze(context.Background(), req)

	assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, statErr := fsys.Stat("/out")
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestAnalyze_ForwardsConversationAndAbsolutePath(t *testing.T) {
	resolver := &recordingResolver{}
	fetcher := &fakeFetcher{docs: map[string]string{"doxReq": "doc"}}
	a := New(fetcher, resolver, nil, false)

	req := baseRequest()
	req.KnowledgeBase.Path = "kb.json"
	req.Conversation = "请使用下划线命名"

	_, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "请使用下划线命名", resolver.conversation)
	assert.True(t, filepath.IsAbs(resolver.source.Path), resolver.source.Path)
	assert.Equal(t, "kb.json", filepath.Base(resolver.source.Path))
}

func TestAnalyze_EchoesAuthoritativeKnowledgeBase(t *testing.T) {
	const answer = `{"analysis":{"modules":["a"]},"structure":{"src":{"App.tsx":"export {}"}},"code":{"components":{"App.tsx":"export {}"}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(answer))
	}))
	t.Cleanup(srv.Close)

	fsys := memfs.New()
	fetcher := &fakeFetcher{docs: map[string]string{"doxReq": "需求"}}
	a := New(fetcher, knowledge.NewResolver(fsys, srv.Client(), false), artifact.NewMaterializer(fsys, false), false)

	req := baseRequest()
	req.KnowledgeBase = schema.SourceDescriptor{Type: schema.SourceRemote, URL: "https://kb.example.com/react", AnalysisEndpoint: srv.URL}
	result, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.JSONEq(t, answer, string(result.KnowledgeBase))
	assert.JSONEq(t, `{"src":{"App.tsx":"export {}"}}`, mustMarshal(t, result.Structure))

	text, err := result.JSON()
	require.NoError(t, err)
	assert.Contains(t, text, `"code"`)
}

func TestAnalyze_LocalKnowledgeBaseNotEchoed(t *testing.T) {
	a, _, _ := newFixture(t)

	result, err := a.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Empty(t, result.KnowledgeBase)
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
