// Package analyzer runs one document analysis: it fetches the requirement
// document, resolves the knowledge base, plans the artifact tree and, when an
// output path is given, writes the tree to disk.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/z58362026/mcp-packages/internal/artifact"
	"github.com/z58362026/mcp-packages/internal/feishu"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

// DocumentFetcher retrieves requirement documents as text.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, docToken string) (string, error)
	FetchWiki(ctx context.Context, wikiURL string) (string, error)
}

// KnowledgeResolver turns a knowledge base descriptor into a configuration.
type KnowledgeResolver interface {
	Resolve(ctx context.Context, source schema.SourceDescriptor, spec schema.ProjectSpec, conversation string) (*schema.ResolvedConfig, error)
}

// TreeWriter writes an artifact tree below a base path.
type TreeWriter interface {
	Materialize(tree *artifact.Dir, basePath string) error
}

// Request describes one analysis. Exactly one of DocToken, DocURL or WikiURL
// locates the document; DocURL wins over DocToken, both win over WikiURL.
type Request struct {
	DocToken      string
	DocURL        string
	WikiURL       string
	KnowledgeBase schema.SourceDescriptor
	ProjectSpec   schema.ProjectSpec
	Conversation  string
	OutputPath    string
}

// Result is the outcome of an analysis.
type Result struct {
	Report     *artifact.Report `json:"report"`
	Structure  *artifact.Dir    `json:"structure"`
	Written    bool             `json:"written"`
	OutputPath string           `json:"outputPath,omitempty"`

	// KnowledgeBase echoes an authoritative knowledge base (one carrying a
	// prebuilt structure) exactly as it was received, members such as
	// "code" included.
	KnowledgeBase json.RawMessage `json:"knowledgeBase,omitempty"`
}

// JSON renders the result as indented JSON, the form returned to MCP clients
// and printed by the CLI.
func (r *Result) JSON() (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}

// Analyzer wires the pipeline stages together.
type Analyzer struct {
	fetcher  DocumentFetcher
	resolver KnowledgeResolver
	writer   TreeWriter
	verbose  bool
}

// New creates an Analyzer. fetcher may be nil when every request will fail
// validation before a document is needed; Analyze reports a clear error then.
func New(fetcher DocumentFetcher, resolver KnowledgeResolver, writer TreeWriter, verbose bool) *Analyzer {
	return &Analyzer{
		fetcher:  fetcher,
		resolver: resolver,
		writer:   writer,
		verbose:  verbose,
	}
}

// Analyze runs the pipeline for req.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := req.ProjectSpec.Validate(); err != nil {
		return nil, err
	}
	if err := req.KnowledgeBase.Validate(); err != nil {
		return nil, err
	}

	source, err := localize(req.KnowledgeBase)
	if err != nil {
		return nil, err
	}

	document, err := a.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	a.logf("Fetched document (%d bytes)\n", len(document))

	cfg, err := a.resolver.Resolve(ctx, source, req.ProjectSpec, req.Conversation)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve knowledge base: %w", err)
	}

	tree, report, err := artifact.Build(document, cfg, req.ProjectSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to build artifact tree: %w", err)
	}

	result := &Result{Report: report, Structure: tree}
	if len(cfg.Artifacts) > 0 && len(cfg.Raw) > 0 {
		result.KnowledgeBase = cfg.Raw
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return result, nil
	}

	out, err := filepath.Abs(req.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve output path %s: %w", schema.ErrFilesystem, req.OutputPath, err)
	}
	if err := a.writer.Materialize(tree, out); err != nil {
		return nil, err
	}
	a.logf("Wrote artifacts to %s\n", out)

	result.Written = true
	result.OutputPath = out
	return result, nil
}

func (a *Analyzer) fetch(ctx context.Context, req Request) (string, error) {
	if req.DocToken == "" && req.DocURL == "" && req.WikiURL == "" {
		return "", schema.Validationf("one of docToken, docUrl or wikiUrl is required")
	}
	if a.fetcher == nil {
		return "", fmt.Errorf("%w: document fetching is not configured", schema.ErrSourceUnavailable)
	}

	if req.DocToken != "" || req.DocURL != "" {
		token, err := feishu.ResolveDocToken(req.DocToken, req.DocURL)
		if err != nil {
			return "", err
		}
		doc, err := a.fetcher.FetchDocument(ctx, token)
		if err != nil {
			return "", fmt.Errorf("failed to fetch document %s: %w", token, err)
		}
		return doc, nil
	}

	doc, err := a.fetcher.FetchWiki(ctx, req.WikiURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch wiki %s: %w", req.WikiURL, err)
	}
	return doc, nil
}

// localize makes a local knowledge base path absolute so it resolves against
// the working directory.
func localize(source schema.SourceDescriptor) (schema.SourceDescriptor, error) {
	if !source.IsLocal() || filepath.IsAbs(source.Path) {
		return source, nil
	}
	abs, err := filepath.Abs(source.Path)
	if err != nil {
		return source, fmt.Errorf("%w: failed to resolve %s: %w", schema.ErrSourceUnavailable, source.Path, err)
	}
	source.Path = abs
	return source, nil
}

func (a *Analyzer) logf(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(os.Stderr, "[analyzer] "+format, args...)
	}
}
