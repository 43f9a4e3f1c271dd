// Package knowledge resolves which knowledge base an analysis runs against.
//
// A knowledge base comes from one of four places, tried in order: a local
// file, a remote analysis endpoint, a built-in preset adjusted by the user's
// conversation, or a raw remote document.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

const defaultTimeout = 30 * time.Second

// Resolver loads knowledge bases. It holds no per-request state and may be
// reused across requests.
type Resolver struct {
	fs      billy.Filesystem
	client  *http.Client
	verbose bool
}

// NewResolver creates a resolver reading local files from fsys and remote
// documents through client. A nil client gets a default one with a timeout.
func NewResolver(fsys billy.Filesystem, client *http.Client, verbose bool) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Resolver{
		fs:      fsys,
		client:  client,
		verbose: verbose,
	}
}

// analysisRequest is the body posted to a remote analysis endpoint.
type analysisRequest struct {
	KnowledgeBaseURL string             `json:"knowledgeBaseUrl"`
	ProjectSpec      schema.ProjectSpec `json:"projectSpec"`
	Conversation     string             `json:"conversation,omitempty"`
}

// Resolve returns the knowledge base described by source.
func (r *Resolver) Resolve(ctx context.Context, source schema.SourceDescriptor, spec schema.ProjectSpec, conversation string) (*schema.ResolvedConfig, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}

	if source.IsLocal() {
		return r.loadLocal(source.Path)
	}

	// The analysis service is authoritative: its answer is returned as-is.
	if source.AnalysisEndpoint != "" {
		r.logf("Requesting analysis from %s\n", source.AnalysisEndpoint)
		body, err := json.Marshal(analysisRequest{
			KnowledgeBaseURL: source.URL,
			ProjectSpec:      spec,
			Conversation:     conversation,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
		}
		return r.fetch(ctx, http.MethodPost, source.AnalysisEndpoint, body)
	}

	if spec.Type == schema.ProjectFrontend && spec.Framework != "" {
		if preset, ok := LookupPreset(spec.Framework); ok {
			r.logf("Using built-in %s preset\n", spec.Framework)
			return ApplyOverrides(preset, conversation), nil
		}
	}

	r.logf("Fetching knowledge base from %s\n", source.URL)
	return r.fetch(ctx, http.MethodGet, source.URL, nil)
}

func (r *Resolver) loadLocal(path string) (*schema.ResolvedConfig, error) {
	data, err := util.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", schema.ErrSourceUnavailable, path, err)
	}

	cfg, err := decodeDocument(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", schema.ErrSourceUnavailable, path, err)
	}

	r.logf("Loaded local knowledge base %s\n", path)
	return cfg, nil
}

func (r *Resolver) fetch(ctx context.Context, method, url string, body []byte) (*schema.ResolvedConfig, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &schema.RemoteError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &schema.RemoteError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &schema.RemoteError{URL: url, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &schema.RemoteError{URL: url, Status: resp.StatusCode}
	}

	var cfg schema.ResolvedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &schema.RemoteError{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("failed to parse response: %w", err),
		}
	}
	cfg.Raw = data
	return &cfg, nil
}

func (r *Resolver) logf(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(os.Stderr, "[knowledge] "+format, args...)
	}
}
