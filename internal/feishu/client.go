// Package feishu fetches documents from the Feishu open platform.
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/z58362026/mcp-packages/pkg/schema"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public Feishu open platform host.
	DefaultBaseURL = "https://open.feishu.cn"

	tokenPath   = "/open-apis/auth/v3/tenant_access_token/internal"
	docxPath    = "/open-apis/docx/v1/documents/%s/raw_content"
	wikiNodeURL = "/open-apis/wiki/v2/spaces/get_node"

	objTypeDocx = "docx"
)

// ErrCredentialsRequired is returned when the app id or secret is missing.
var ErrCredentialsRequired = errors.New("feishu: app id and app secret are required (set FEISHU_APP_ID and FEISHU_APP_SECRET)")

// ErrUnsupportedWiki is returned for wiki nodes that are not backed by a docx
// document.
var ErrUnsupportedWiki = errors.New("feishu: wiki node is not bound to a docx document")

// Response fields read from Feishu envelopes.
var (
	codePath        = jp.MustParseString("$.code")
	msgPath         = jp.MustParseString("$.msg")
	dataPath        = jp.MustParseString("$.data")
	contentPath     = jp.MustParseString("$.data.content")
	tenantTokenPath = jp.MustParseString("$.tenant_access_token")
	expirePath      = jp.MustParseString("$.expire")
	objTypePath     = jp.MustParseString("$.data.node.obj_type")
	objTokenPath    = jp.MustParseString("$.data.node.obj_token")
)

// APIError is a Feishu response whose code is not zero.
type APIError struct {
	Code int64
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu API error %d: %s", e.Code, e.Msg)
}

// Client talks to the Feishu open platform with a cached tenant token.
type Client struct {
	baseURL string
	http    *http.Client
	verbose bool
}

// NewClient creates a client authenticating as the given app. base supplies
// the transport and timeout; nil uses a default client.
func NewClient(appID, appSecret, baseURL string, base *http.Client, verbose bool) (*Client, error) {
	if appID == "" || appSecret == "" {
		return nil, ErrCredentialsRequired
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}

	ts := &tenantTokenSource{
		client:    base,
		url:       baseURL + tokenPath,
		appID:     appID,
		appSecret: appSecret,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, ts))
	httpClient.Timeout = base.Timeout

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		verbose: verbose,
	}, nil
}

// Document returns the data object of a docx document.
func (c *Client) Document(ctx context.Context, docToken string) (any, error) {
	doc, err := c.get(ctx, fmt.Sprintf(docxPath, url.PathEscape(docToken)), nil)
	if err != nil {
		return nil, err
	}
	data, _ := first(dataPath, doc)
	return data, nil
}

// FetchDocument returns the plain text of a docx document.
func (c *Client) FetchDocument(ctx context.Context, docToken string) (string, error) {
	data, err := c.Document(ctx, docToken)
	if err != nil {
		return "", err
	}
	return documentText(data)
}

// Wiki returns the docx data behind a wiki URL.
func (c *Client) Wiki(ctx context.Context, wikiURL string) (any, error) {
	nodeToken, err := ExtractWikiToken(wikiURL)
	if err != nil {
		return nil, err
	}

	node, err := c.get(ctx, wikiNodeURL, url.Values{"token": {nodeToken}})
	if err != nil {
		return nil, err
	}

	objType, _ := first(objTypePath, node)
	objToken, _ := first(objTokenPath, node)
	token, _ := objToken.(string)
	if objType != objTypeDocx || token == "" {
		return nil, fmt.Errorf("%w (type %v)", ErrUnsupportedWiki, objType)
	}

	c.logf("Wiki node %s resolved to docx %s\n", nodeToken, token)
	return c.Document(ctx, token)
}

// FetchWiki returns the plain text of the docx behind a wiki URL.
func (c *Client) FetchWiki(ctx context.Context, wikiURL string) (string, error) {
	data, err := c.Wiki(ctx, wikiURL)
	if err != nil {
		return "", err
	}
	return documentText(data)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (any, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &schema.RemoteError{URL: endpoint, Err: err}
	}

	c.logf("GET %s\n", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &schema.RemoteError{URL: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeEnvelope(endpoint, resp)
}

func (c *Client) logf(format string, args ...any) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[feishu] "+format, args...)
	}
}

// decodeEnvelope parses a Feishu response and checks both the HTTP status and
// the envelope code.
func decodeEnvelope(endpoint string, resp *http.Response) (any, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &schema.RemoteError{URL: endpoint, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &schema.RemoteError{URL: endpoint, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	doc, err := oj.Parse(body)
	if err != nil {
		return nil, &schema.RemoteError{URL: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	if code := asInt(first(codePath, doc)); code != 0 {
		msg, _ := first(msgPath, doc)
		return nil, &schema.RemoteError{
			URL:    endpoint,
			Status: resp.StatusCode,
			Err:    &APIError{Code: code, Msg: fmt.Sprint(msg)},
		}
	}
	return doc, nil
}

func documentText(data any) (string, error) {
	if text, ok := first(contentPath, map[string]any{"data": data}); ok {
		if s, ok := text.(string); ok {
			return s, nil
		}
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(out), nil
}

func first(expr jp.Expr, doc any) (any, bool) {
	results := expr.Get(doc)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

func asInt(v any, ok bool) int64 {
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}

// tenantTokenSource exchanges app credentials for a tenant access token.
type tenantTokenSource struct {
	client    *http.Client
	url       string
	appID     string
	appSecret string
}

func (s *tenantTokenSource) Token() (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{
		"app_id":     s.appID,
		"app_secret": s.appSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &schema.RemoteError{URL: s.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := decodeEnvelope(s.url, resp)
	if err != nil {
		return nil, err
	}

	access, _ := first(tenantTokenPath, doc)
	token, _ := access.(string)
	if token == "" {
		return nil, &schema.RemoteError{URL: s.url, Status: resp.StatusCode, Err: errors.New("response has no tenant_access_token")}
	}

	tok := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	if expire := asInt(first(expirePath, doc)); expire > 0 {
		tok.Expiry = time.Now().Add(time.Duration(expire) * time.Second)
	}
	return tok, nil
}
