// Package github searches GitHub and looks up users through the REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/z58362026/mcp-packages/pkg/schema"
	"golang.org/x/oauth2"
)

// SearchType selects the search endpoint.
type SearchType string

const (
	SearchRepositories SearchType = "repositories"
	SearchCode         SearchType = "code"
	SearchIssues       SearchType = "issues"
	SearchUsers        SearchType = "users"

	DefaultPerPage = 30
	maxPerPage     = 100
)

var ErrTokenRequired = errors.New("GITHUB_TOKEN or GH_TOKEN environment variable not found")

// SearchRequest is one page of a search.
type SearchRequest struct {
	Query   string
	Page    int
	PerPage int
	Type    SearchType
}

// Normalize fills defaults and rejects unknown search types.
func (r SearchRequest) Normalize() (SearchRequest, error) {
	if strings.TrimSpace(r.Query) == "" {
		return r, schema.Validationf("query is required")
	}
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 {
		r.PerPage = DefaultPerPage
	}
	if r.PerPage > maxPerPage {
		r.PerPage = maxPerPage
	}
	switch r.Type {
	case "":
		r.Type = SearchRepositories
	case SearchRepositories, SearchCode, SearchIssues, SearchUsers:
	default:
		return r, schema.Validationf("unknown search type %q (want repositories, code, issues or users)", r.Type)
	}
	return r, nil
}

// Client wraps go-github with a static token.
type Client struct {
	client  *github.Client
	verbose bool
}

// NewClient creates a client authenticated with token. base supplies the
// transport and timeout; nil uses the oauth2 default.
func NewClient(token string, base *http.Client, verbose bool) (*Client, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}

	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	if base != nil {
		tc.Timeout = base.Timeout
	}

	return &Client{
		client:  github.NewClient(tc),
		verbose: verbose,
	}, nil
}

// Search runs one page of a search and returns the decoded result, whose
// JSON form matches the GitHub search response.
func (c *Client) Search(ctx context.Context, req SearchRequest) (any, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{Page: req.Page, PerPage: req.PerPage},
	}
	c.logf("search %s q=%q page=%d per_page=%d\n", req.Type, req.Query, req.Page, req.PerPage)

	var (
		result any
		resp   *github.Response
	)
	switch req.Type {
	case SearchCode:
		result, resp, err = c.client.Search.Code(ctx, req.Query, opts)
	case SearchIssues:
		result, resp, err = c.client.Search.Issues(ctx, req.Query, opts)
	case SearchUsers:
		result, resp, err = c.client.Search.Users(ctx, req.Query, opts)
	default:
		result, resp, err = c.client.Search.Repositories(ctx, req.Query, opts)
	}
	if err != nil {
		return nil, remoteError(fmt.Sprintf("search/%s", req.Type), resp, err)
	}
	return result, nil
}

// User fetches a user's public profile.
func (c *Client) User(ctx context.Context, username string) (*github.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, schema.Validationf("username is required")
	}

	user, resp, err := c.client.Users.Get(ctx, username)
	if err != nil {
		return nil, remoteError("users/"+username, resp, err)
	}
	return user, nil
}

func (c *Client) logf(format string, args ...any) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[github] "+format, args...)
	}
}

func remoteError(path string, resp *github.Response, err error) error {
	remote := &schema.RemoteError{Err: err}
	if resp != nil && resp.Response != nil {
		remote.Status = resp.StatusCode
		if resp.Request != nil {
			remote.URL = resp.Request.URL.String()
		}
	}
	if remote.URL == "" {
		remote.URL = path
	}
	return remote
}
