package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v52/github"

	"github.com/groupon/nlm/internal/repository"
)

// DefaultTimeout bounds a single hosting API request.
const DefaultTimeout = 30 * time.Second

// commitsPageSize is the page size used when listing pull request commits.
const commitsPageSize = 100

// GitHubOptions configures a GitHub client.
type GitHubOptions struct {
	// Token is sent as "Authorization: token <Token>" when non-empty.
	Token string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// GitHub implements PullRequests on top of the GitHub REST API, including
// GitHub Enterprise installations reachable under <host>/api/v3.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHub creates a client for the repository described by info.
func NewGitHub(info *repository.Info, opts GitHubOptions) (*GitHub, error) {
	base, err := url.Parse(strings.TrimSuffix(info.APIBase, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing API base %q: %w", info.APIBase, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Token != "" {
		transport = &tokenTransport{token: opts.Token, next: transport}
	}

	client := github.NewClient(&http.Client{Timeout: timeout, Transport: transport})
	client.BaseURL = base

	logDebug("[hosting] using %s for %s", base, info.Slug())

	return &GitHub{client: client, owner: info.Owner, repo: info.Name}, nil
}

// Get returns the title, link and author of a pull request.
func (g *GitHub) Get(ctx context.Context, pullID string) (*PullInfo, error) {
	number, err := parsePullID(pullID)
	if err != nil {
		return nil, err
	}

	logDebug("[hosting] GET pull %s/%s#%d", g.owner, g.repo, number)

	pr, _, err := g.client.PullRequests.Get(ctx, g.owner, g.repo, number)
	if err != nil {
		return nil, wrapError(err, "getting pull request #%d", number)
	}

	user := pr.GetUser()
	return &PullInfo{
		Title: pr.GetTitle(),
		Href:  pr.GetHTMLURL(),
		Author: Author{
			Name: user.GetLogin(),
			Href: user.GetHTMLURL(),
		},
	}, nil
}

// Commits returns the hashes of all commits of a pull request, following
// pagination until the last page.
func (g *GitHub) Commits(ctx context.Context, pullID string) ([]string, error) {
	number, err := parsePullID(pullID)
	if err != nil {
		return nil, err
	}

	shas := []string{}
	opts := &github.ListOptions{PerPage: commitsPageSize}
	for {
		logDebug("[hosting] GET commits %s/%s#%d page %d", g.owner, g.repo, number, opts.Page)

		page, resp, err := g.client.PullRequests.ListCommits(ctx, g.owner, g.repo, number, opts)
		if err != nil {
			return nil, wrapError(err, "listing commits of pull request #%d", number)
		}
		for _, c := range page {
			shas = append(shas, c.GetSHA())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return shas, nil
}

func parsePullID(pullID string) (int, error) {
	number, err := strconv.Atoi(pullID)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid pull request id %q", pullID)
	}
	return number, nil
}

// wrapError maps a 404 response to ErrNotFound.
func wrapError(err error, format string, args ...any) error {
	op := fmt.Sprintf(format, args...)

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return &Error{Op: op, Err: ErrNotFound}
	}
	return &Error{Op: op, Err: err}
}

// tokenTransport adds the API token to every request.
type tokenTransport struct {
	token string
	next  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "token "+t.token)
	return t.next.RoundTrip(clone)
}
