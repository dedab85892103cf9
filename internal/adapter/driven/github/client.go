// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// pageSize is the only page requested when listing pull requests. Repositories
// with more open pull requests are truncated.
const pageSize = 100

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is non-empty)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// ListOpenPullRequests fetches a single page of open pull requests.
func (c *Client) ListOpenPullRequests(ctx context.Context, owner, repo string) ([]model.GitHubPullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for %s/%s: %w", owner, repo, err)
	}

	logRateLimit(resp, owner+"/"+repo, len(prs))

	result := make([]model.GitHubPullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, mapPullRequest(pr))
	}

	return result, nil
}

// ResolveRepositoryPath returns the owner and name of the repository with the given id.
func (c *Client) ResolveRepositoryPath(ctx context.Context, id int64) (model.RepoPath, error) {
	repo, resp, err := c.gh.Repositories.GetByID(ctx, id)
	if err != nil {
		return model.RepoPath{}, fmt.Errorf("fetching repository %d: %w", id, err)
	}

	logRateLimit(resp, fmt.Sprintf("repositories/%d", id), 1)

	path := model.RepoPath{
		Owner: repo.GetOwner().GetLogin(),
		Name:  repo.GetName(),
	}
	if path.Owner == "" || path.Name == "" {
		return model.RepoPath{}, fmt.Errorf("repository %d: response missing owner or name", id)
	}

	return path, nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// mapPullRequest converts a go-github PullRequest to the domain shape.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapPullRequest(pr *gh.PullRequest) model.GitHubPullRequest {
	base := pr.GetBase().GetRepo()

	return model.GitHubPullRequest{
		ID:          pr.GetID(),
		Number:      pr.GetNumber(),
		Title:       pr.GetTitle(),
		Draft:       pr.GetDraft(),
		HeadRef:     pr.GetHead().GetRef(),
		HTMLURL:     pr.GetHTMLURL(),
		AuthorLogin: pr.GetUser().GetLogin(),
		BaseRepo: model.GitHubRepo{
			ID:         base.GetID(),
			Name:       base.GetName(),
			FullName:   base.GetFullName(),
			OwnerLogin: base.GetOwner().GetLogin(),
		},
		CreatedAt: pr.GetCreatedAt().Time,
	}
}
