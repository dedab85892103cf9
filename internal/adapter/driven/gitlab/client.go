// Package gitlab implements the GitLabClient port using the official GitLab Go client.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitLabClient = (*Client)(nil)

// DefaultBaseURL is the public GitLab instance.
const DefaultBaseURL = "https://gitlab.com"

// Client implements the driven.GitLabClient port.
type Client struct {
	gl *gl.Client
}

// NewClient creates a GitLab API client for the instance at baseURL,
// authenticating with a personal/project access token.
func NewClient(token, baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client, err := gl.NewClient(token, gl.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}

	return &Client{gl: client}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client, err := gl.NewClient(token, gl.WithBaseURL(baseURL), gl.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}

	return &Client{gl: client}, nil
}

// ListOpenMergeRequests fetches the first page of opened merge requests for projectID.
// No page size is requested, so GitLab's default applies.
func (c *Client) ListOpenMergeRequests(ctx context.Context, projectID string) ([]model.GitLabMergeRequest, error) {
	opts := &gl.ListProjectMergeRequestsOptions{
		State: gl.Ptr("opened"),
	}

	mrs, _, err := c.gl.MergeRequests.ListProjectMergeRequests(projectID, opts, gl.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing merge requests for project %s: %w", projectID, err)
	}

	slog.Debug("gitlab api call", "endpoint", "projects/"+projectID+"/merge_requests", "count", len(mrs))

	result := make([]model.GitLabMergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		m := model.GitLabMergeRequest{
			ID:             int64(mr.ID),
			IID:            int(mr.IID),
			ProjectID:      int64(mr.ProjectID),
			Title:          mr.Title,
			WorkInProgress: mr.WorkInProgress, //nolint:staticcheck // the dashboard reports the work_in_progress flag as-is
			SourceBranch:   mr.SourceBranch,
			WebURL:         mr.WebURL,
		}
		if mr.Author != nil {
			m.AuthorUsername = mr.Author.Username
		}
		if mr.CreatedAt != nil {
			m.CreatedAt = *mr.CreatedAt
		}
		result = append(result, m)
	}

	return result, nil
}
