package driven

import (
	"context"

	"github.com/ericfisherdev/shortest/internal/domain/model"
)

// GitHubClient defines the driven port for the GitHub REST API.
type GitHubClient interface {
	// ListOpenPullRequests returns at most one page (100 items) of open pull
	// requests in the order GitHub returns them.
	ListOpenPullRequests(ctx context.Context, owner, repo string) ([]model.GitHubPullRequest, error)

	// ResolveRepositoryPath looks up a repository's owner and name by its numeric id.
	ResolveRepositoryPath(ctx context.Context, id int64) (model.RepoPath, error)
}
