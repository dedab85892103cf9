package driven

import (
	"context"

	"github.com/ericfisherdev/shortest/internal/domain/model"
)

// GitLabClient defines the driven port for the GitLab REST API.
type GitLabClient interface {
	// ListOpenMergeRequests returns the first page of opened merge requests of
	// a project, using the API's default page size.
	ListOpenMergeRequests(ctx context.Context, projectID string) ([]model.GitLabMergeRequest, error)
}
