package httphandler

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/shortest/internal/application"
)

// User-facing messages of the pull request listing endpoint.
const (
	msgWrongProvider     = "Wrong Git Provider Provided"
	msgMissingProvider   = "Provider not specified"
	msgRepoDetailsFailed = "Failed to fetch GitHub repository details"
	msgGitHubPRsFailed   = "Failed to fetch GitHub pull requests"
	msgGenericFailure    = "Failed to fetch pull requests"
)

// ListPullRequests returns the open pull/merge requests of a repository.
// The optional provider query parameter overrides the stored provider.
func (h *Handler) ListPullRequests(w http.ResponseWriter, r *http.Request) {
	repositoryID := r.PathValue("repositoryId")
	providerHint := r.URL.Query().Get("provider")

	changes, err := h.changeSvc.ListOpenChanges(r.Context(), repositoryID, providerHint)
	if err != nil {
		status, message := changeErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to list pull requests",
				"repository_id", repositoryID,
				"provider", providerHint,
				"error", err,
			)
		}
		writeError(w, status, message)
		return
	}

	resp := make([]ChangeRequestResponse, 0, len(changes))
	for _, cr := range changes {
		resp = append(resp, toChangeRequestResponse(cr))
	}

	writeJSON(w, http.StatusOK, resp)
}

// changeErrorResponse maps a ListOpenChanges error to a status and message.
// GitLab failures and store errors share the generic message.
func changeErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrInvalidProvider):
		return http.StatusBadRequest, msgWrongProvider
	case errors.Is(err, application.ErrMissingProvider):
		return http.StatusBadRequest, msgMissingProvider
	case errors.Is(err, application.ErrRepoPathUnresolved):
		return http.StatusInternalServerError, msgRepoDetailsFailed
	case errors.Is(err, application.ErrPullRequestsUnavailable):
		return http.StatusInternalServerError, msgGitHubPRsFailed
	default:
		return http.StatusInternalServerError, msgGenericFailure
	}
}
