package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/shortest/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ChangeRequestResponse is the JSON representation of an open pull or merge request.
type ChangeRequestResponse struct {
	ID          int64                    `json:"id"`
	Number      int                      `json:"number"`
	Title       string                   `json:"title"`
	BuildStatus string                   `json:"buildStatus"`
	IsDraft     bool                     `json:"isDraft"`
	BranchName  string                   `json:"branchName"`
	Source      string                   `json:"source"`
	Repository  ChangeRepositoryResponse `json:"repository"`
	HTMLURL     string                   `json:"html_url"`
	User        LoginResponse            `json:"user"`
	CreatedAt   string                   `json:"created_at"`
}

// ChangeRepositoryResponse is the repository block of a change request.
// ID is null when the repository id is not numeric.
type ChangeRepositoryResponse struct {
	ID       *int64        `json:"id"`
	Name     string        `json:"name"`
	FullName string        `json:"full_name"`
	Owner    LoginResponse `json:"owner"`
}

// LoginResponse wraps an account login.
type LoginResponse struct {
	Login string `json:"login"`
}

// RepoResponse is the JSON representation of a connected repository.
type RepoResponse struct {
	ID               string `json:"id"`
	Provider         string `json:"provider"`
	FullPath         string `json:"full_path,omitempty"`
	OpenPullRequests int    `json:"open_pull_requests"`
	UpdatedAt        string `json:"updated_at,omitempty"`
	AddedAt          string `json:"added_at"`
}

// AddRepoRequest is the JSON body for the add repository endpoint.
type AddRepoRequest struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	FullPath string `json:"full_path"`
}

// SetTokenRequest is the JSON body for the credential endpoint.
type SetTokenRequest struct {
	Token string `json:"token"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toChangeRequestResponse converts a domain ChangeRequest to its JSON representation.
func toChangeRequestResponse(cr model.ChangeRequest) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:          cr.ID,
		Number:      cr.Number,
		Title:       cr.Title,
		BuildStatus: string(cr.BuildStatus),
		IsDraft:     cr.IsDraft,
		BranchName:  cr.BranchName,
		Source:      string(cr.Source),
		Repository: ChangeRepositoryResponse{
			ID:       cr.Repository.ID,
			Name:     cr.Repository.Name,
			FullName: cr.Repository.FullName,
			Owner:    LoginResponse{Login: cr.Repository.OwnerLogin},
		},
		HTMLURL:   cr.HTMLURL,
		User:      LoginResponse{Login: cr.UserLogin},
		CreatedAt: cr.CreatedAt,
	}
}

// toRepoResponse converts a domain Repository to its JSON response representation.
func toRepoResponse(repo model.Repository) RepoResponse {
	resp := RepoResponse{
		ID:               repo.ID,
		Provider:         string(repo.Provider),
		FullPath:         repo.FullPath,
		OpenPullRequests: repo.OpenPullRequests,
		AddedAt:          repo.AddedAt.UTC().Format(time.RFC3339),
	}
	if !repo.UpdatedAt.IsZero() {
		resp.UpdatedAt = repo.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
