package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/shortest/internal/application"
	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	changeSvc     *application.ChangeRequestService
	credentialSvc *application.CredentialService
	repoStore     driven.RepoStore
	pinger        Pinger
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
// credentialSvc and pinger may be nil; the credential endpoints then answer
// 503 and the health check skips the store probe.
func NewHandler(
	changeSvc *application.ChangeRequestService,
	credentialSvc *application.CredentialService,
	repoStore driven.RepoStore,
	pinger Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		changeSvc:     changeSvc,
		credentialSvc: credentialSvc,
		repoStore:     repoStore,
		pinger:        pinger,
		logger:        logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /repositories/{repositoryId}/pull-requests", h.ListPullRequests)

	mux.HandleFunc("GET /api/v1/repositories", h.ListRepos)
	mux.HandleFunc("POST /api/v1/repositories", h.AddRepo)
	mux.HandleFunc("DELETE /api/v1/repositories/{id}", h.RemoveRepo)

	mux.HandleFunc("PUT /api/v1/credentials/{provider}", h.SetToken)
	mux.HandleFunc("DELETE /api/v1/credentials/{provider}", h.ClearToken)

	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListRepos returns all connected repositories with their cached open counts.
func (h *Handler) ListRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoStore.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list repos", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RepoResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepoResponse(repo))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddRepo connects a repository.
func (h *Handler) AddRepo(w http.ResponseWriter, r *http.Request) {
	var req AddRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" || strings.ContainsAny(id, " \t\r\n") {
		writeError(w, http.StatusBadRequest, "invalid repository id")
		return
	}

	provider := model.Provider(strings.ToLower(strings.TrimSpace(req.Provider)))
	if !provider.IsKnown() {
		writeError(w, http.StatusBadRequest, "invalid provider: expected github or gitlab")
		return
	}

	fullPath := strings.TrimSpace(req.FullPath)
	if fullPath != "" && provider == model.ProviderGitHub && !validRepoPath(fullPath) {
		writeError(w, http.StatusBadRequest, "invalid full_path: expected owner/repo format")
		return
	}

	repo := model.Repository{
		ID:       id,
		Provider: provider,
		FullPath: fullPath,
		AddedAt:  time.Now().UTC(),
	}

	if err := h.repoStore.Add(r.Context(), repo); err != nil {
		if errors.Is(err, driven.ErrRepoAlreadyExists) {
			writeError(w, http.StatusConflict, "repository already exists")
			return
		}
		h.logger.Error("failed to add repo", "id", id, "provider", provider, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toRepoResponse(repo))
}

// RemoveRepo disconnects a repository.
func (h *Handler) RemoveRepo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.repoStore.Remove(r.Context(), id); err != nil {
		if errors.Is(err, driven.ErrRepoNotFound) {
			writeError(w, http.StatusNotFound, "repository not found")
			return
		}
		h.logger.Error("failed to remove repo", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response. When a store probe is
// configured and fails, the status is 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Time:   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func validRepoPath(s string) bool {
	_, ok := model.ParseRepoPath(s)
	return ok
}
