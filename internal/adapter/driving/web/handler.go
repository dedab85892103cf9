// Package web implements the Authenticated Shell: HTML pages rendered from
// templ components. Sign-in state comes from an identity-aware proxy header.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/shortest/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/shortest/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/shortest/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/shortest/internal/application"
	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	repoStore  driven.RepoStore
	changeSvc  *application.ChangeRequestService
	userHeader string
	signInURL  string
	logger     *slog.Logger
}

// NewHandler creates a Handler. userHeader names the request header carrying
// the signed-in user's login; signInURL is where signed-out users are sent.
func NewHandler(
	repoStore driven.RepoStore,
	changeSvc *application.ChangeRequestService,
	userHeader string,
	signInURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		repoStore:  repoStore,
		changeSvc:  changeSvc,
		userHeader: userHeader,
		signInURL:  signInURL,
		logger:     logger,
	}
}

// shell derives the header state from the request.
func (h *Handler) shell(r *http.Request) vm.ShellViewModel {
	login := strings.TrimSpace(r.Header.Get(h.userHeader))
	return vm.ShellViewModel{
		SignedIn:  login != "",
		UserLogin: login,
		SignInURL: h.signInURL,
	}
}

// requireSignIn redirects signed-out users to the landing page.
func (h *Handler) requireSignIn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.shell(r).SignedIn {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	layout := templates.Layout(title, h.shell(r), body)
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}

// Landing renders the public landing page.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Welcome", pages.Landing(h.shell(r)))
}

// Dashboard renders the repository summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoStore.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list repos", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "Dashboard", pages.Dashboard(toDashboardViewModel(repos)))
}

// Repos renders the connected repositories with their cached open counts.
func (h *Handler) Repos(w http.ResponseWriter, r *http.Request) {
	h.renderRepos(w, r, http.StatusOK, "")
}

func (h *Handler) renderRepos(w http.ResponseWriter, r *http.Request, status int, formError string) {
	repos, err := h.repoStore.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list repos", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	rows := make([]vm.RepoRowViewModel, 0, len(repos))
	for _, repo := range repos {
		rows = append(rows, toRepoRowViewModel(repo))
	}

	page := vm.ReposPageViewModel{
		Repos:     rows,
		CSRFToken: csrfToken(w, r),
		Error:     formError,
	}
	h.render(w, r, status, "Repositories", pages.Repos(page))
}

// ConnectRepo handles the connect form.
func (h *Handler) ConnectRepo(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	id := strings.TrimSpace(r.FormValue("id"))
	provider := model.Provider(strings.ToLower(strings.TrimSpace(r.FormValue("provider"))))
	fullPath := strings.TrimSpace(r.FormValue("full_path"))

	switch {
	case id == "" || strings.ContainsAny(id, " \t\r\n"):
		h.renderRepos(w, r, http.StatusBadRequest, "Enter a repository or project id.")
		return
	case !provider.IsKnown():
		h.renderRepos(w, r, http.StatusBadRequest, "Choose GitHub or GitLab.")
		return
	case fullPath != "" && provider == model.ProviderGitHub && !validRepoPath(fullPath):
		h.renderRepos(w, r, http.StatusBadRequest, "GitHub paths use the owner/name format.")
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
			h.renderRepos(w, r, http.StatusConflict, "That repository is already connected.")
			return
		}
		h.logger.Error("failed to add repo", "id", id, "provider", provider, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard/repos", http.StatusSeeOther)
}

// DisconnectRepo handles the remove button.
func (h *Handler) DisconnectRepo(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	id := r.PathValue("id")
	if err := h.repoStore.Remove(r.Context(), id); err != nil && !errors.Is(err, driven.ErrRepoNotFound) {
		h.logger.Error("failed to remove repo", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard/repos", http.StatusSeeOther)
}

// RepoDetail renders a repository's live open change requests.
func (h *Handler) RepoDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	repo, err := h.repoStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get repo", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if repo == nil {
		h.render(w, r, http.StatusNotFound, "Not found", pages.NotFound("Repository not found."))
		return
	}

	detail := vm.RepoDetailViewModel{Repo: toRepoRowViewModel(*repo)}

	changes, err := h.changeSvc.ListOpenChanges(r.Context(), id, "")
	if err != nil {
		h.logger.Error("failed to list pull requests", "repository_id", id, "error", err)
		detail.Error = "Failed to fetch pull requests"
		h.render(w, r, http.StatusBadGateway, detail.Repo.DisplayName, pages.RepoDetail(detail))
		return
	}

	detail.Changes = make([]vm.ChangeRowViewModel, 0, len(changes))
	for _, cr := range changes {
		detail.Changes = append(detail.Changes, toChangeRowViewModel(cr))
	}

	h.render(w, r, http.StatusOK, detail.Repo.DisplayName, pages.RepoDetail(detail))
}

func validRepoPath(s string) bool {
	_, ok := model.ParseRepoPath(s)
	return ok
}
