package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/shortest/internal/adapter/driving/web"
	"github.com/ericfisherdev/shortest/internal/application"
	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockRepoStore struct {
	repos   map[string]*model.Repository
	order   []string
	added   []model.Repository
	removed []string
}

func newMockRepoStore(repos ...model.Repository) *mockRepoStore {
	m := &mockRepoStore{repos: make(map[string]*model.Repository)}
	for i := range repos {
		m.repos[repos[i].ID] = &repos[i]
		m.order = append(m.order, repos[i].ID)
	}
	return m
}

func (m *mockRepoStore) Add(_ context.Context, repo model.Repository) error {
	if _, ok := m.repos[repo.ID]; ok {
		return driven.ErrRepoAlreadyExists
	}
	m.repos[repo.ID] = &repo
	m.order = append(m.order, repo.ID)
	m.added = append(m.added, repo)
	return nil
}

func (m *mockRepoStore) Remove(_ context.Context, id string) error {
	if _, ok := m.repos[id]; !ok {
		return driven.ErrRepoNotFound
	}
	delete(m.repos, id)
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockRepoStore) GetByID(_ context.Context, id string) (*model.Repository, error) {
	repo, ok := m.repos[id]
	if !ok {
		return nil, nil
	}
	cp := *repo
	return &cp, nil
}

func (m *mockRepoStore) ListAll(_ context.Context) ([]model.Repository, error) {
	result := make([]model.Repository, 0, len(m.repos))
	for _, id := range m.order {
		if r, ok := m.repos[id]; ok {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRepoStore) SetFullPath(_ context.Context, _, _ string) error { return nil }

func (m *mockRepoStore) UpdateOpenPullRequests(_ context.Context, id string, count int, at time.Time) error {
	if repo, ok := m.repos[id]; ok {
		repo.OpenPullRequests = count
		repo.UpdatedAt = at
	}
	return nil
}

type mockGitHubClient struct {
	prs []model.GitHubPullRequest
	err error
}

func (m *mockGitHubClient) ListOpenPullRequests(_ context.Context, _, _ string) ([]model.GitHubPullRequest, error) {
	return m.prs, m.err
}

func (m *mockGitHubClient) ResolveRepositoryPath(_ context.Context, _ int64) (model.RepoPath, error) {
	return model.RepoPath{Owner: "octocat", Name: "hello-world"}, nil
}

// --- Test helpers ---

const userHeader = "X-Forwarded-User"

func setupMux(repoStore *mockRepoStore, gh *mockGitHubClient) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clients := application.NewClientProvider(nil, nil)
	if gh != nil {
		clients.ReplaceGitHub(gh)
	}
	changeSvc := application.NewChangeRequestService(clients, repoStore, logger)
	h := web.NewHandler(repoStore, changeSvc, userHeader, "/oauth2/start", logger)

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, h)
	return mux
}

func get(mux http.Handler, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func postForm(mux http.Handler, path, user, csrf string, form url.Values) *httptest.ResponseRecorder {
	if csrf != "" {
		form.Set("csrf_token", csrf)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(userHeader, user)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHeader_SignedOut(t *testing.T) {
	rec := get(setupMux(newMockRepoStore(), nil), "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a class="logo" href="/">Shortest</a>`)
	assert.Contains(t, body, `<a class="sign-in" href="/oauth2/start">Sign in</a>`)
	assert.NotContains(t, body, "/dashboard/repos")
	assert.NotContains(t, body, "user-badge")
}

func TestHeader_SignedIn(t *testing.T) {
	rec := get(setupMux(newMockRepoStore(), nil), "/", "alice")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a class="logo" href="/dashboard">Shortest</a>`)
	assert.Contains(t, body, `<a href="/dashboard/repos">Repositories</a>`)
	assert.Contains(t, body, ">alice</span>")
	assert.NotContains(t, body, "Sign in</a>")
}

func TestHeader_EscapesLogin(t *testing.T) {
	rec := get(setupMux(newMockRepoStore(), nil), "/", "<b>mallory</b>")

	assert.NotContains(t, rec.Body.String(), "<b>mallory</b>")
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;mallory&lt;/b&gt;")
}

func TestDashboardPages_RedirectSignedOut(t *testing.T) {
	mux := setupMux(newMockRepoStore(), nil)

	for _, path := range []string{"/dashboard", "/dashboard/repos", "/dashboard/repos/1"} {
		t.Run(path, func(t *testing.T) {
			rec := get(mux, path, "")
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))
		})
	}
}

func TestDashboard_Summary(t *testing.T) {
	store := newMockRepoStore(
		model.Repository{ID: "1", Provider: model.ProviderGitHub, OpenPullRequests: 3},
		model.Repository{ID: "42", Provider: model.ProviderGitLab, OpenPullRequests: 2},
	)
	rec := get(setupMux(store, nil), "/dashboard", "alice")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<dt>Repositories</dt><dd>2</dd>")
	assert.Contains(t, body, "<dt>Open pull requests</dt><dd>5</dd>")
}

func TestRepos_ListsRepositoriesAndSetsCSRF(t *testing.T) {
	store := newMockRepoStore(
		model.Repository{ID: "1296269", Provider: model.ProviderGitHub, FullPath: "octocat/hello-world", OpenPullRequests: 4},
		model.Repository{ID: "42", Provider: model.ProviderGitLab},
	)
	rec := get(setupMux(store, nil), "/dashboard/repos", "alice")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/dashboard/repos/1296269">octocat/hello-world</a>`)
	assert.Contains(t, body, `href="/dashboard/repos/42">42</a>`)
	assert.Contains(t, body, "<td>never</td>")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "csrf_token", cookies[0].Name)
	assert.Contains(t, body, `name="csrf_token" value="`+cookies[0].Value+`"`)
}

func TestConnectRepo(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		csrf       string
		wantStatus int
		wantAdded  bool
		wantBody   string
	}{
		{
			name:       "valid github",
			form:       url.Values{"id": {"1296269"}, "provider": {"github"}, "full_path": {"octocat/hello-world"}},
			csrf:       "tok",
			wantStatus: http.StatusSeeOther,
			wantAdded:  true,
		},
		{
			name:       "missing csrf",
			form:       url.Values{"id": {"1"}, "provider": {"github"}},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown provider",
			form:       url.Values{"id": {"1"}, "provider": {"svn"}},
			csrf:       "tok",
			wantStatus: http.StatusBadRequest,
			wantBody:   "Choose GitHub or GitLab.",
		},
		{
			name:       "duplicate",
			form:       url.Values{"id": {"42"}, "provider": {"gitlab"}},
			csrf:       "tok",
			wantStatus: http.StatusConflict,
			wantBody:   "That repository is already connected.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockRepoStore(model.Repository{ID: "42", Provider: model.ProviderGitLab})
			rec := postForm(setupMux(store, nil), "/dashboard/repos", "alice", tt.csrf, tt.form)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantAdded {
				require.Len(t, store.added, 1)
				assert.Equal(t, model.ProviderGitHub, store.added[0].Provider)
				assert.Equal(t, "octocat/hello-world", store.added[0].FullPath)
				assert.Equal(t, "/dashboard/repos", rec.Header().Get("Location"))
			} else {
				assert.Empty(t, store.added)
			}
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDisconnectRepo(t *testing.T) {
	store := newMockRepoStore(model.Repository{ID: "42", Provider: model.ProviderGitLab})
	rec := postForm(setupMux(store, nil), "/dashboard/repos/42/delete", "alice", "tok", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"42"}, store.removed)
}

func TestRepoDetail_ListsChanges(t *testing.T) {
	store := newMockRepoStore(model.Repository{ID: "1296269", Provider: model.ProviderGitHub, FullPath: "octocat/hello-world"})
	gh := &mockGitHubClient{prs: []model.GitHubPullRequest{
		{
			ID: 1, Number: 42, Title: "Fix `nil` deref <script>x</script>", Draft: true, HeadRef: "fix-nil",
			HTMLURL: "https://github.com/octocat/hello-world/pull/42", AuthorLogin: "alice",
			CreatedAt: time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC),
		},
	}}

	rec := get(setupMux(store, gh), "/dashboard/repos/1296269", "alice")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<li class="change draft">`)
	assert.Contains(t, body, `href="https://github.com/octocat/hello-world/pull/42"`)
	assert.Contains(t, body, "Fix <code>nil</code> deref")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "alice on fix-nil, opened 2026-01-01 09:30 UTC")
	assert.Contains(t, body, `<span class="build build-pending">pending</span>`)
	assert.Equal(t, 1, store.repos["1296269"].OpenPullRequests)
}

func TestRepoDetail_ProviderFailure(t *testing.T) {
	store := newMockRepoStore(model.Repository{ID: "7", Provider: model.ProviderGitHub, FullPath: "octocat/private"})
	gh := &mockGitHubClient{err: assert.AnError}

	rec := get(setupMux(store, gh), "/dashboard/repos/7", "alice")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to fetch pull requests")
}

func TestRepoDetail_NotFound(t *testing.T) {
	rec := get(setupMux(newMockRepoStore(), nil), "/dashboard/repos/missing", "alice")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Repository not found.")
}

func TestStaticAssets(t *testing.T) {
	rec := get(setupMux(newMockRepoStore(), nil), "/static/shortest.css", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".shell-header")
}
