package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/shortest/internal/application"
	"github.com/ericfisherdev/shortest/internal/domain/model"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	listPRs     func(ctx context.Context, owner, repo string) ([]model.GitHubPullRequest, error)
	resolvePath func(ctx context.Context, id int64) (model.RepoPath, error)

	listCalls    []string
	resolveCalls []int64
}

func (m *mockGitHubClient) ListOpenPullRequests(ctx context.Context, owner, repo string) ([]model.GitHubPullRequest, error) {
	m.listCalls = append(m.listCalls, owner+"/"+repo)
	if m.listPRs == nil {
		return []model.GitHubPullRequest{}, nil
	}
	return m.listPRs(ctx, owner, repo)
}

func (m *mockGitHubClient) ResolveRepositoryPath(ctx context.Context, id int64) (model.RepoPath, error) {
	m.resolveCalls = append(m.resolveCalls, id)
	if m.resolvePath == nil {
		return model.RepoPath{}, errors.New("not found")
	}
	return m.resolvePath(ctx, id)
}

type mockGitLabClient struct {
	listMRs func(ctx context.Context, projectID string) ([]model.GitLabMergeRequest, error)

	listCalls []string
}

func (m *mockGitLabClient) ListOpenMergeRequests(ctx context.Context, projectID string) ([]model.GitLabMergeRequest, error) {
	m.listCalls = append(m.listCalls, projectID)
	if m.listMRs == nil {
		return []model.GitLabMergeRequest{}, nil
	}
	return m.listMRs(ctx, projectID)
}

type countCall struct {
	ID    string
	Count int
	At    time.Time
}

type mockRepoStore struct {
	repos map[string]*model.Repository

	getErr      error
	setPathErr  error
	updateErr   error
	pathWrites  map[string]string
	countWrites []countCall
}

func newMockRepoStore(repos ...model.Repository) *mockRepoStore {
	m := &mockRepoStore{
		repos:      make(map[string]*model.Repository),
		pathWrites: make(map[string]string),
	}
	for i := range repos {
		m.repos[repos[i].ID] = &repos[i]
	}
	return m
}

func (m *mockRepoStore) Add(_ context.Context, repo model.Repository) error {
	m.repos[repo.ID] = &repo
	return nil
}

func (m *mockRepoStore) Remove(_ context.Context, id string) error {
	delete(m.repos, id)
	return nil
}

func (m *mockRepoStore) GetByID(_ context.Context, id string) (*model.Repository, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	repo, ok := m.repos[id]
	if !ok {
		return nil, nil
	}
	cp := *repo
	return &cp, nil
}

func (m *mockRepoStore) ListAll(_ context.Context) ([]model.Repository, error) {
	result := make([]model.Repository, 0, len(m.repos))
	for _, r := range m.repos {
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockRepoStore) SetFullPath(_ context.Context, id, fullPath string) error {
	if m.setPathErr != nil {
		return m.setPathErr
	}
	m.pathWrites[id] = fullPath
	if repo, ok := m.repos[id]; ok && repo.FullPath == "" {
		repo.FullPath = fullPath
	}
	return nil
}

func (m *mockRepoStore) UpdateOpenPullRequests(_ context.Context, id string, count int, at time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.countWrites = append(m.countWrites, countCall{ID: id, Count: count, At: at})
	if repo, ok := m.repos[id]; ok {
		repo.OpenPullRequests = count
		repo.UpdatedAt = at
	}
	return nil
}

// --- Helpers ---

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(gh *mockGitHubClient, gl *mockGitLabClient, store *mockRepoStore) *application.ChangeRequestService {
	// Typed nil pointers would make non-nil interfaces, so only set what was given.
	clients := application.NewClientProvider(nil, nil)
	if gh != nil {
		clients.ReplaceGitHub(gh)
	}
	if gl != nil {
		clients.ReplaceGitLab(gl)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return application.NewChangeRequestService(clients, store, logger,
		application.WithClock(func() time.Time { return fixedNow }))
}

func samplePullRequests() []model.GitHubPullRequest {
	base := model.GitHubRepo{ID: 1296269, Name: "hello-world", FullName: "octocat/hello-world", OwnerLogin: "octocat"}
	return []model.GitHubPullRequest{
		{
			ID: 1001, Number: 42, Title: "Add feature X", HeadRef: "feature-x",
			HTMLURL: "https://github.com/octocat/hello-world/pull/42", AuthorLogin: "alice",
			BaseRepo: base, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: 1002, Number: 43, Title: "Rework", Draft: true, HeadRef: "rework",
			HTMLURL: "https://github.com/octocat/hello-world/pull/43",
			BaseRepo: base, CreatedAt: time.Date(2026, 1, 2, 8, 30, 0, 0, time.UTC),
		},
	}
}

// --- Provider resolution ---

func TestListOpenChanges_HintAndStoredProviderAreEquivalent(t *testing.T) {
	gh := &mockGitHubClient{listPRs: func(_ context.Context, _, _ string) ([]model.GitHubPullRequest, error) {
		return samplePullRequests(), nil
	}}
	store := newMockRepoStore(model.Repository{ID: "1296269", Provider: model.ProviderGitHub, FullPath: "octocat/hello-world"})
	svc := newService(gh, nil, store)

	fromHint, err := svc.ListOpenChanges(context.Background(), "1296269", "github")
	require.NoError(t, err)

	fromRecord, err := svc.ListOpenChanges(context.Background(), "1296269", "")
	require.NoError(t, err)

	assert.Equal(t, fromHint, fromRecord)
	assert.Equal(t, []string{"octocat/hello-world", "octocat/hello-world"}, gh.listCalls)
}

func TestListOpenChanges_HintOverridesStoredProvider(t *testing.T) {
	gh := &mockGitHubClient{}
	gl := &mockGitLabClient{}
	store := newMockRepoStore(model.Repository{ID: "42", Provider: model.ProviderGitHub, FullPath: "octocat/hello-world"})
	svc := newService(gh, gl, store)

	_, err := svc.ListOpenChanges(context.Background(), "42", "gitlab")
	require.NoError(t, err)

	assert.Equal(t, []string{"42"}, gl.listCalls)
	assert.Empty(t, gh.listCalls)
}

func TestListOpenChanges_InvalidProvider(t *testing.T) {
	store := newMockRepoStore()
	svc := newService(&mockGitHubClient{}, &mockGitLabClient{}, store)

	_, err := svc.ListOpenChanges(context.Background(), "1", "bitbucket")

	require.ErrorIs(t, err, application.ErrInvalidProvider)
	assert.Empty(t, store.countWrites)
}

func TestListOpenChanges_InvalidStoredProvider(t *testing.T) {
	store := newMockRepoStore(model.Repository{ID: "1", Provider: "svn"})
	svc := newService(&mockGitHubClient{}, &mockGitLabClient{}, store)

	_, err := svc.ListOpenChanges(context.Background(), "1", "")

	require.ErrorIs(t, err, application.ErrInvalidProvider)
}

func TestListOpenChanges_MissingProvider(t *testing.T) {
	store := newMockRepoStore()
	svc := newService(&mockGitHubClient{}, &mockGitLabClient{}, store)

	_, err := svc.ListOpenChanges(context.Background(), "unknown-repo", "")

	require.ErrorIs(t, err, application.ErrMissingProvider)
	assert.Empty(t, store.countWrites)
}

func TestListOpenChanges_StoreLookupFailure(t *testing.T) {
	store := newMockRepoStore()
	store.getErr = errors.New("database is locked")
	svc := newService(&mockGitHubClient{}, &mockGitLabClient{}, store)

	_, err := svc.ListOpenChanges(context.Background(), "1", "")

	require.Error(t, err)
	assert.NotErrorIs(t, err, application.ErrMissingProvider)
	assert.Contains(t, err.Error(), "database is locked")
}

// --- GitHub ---

func TestListOpenChanges_GitHubMapping(t *testing.T) {
	gh := &mockGitHubClient{listPRs: func(_ context.Context, _, _ string) ([]model.GitHubPullRequest, error) {
		return samplePullRequests(), nil
	}}
	store := newMockRepoStore(model.Repository{ID: "1296269", Provider: model.ProviderGitHub, FullPath: "octocat/hello-world"})
	svc := newService(gh, nil, store)

	changes, err := svc.ListOpenChanges(context.Background(), "1296269", "")
	require.NoError(t, err)
	require.Len(t, changes, 2)

	repoID := int64(1296269)
	assert.Equal(t, model.ChangeRequest{
		ID:          1001,
		Number:      42,
		Title:       "Add feature X",
		BuildStatus: model.BuildStatusPending,
		IsDraft:     false,
		BranchName:  "feature-x",
		Source:      model.ProviderGitHub,
		Repository: model.ChangeRepository{
			ID:         &repoID,
			Name:       "hello-world",
			FullName:   "octocat/hello-world",
			OwnerLogin: "octocat",
		},
		HTMLURL:   "https://github.com/octocat/hello-world/pull/42",
		UserLogin: "alice",
		CreatedAt: "2026-01-01T00:00:00Z",
	}, changes[0])

	assert.True(t, changes[1].IsDraft)
	assert.Equal(t, model.UnknownAuthor, changes[1].UserLogin)
	assert.Equal(t, "2026-01-02T08:30:00Z", changes[1].CreatedAt)
	assert.Empty(t, gh.resolveCalls, "cached full path skips resolution")
}

func TestListOpenChanges_GitHubResolvesAndCachesPath(t *testing.T) {
	gh := &mockGitHubClient{
		resolvePath: func(_ context.Context, id int64) (model.RepoPath, error) {
			return model.RepoPath{Owner: "octocat", Name: "hello-world"}, nil
		},
	}
	store := newMockRepoStore(model.Repository{ID: "1296269", Provider: model.ProviderGitHub})
	svc := newService(gh, nil, store)

	_, err := svc.ListOpenChanges(context.Background(), "1296269", "")
	require.NoError(t, err)
	_, err = svc.ListOpenChanges(context.Background(), "1296269", "")
	require.NoError(t, err)

	assert.Equal(t, []int64{1296269}, gh.resolveCalls, "second call uses the cached path")
	assert.Equal(t, "octocat/hello-world", store.pathWrites["1296269"])
	assert.Equal(t, []string{"octocat/hello-world", "octocat/hello-world"}, gh.listCalls)
}

func TestListOpenChanges_GitHubPathWriteFailureIsNotFatal(t *testing.T) {
	gh := &mockGitHubClient{
		resolvePath: func(_ context.Context, _ int64) (model.RepoPath, error) {
			return model.RepoPath{Owner: "octocat", Name: "hello-world"}, nil
		},
		listPRs: func(_ context.Context, _, _ string) ([]model.GitHubPullRequest, error) {
			return samplePullRequests(), nil
		},
	}
	store := newMockRepoStore(model.Repository{ID: "1296269", Provider: model.ProviderGitHub})
	store.setPathErr = errors.New("disk full")
	svc := newService(gh, nil, store)

	changes, err := svc.ListOpenChanges(context.Background(), "1296269", "")

	require.NoError(t, err)
	assert.Len(t, changes, 2)
	require.Len(t, store.countWrites, 1)
	assert.Equal(t, 2, store.countWrites[0].Count)
}

func TestListOpenChanges_GitHubResolveFailure(t *testing.T) {
	gh := &mockGitHubClient{
		resolvePath: func(_ context.Context, _ int64) (model.RepoPath, error) {
			return model.RepoPath{}, errors.New("404 Not Found")
		},
	}
	store := newMockRepoStore(model.Repository{ID: "99", Provider: model.ProviderGitHub})
	svc := newService(gh, nil, store)

	_, err := svc.ListOpenChanges(context.Background(), "99", "github")

	require.ErrorIs(t, err, application.ErrRepoPathUnresolved)
	assert.Equal(t, []int64{99}, gh.resolveCalls)
	assert.Empty(t, store.pathWrites, "full path must not be written")
	assert.Empty(t, store.countWrites)
	assert.Empty(t, gh.listCalls)
}

func TestListOpenChanges_GitHubNonNumericID(t *testing.T) {
	gh := &mockGitHubClient{}
	store := newMockRepoStore()
	svc := newService(gh, nil, store)

	_, err := svc.ListOpenChanges(context.Background(), "octocat", "github")

	require.ErrorIs(t, err, application.ErrRepoPathUnresolved)
	assert.Empty(t, gh.resolveCalls)
}

func TestListOpenChanges_GitHubListFailure(t *testing.T) {
	gh := &mockGitHubClient{listPRs: func(_ context.Context, _, _ string) ([]model.GitHubPullRequest, error) {
		return nil, errors.New("401 Bad credentials")
	}}
	store := newMockRepoStore(model.Repository{ID: "7", Provider: model.ProviderGitHub, FullPath: "octocat/private"})
	svc := newService(gh, nil, store)

	_, err := svc.ListOpenChanges(context.Background(), "7", "")

	require.ErrorIs(t, err, application.ErrPullRequestsUnavailable)
	assert.Empty(t, store.countWrites)
}

func TestListOpenChanges_GitHubClientMissing(t *testing.T) {
	store := newMockRepoStore(model.Repository{ID: "7", Provider: model.ProviderGitHub})
	svc := newService(nil, nil, store)

	_, err := svc.ListOpenChanges(context.Background(), "7", "")

	require.ErrorIs(t, err, application.ErrRepoPathUnresolved)
}

// --- GitLab ---

func TestListOpenChanges_GitLabEmptyProject(t *testing.T) {
	gl := &mockGitLabClient{}
	store := newMockRepoStore(model.Repository{ID: "42", Provider: model.ProviderGitLab})
	svc := newService(nil, gl, store)

	changes, err := svc.ListOpenChanges(context.Background(), "42", "gitlab")

	require.NoError(t, err)
	assert.NotNil(t, changes)
	assert.Empty(t, changes)
	assert.Equal(t, []string{"42"}, gl.listCalls)
	assert.Equal(t, []countCall{{ID: "42", Count: 0, At: fixedNow}}, store.countWrites)
}

func TestListOpenChanges_GitLabMapping(t *testing.T) {
	gl := &mockGitLabClient{listMRs: func(_ context.Context, _ string) ([]model.GitLabMergeRequest, error) {
		return []model.GitLabMergeRequest{
			{
				ID: 5001, IID: 7, ProjectID: 42, Title: "Draft: tidy", WorkInProgress: true,
				SourceBranch: "tidy", WebURL: "https://gitlab.com/group/proj/-/merge_requests/7",
				AuthorUsername: "bob", CreatedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
			},
			{ID: 5002, IID: 8, ProjectID: 42, Title: "No author"},
		}, nil
	}}
	store := newMockRepoStore(model.Repository{ID: "42", Provider: model.ProviderGitLab})
	svc := newService(nil, gl, store)

	changes, err := svc.ListOpenChanges(context.Background(), "42", "")
	require.NoError(t, err)
	require.Len(t, changes, 2)

	repoID := int64(42)
	first := changes[0]
	assert.Equal(t, int64(5001), first.ID)
	assert.Equal(t, 7, first.Number)
	assert.True(t, first.IsDraft)
	assert.Equal(t, "tidy", first.BranchName)
	assert.Equal(t, model.ProviderGitLab, first.Source)
	assert.Equal(t, model.BuildStatusPending, first.BuildStatus)
	assert.Equal(t, model.ChangeRepository{ID: &repoID, Name: "42", FullName: "42", OwnerLogin: "bob"}, first.Repository)
	assert.Equal(t, "bob", first.UserLogin)
	assert.Equal(t, "2026-02-03T04:05:06Z", first.CreatedAt)

	assert.False(t, changes[1].IsDraft)
	assert.Equal(t, model.UnknownAuthor, changes[1].UserLogin)
}

func TestListOpenChanges_GitLabNonNumericID(t *testing.T) {
	gl := &mockGitLabClient{listMRs: func(_ context.Context, _ string) ([]model.GitLabMergeRequest, error) {
		return []model.GitLabMergeRequest{{ID: 1, IID: 1, ProjectID: 42, AuthorUsername: "bob"}}, nil
	}}
	svc := newService(nil, gl, newMockRepoStore())

	changes, err := svc.ListOpenChanges(context.Background(), "group%2Fproj", "gitlab")

	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Repository.ID)
	assert.Equal(t, "42", changes[0].Repository.Name)
}

func TestListOpenChanges_GitLabListFailure(t *testing.T) {
	gl := &mockGitLabClient{listMRs: func(_ context.Context, _ string) ([]model.GitLabMergeRequest, error) {
		return nil, errors.New("404 Project Not Found")
	}}
	store := newMockRepoStore()
	svc := newService(nil, gl, store)

	_, err := svc.ListOpenChanges(context.Background(), "42", "gitlab")

	require.ErrorIs(t, err, application.ErrMergeRequestsUnavailable)
	assert.Empty(t, store.countWrites)
}

// --- Count persistence ---

func TestListOpenChanges_RepeatedCallsAreIdempotent(t *testing.T) {
	gh := &mockGitHubClient{listPRs: func(_ context.Context, _, _ string) ([]model.GitHubPullRequest, error) {
		return samplePullRequests(), nil
	}}
	store := newMockRepoStore(model.Repository{ID: "1296269", Provider: model.ProviderGitHub, FullPath: "octocat/hello-world"})
	svc := newService(gh, nil, store)

	first, err := svc.ListOpenChanges(context.Background(), "1296269", "")
	require.NoError(t, err)
	second, err := svc.ListOpenChanges(context.Background(), "1296269", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, store.countWrites, 2)
	for _, call := range store.countWrites {
		assert.Equal(t, len(first), call.Count)
		assert.Equal(t, fixedNow, call.At)
	}
	assert.Equal(t, 2, store.repos["1296269"].OpenPullRequests)
}

func TestListOpenChanges_CountWriteFailure(t *testing.T) {
	store := newMockRepoStore(model.Repository{ID: "42", Provider: model.ProviderGitLab})
	store.updateErr = errors.New("readonly database")
	svc := newService(nil, &mockGitLabClient{}, store)

	_, err := svc.ListOpenChanges(context.Background(), "42", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record open pull request count")
}
