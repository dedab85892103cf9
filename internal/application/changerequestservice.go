package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// Errors returned by ChangeRequestService.ListOpenChanges. Upstream failures
// wrap both the sentinel and the adapter error.
var (
	// ErrMissingProvider means neither the request nor the stored record names a provider.
	ErrMissingProvider = errors.New("provider not specified")

	// ErrInvalidProvider means the resolved provider is neither github nor gitlab.
	ErrInvalidProvider = errors.New("unsupported git provider")

	// ErrRepoPathUnresolved means the GitHub owner/repo path could not be looked up.
	ErrRepoPathUnresolved = errors.New("github repository path could not be resolved")

	// ErrPullRequestsUnavailable means the GitHub pull request listing failed.
	ErrPullRequestsUnavailable = errors.New("github pull requests could not be fetched")

	// ErrMergeRequestsUnavailable means the GitLab merge request listing failed.
	ErrMergeRequestsUnavailable = errors.New("gitlab merge requests could not be fetched")

	errClientNotConfigured = errors.New("client not configured")
)

// ChangeRequestService lists a repository's open pull/merge requests from its
// provider and records the open count on the repository record.
type ChangeRequestService struct {
	repoStore driven.RepoStore
	sources   map[model.Provider]changeSource
	logger    *slog.Logger
	now       func() time.Time
}

// ServiceOption customizes a ChangeRequestService.
type ServiceOption func(*ChangeRequestService)

// WithClock overrides the time source used for the updated_at timestamp.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ChangeRequestService) {
		s.now = now
	}
}

// NewChangeRequestService creates a ChangeRequestService that reads provider
// clients from clients on every call.
func NewChangeRequestService(
	clients *ClientProvider,
	repoStore driven.RepoStore,
	logger *slog.Logger,
	opts ...ServiceOption,
) *ChangeRequestService {
	s := &ChangeRequestService{
		repoStore: repoStore,
		logger:    logger,
		now:       time.Now,
	}
	s.sources = map[model.Provider]changeSource{
		model.ProviderGitHub: &githubSource{clients: clients, repoStore: repoStore, logger: logger},
		model.ProviderGitLab: &gitlabSource{clients: clients},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListOpenChanges returns the open change requests of repositoryID in the
// order the provider returns them. providerHint, when non-empty, takes
// precedence over the provider stored on the repository record.
//
// On success the record's open_pull_requests and updated_at are overwritten.
// Nothing is retried.
func (s *ChangeRequestService) ListOpenChanges(ctx context.Context, repositoryID, providerHint string) ([]model.ChangeRequest, error) {
	var record *model.Repository

	provider := model.Provider(providerHint)
	if provider == "" {
		rec, err := s.repoStore.GetByID(ctx, repositoryID)
		if err != nil {
			return nil, fmt.Errorf("look up repository %s: %w", repositoryID, err)
		}
		record = rec
		if rec != nil {
			provider = rec.Provider
		}
	}

	if provider == "" {
		return nil, ErrMissingProvider
	}
	if !provider.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}

	rows, err := s.sources[provider].fetch(ctx, repositoryID, record)
	if err != nil {
		return nil, err
	}

	changes := normalize(provider, rows)

	if err := s.repoStore.UpdateOpenPullRequests(ctx, repositoryID, len(changes), s.now().UTC()); err != nil {
		return nil, fmt.Errorf("record open pull request count: %w", err)
	}

	s.logger.Debug("listed open change requests",
		"repository_id", repositoryID,
		"provider", provider,
		"count", len(changes),
	)

	return changes, nil
}
