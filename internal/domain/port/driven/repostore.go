package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/shortest/internal/domain/model"
)

// Sentinel errors returned by RepoStore implementations.
var (
	// ErrRepoNotFound indicates the requested repository does not exist.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrRepoAlreadyExists indicates a repository with the same id already exists.
	ErrRepoAlreadyExists = errors.New("repository already exists")
)

// RepoStore defines the driven port for repository record persistence.
// GetByID returns nil, nil when no record exists.
// SetFullPath only writes when no path is stored yet.
// SetFullPath and UpdateOpenPullRequests are no-ops for unknown ids.
type RepoStore interface {
	Add(ctx context.Context, repo model.Repository) error
	Remove(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Repository, error)
	ListAll(ctx context.Context) ([]model.Repository, error)
	SetFullPath(ctx context.Context, id, fullPath string) error
	UpdateOpenPullRequests(ctx context.Context, id string, count int, at time.Time) error
}
