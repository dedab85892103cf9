package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// changeRow is one open change request as read from a provider, before the
// dashboard defaults are applied.
type changeRow struct {
	ID        int64
	Number    int
	Title     string
	Draft     bool
	Branch    string
	Repo      model.ChangeRepository
	URL       string
	Author    string
	CreatedAt time.Time
}

// changeSource lists open change requests for one provider. record is the
// stored repository record when the caller already loaded it, nil otherwise.
type changeSource interface {
	fetch(ctx context.Context, repositoryID string, record *model.Repository) ([]changeRow, error)
}

// normalize turns provider rows into the canonical shape. Every change
// request reports a pending build and a missing author reads "Unknown".
func normalize(source model.Provider, rows []changeRow) []model.ChangeRequest {
	changes := make([]model.ChangeRequest, 0, len(rows))
	for _, row := range rows {
		login := row.Author
		if login == "" {
			login = model.UnknownAuthor
		}

		changes = append(changes, model.ChangeRequest{
			ID:          row.ID,
			Number:      row.Number,
			Title:       row.Title,
			BuildStatus: model.BuildStatusPending,
			IsDraft:     row.Draft,
			BranchName:  row.Branch,
			Source:      source,
			Repository:  row.Repo,
			HTMLURL:     row.URL,
			UserLogin:   login,
			CreatedAt:   row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return changes
}

// githubSource resolves the owner/repo path of a repository (cached on the
// record) and lists its open pull requests.
type githubSource struct {
	clients   *ClientProvider
	repoStore driven.RepoStore
	logger    *slog.Logger
}

func (g *githubSource) fetch(ctx context.Context, repositoryID string, record *model.Repository) ([]changeRow, error) {
	if record == nil {
		rec, err := g.repoStore.GetByID(ctx, repositoryID)
		if err != nil {
			return nil, fmt.Errorf("look up repository %s: %w", repositoryID, err)
		}
		record = rec
	}

	var fullPath string
	if record != nil {
		fullPath = record.FullPath
	}

	if fullPath == "" {
		path, err := g.resolvePath(ctx, repositoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRepoPathUnresolved, err)
		}
		fullPath = path.FullPath()

		if err := g.repoStore.SetFullPath(ctx, repositoryID, fullPath); err != nil {
			g.logger.Warn("failed to cache repository path",
				"repository_id", repositoryID,
				"full_path", fullPath,
				"error", err,
			)
		}
	}

	path, ok := model.ParseRepoPath(fullPath)
	if !ok {
		return nil, fmt.Errorf("%w: malformed repository path %q", ErrPullRequestsUnavailable, fullPath)
	}

	client := g.clients.GitHub()
	if client == nil {
		return nil, fmt.Errorf("%w: github %w", ErrPullRequestsUnavailable, errClientNotConfigured)
	}

	prs, err := client.ListOpenPullRequests(ctx, path.Owner, path.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPullRequestsUnavailable, err)
	}

	rows := make([]changeRow, 0, len(prs))
	for _, pr := range prs {
		repoID := pr.BaseRepo.ID
		rows = append(rows, changeRow{
			ID:     pr.ID,
			Number: pr.Number,
			Title:  pr.Title,
			Draft:  pr.Draft,
			Branch: pr.HeadRef,
			Repo: model.ChangeRepository{
				ID:         &repoID,
				Name:       pr.BaseRepo.Name,
				FullName:   pr.BaseRepo.FullName,
				OwnerLogin: pr.BaseRepo.OwnerLogin,
			},
			URL:       pr.HTMLURL,
			Author:    pr.AuthorLogin,
			CreatedAt: pr.CreatedAt,
		})
	}
	return rows, nil
}

// resolvePath asks GitHub for the owner and name behind a numeric repository id.
func (g *githubSource) resolvePath(ctx context.Context, repositoryID string) (model.RepoPath, error) {
	id, err := strconv.ParseInt(repositoryID, 10, 64)
	if err != nil {
		return model.RepoPath{}, fmt.Errorf("repository id %q is not numeric: %w", repositoryID, err)
	}

	client := g.clients.GitHub()
	if client == nil {
		return model.RepoPath{}, fmt.Errorf("github %w", errClientNotConfigured)
	}

	return client.ResolveRepositoryPath(ctx, id)
}

// gitlabSource lists the opened merge requests of the project whose id is the
// repository id.
type gitlabSource struct {
	clients *ClientProvider
}

func (g *gitlabSource) fetch(ctx context.Context, repositoryID string, _ *model.Repository) ([]changeRow, error) {
	client := g.clients.GitLab()
	if client == nil {
		return nil, fmt.Errorf("%w: gitlab %w", ErrMergeRequestsUnavailable, errClientNotConfigured)
	}

	mrs, err := client.ListOpenMergeRequests(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMergeRequestsUnavailable, err)
	}

	// GitLab merge requests carry no repository block; the dashboard reports
	// the project id in its place and the author as owner.
	var repoID *int64
	if id, err := strconv.ParseInt(repositoryID, 10, 64); err == nil {
		repoID = &id
	}

	rows := make([]changeRow, 0, len(mrs))
	for _, mr := range mrs {
		projectID := strconv.FormatInt(mr.ProjectID, 10)
		rows = append(rows, changeRow{
			ID:     mr.ID,
			Number: mr.IID,
			Title:  mr.Title,
			Draft:  mr.WorkInProgress,
			Branch: mr.SourceBranch,
			Repo: model.ChangeRepository{
				ID:         repoID,
				Name:       projectID,
				FullName:   projectID,
				OwnerLogin: mr.AuthorUsername,
			},
			URL:       mr.WebURL,
			Author:    mr.AuthorUsername,
			CreatedAt: mr.CreatedAt,
		})
	}
	return rows, nil
}
