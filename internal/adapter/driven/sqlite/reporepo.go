package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Add inserts a new repository record. Returns ErrRepoAlreadyExists if a
// record with the same id is already stored.
func (r *RepoRepo) Add(ctx context.Context, repo model.Repository) error {
	const query = `INSERT INTO repositories (id, provider, full_path, open_pull_requests, updated_at, added_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	addedAt := repo.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	updatedAt := repo.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = addedAt
	}

	var fullPath sql.NullString
	if repo.FullPath != "" {
		fullPath = sql.NullString{String: repo.FullPath, Valid: true}
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		repo.ID, string(repo.Provider), fullPath, repo.OpenPullRequests, updatedAt.UTC(), addedAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("add repository %s: %w", repo.ID, driven.ErrRepoAlreadyExists)
		}
		return fmt.Errorf("add repository %s: %w", repo.ID, err)
	}

	return nil
}

// Remove deletes a repository record. Returns ErrRepoNotFound if no record
// has the given id.
func (r *RepoRepo) Remove(ctx context.Context, id string) error {
	const query = `DELETE FROM repositories WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove repository %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove repository %s: %w", id, driven.ErrRepoNotFound)
	}

	return nil
}

// GetByID retrieves a repository record. Returns nil, nil if it does not exist.
func (r *RepoRepo) GetByID(ctx context.Context, id string) (*model.Repository, error) {
	const query = `SELECT id, provider, full_path, open_pull_requests, updated_at, added_at
		FROM repositories WHERE id = ?`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", id, err)
	}

	return repo, nil
}

// ListAll returns all repository records, oldest first.
func (r *RepoRepo) ListAll(ctx context.Context) ([]model.Repository, error) {
	const query = `SELECT id, provider, full_path, open_pull_requests, updated_at, added_at
		FROM repositories ORDER BY added_at, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// SetFullPath stores the "owner/repo" path of a repository. A path that is
// already stored is left untouched.
func (r *RepoRepo) SetFullPath(ctx context.Context, id, fullPath string) error {
	const query = `UPDATE repositories SET full_path = ?
		WHERE id = ? AND (full_path IS NULL OR full_path = '')`

	if _, err := r.db.Writer.ExecContext(ctx, query, fullPath, id); err != nil {
		return fmt.Errorf("set full path for repository %s: %w", id, err)
	}

	return nil
}

// UpdateOpenPullRequests records the latest open change request count.
func (r *RepoRepo) UpdateOpenPullRequests(ctx context.Context, id string, count int, at time.Time) error {
	const query = `UPDATE repositories SET open_pull_requests = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, count, at.UTC(), id); err != nil {
		return fmt.Errorf("update open pull requests for repository %s: %w", id, err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRepository(s scanner) (*model.Repository, error) {
	var repo model.Repository
	var provider string
	var fullPath sql.NullString
	var updatedAt, addedAt string

	err := s.Scan(&repo.ID, &provider, &fullPath, &repo.OpenPullRequests, &updatedAt, &addedAt)
	if err != nil {
		return nil, err
	}

	repo.Provider = model.Provider(provider)
	repo.FullPath = fullPath.String

	repo.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	repo.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}

	return &repo, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
