package model

import (
	"strings"
	"time"
)

// GitHubPullRequest carries the fields read from a GitHub pull request.
// AuthorLogin is empty when GitHub returns no user.
type GitHubPullRequest struct {
	ID          int64
	Number      int
	Title       string
	Draft       bool
	HeadRef     string
	HTMLURL     string
	AuthorLogin string
	BaseRepo    GitHubRepo
	CreatedAt   time.Time
}

// GitHubRepo is the base repository of a GitHub pull request.
type GitHubRepo struct {
	ID         int64
	Name       string
	FullName   string
	OwnerLogin string
}

// GitLabMergeRequest carries the fields read from a GitLab merge request.
type GitLabMergeRequest struct {
	ID             int64
	IID            int
	ProjectID      int64
	Title          string
	WorkInProgress bool
	SourceBranch   string
	WebURL         string
	AuthorUsername string
	CreatedAt      time.Time
}

// RepoPath is a GitHub repository's owner and name.
type RepoPath struct {
	Owner string
	Name  string
}

// FullPath returns the "owner/name" form.
func (p RepoPath) FullPath() string {
	return p.Owner + "/" + p.Name
}

// ParseRepoPath splits an "owner/name" string. Both parts must be non-empty
// and made of letters, digits, '-', '.' or '_'.
func ParseRepoPath(s string) (RepoPath, bool) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || !isRepoPathPart(owner) || !isRepoPathPart(name) {
		return RepoPath{}, false
	}
	return RepoPath{Owner: owner, Name: name}, true
}

func isRepoPathPart(part string) bool {
	if part == "" {
		return false
	}
	for _, ch := range part {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '.', ch == '_':
		default:
			return false
		}
	}
	return true
}
