package model

// BuildStatus is the CI state reported for a change request.
type BuildStatus string

// BuildStatusPending is reported for every change request; no CI lookup is performed.
const BuildStatusPending BuildStatus = "pending"

// UnknownAuthor is the login reported when the provider omits the author.
const UnknownAuthor = "Unknown"

// ChangeRequest is the provider-neutral view of an open pull request (GitHub)
// or merge request (GitLab). It is built fresh for every listing.
type ChangeRequest struct {
	ID          int64
	Number      int
	Title       string
	BuildStatus BuildStatus
	IsDraft     bool
	BranchName  string
	Source      Provider
	Repository  ChangeRepository
	HTMLURL     string
	UserLogin   string
	CreatedAt   string
}

// ChangeRepository describes the repository a change request belongs to.
// ID is nil when the provider gives no numeric id.
type ChangeRepository struct {
	ID         *int64
	Name       string
	FullName   string
	OwnerLogin string
}
