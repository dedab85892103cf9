// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// ShellViewModel holds the header state shared by every page.
type ShellViewModel struct {
	SignedIn  bool
	UserLogin string
	SignInURL string
}

// HomePath is where the logo links: the dashboard when signed in, / otherwise.
func (s ShellViewModel) HomePath() string {
	if s.SignedIn {
		return "/dashboard"
	}
	return "/"
}

// DashboardViewModel holds the summary shown on /dashboard.
type DashboardViewModel struct {
	RepoCount        int
	GitHubRepos      int
	GitLabRepos      int
	OpenPullRequests int
}

// RepoRowViewModel holds presentation-ready data for one connected repository.
type RepoRowViewModel struct {
	ID               string
	Provider         string
	DisplayName      string
	OpenPullRequests int
	UpdatedAt        string // empty when never refreshed
	DetailPath       string
	DeletePath       string
}

// ReposPageViewModel holds the repository list and the connect form state.
type ReposPageViewModel struct {
	Repos     []RepoRowViewModel
	CSRFToken string
	Error     string
}

// ChangeRowViewModel holds presentation-ready data for one open change request.
type ChangeRowViewModel struct {
	Number      int
	TitleHTML   string // sanitized inline HTML
	Author      string
	Branch      string
	IsDraft     bool
	BuildStatus string
	URL         string
	CreatedAt   string
}

// RepoDetailViewModel holds a repository and its live open change requests.
type RepoDetailViewModel struct {
	Repo    RepoRowViewModel
	Changes []ChangeRowViewModel
	Error   string
}
