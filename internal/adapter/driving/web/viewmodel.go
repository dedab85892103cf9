package web

import (
	"net/url"
	"time"

	vm "github.com/ericfisherdev/shortest/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/shortest/internal/domain/model"
)

// displayTimeLayout is the timestamp format shown in tables.
const displayTimeLayout = "2006-01-02 15:04 MST"

// toRepoRowViewModel converts a domain Repository to a RepoRowViewModel.
// GitHub repositories show their owner/name once resolved, everything else the raw id.
func toRepoRowViewModel(repo model.Repository) vm.RepoRowViewModel {
	name := repo.ID
	if repo.FullPath != "" {
		name = repo.FullPath
	}

	var updated string
	if !repo.UpdatedAt.IsZero() {
		updated = repo.UpdatedAt.UTC().Format(displayTimeLayout)
	}

	base := "/dashboard/repos/" + url.PathEscape(repo.ID)

	return vm.RepoRowViewModel{
		ID:               repo.ID,
		Provider:         string(repo.Provider),
		DisplayName:      name,
		OpenPullRequests: repo.OpenPullRequests,
		UpdatedAt:        updated,
		DetailPath:       base,
		DeletePath:       base + "/delete",
	}
}

// toDashboardViewModel summarizes the connected repositories.
func toDashboardViewModel(repos []model.Repository) vm.DashboardViewModel {
	summary := vm.DashboardViewModel{RepoCount: len(repos)}
	for _, repo := range repos {
		switch repo.Provider {
		case model.ProviderGitHub:
			summary.GitHubRepos++
		case model.ProviderGitLab:
			summary.GitLabRepos++
		}
		summary.OpenPullRequests += repo.OpenPullRequests
	}
	return summary
}

// toChangeRowViewModel converts a ChangeRequest to a ChangeRowViewModel.
// The title is rendered as sanitized inline markdown.
func toChangeRowViewModel(cr model.ChangeRequest) vm.ChangeRowViewModel {
	created := cr.CreatedAt
	if t, err := time.Parse(time.RFC3339, cr.CreatedAt); err == nil {
		created = t.UTC().Format(displayTimeLayout)
	}

	return vm.ChangeRowViewModel{
		Number:      cr.Number,
		TitleHTML:   RenderInlineMarkdown(cr.Title),
		Author:      cr.UserLogin,
		Branch:      cr.BranchName,
		IsDraft:     cr.IsDraft,
		BuildStatus: string(cr.BuildStatus),
		URL:         cr.HTMLURL,
		CreatedAt:   created,
	}
}
