// Package pages holds the page bodies of the Authenticated Shell.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/shortest/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/shortest/internal/adapter/driving/web/viewmodel"
)

// Landing renders the public entry page.
func Landing(shell vm.ShellViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := templates.NewWriter(w)
		hw.Raw(`<section class="landing"><h1>Open pull requests, one place.</h1>`)
		hw.Raw(`<p>Connect GitHub and GitLab repositories and see what is waiting for review.</p>`)
		if shell.SignedIn {
			hw.Raw(`<a class="button" href="/dashboard">Go to dashboard</a>`)
		} else {
			hw.Raw(`<a class="button"`)
			hw.Href(shell.SignInURL)
			hw.Raw(`>Sign in to get started</a>`)
		}
		hw.Raw(`</section>`)
		return hw.Err()
	})
}

// Dashboard renders the signed-in overview.
func Dashboard(summary vm.DashboardViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := templates.NewWriter(w)
		hw.Raw(`<h1>Dashboard</h1><dl class="summary">`)
		stat(hw, "Repositories", summary.RepoCount)
		stat(hw, "GitHub", summary.GitHubRepos)
		stat(hw, "GitLab", summary.GitLabRepos)
		stat(hw, "Open pull requests", summary.OpenPullRequests)
		hw.Raw(`</dl>`)
		if summary.RepoCount == 0 {
			hw.Raw(`<p class="empty">No repositories yet. <a href="/dashboard/repos">Connect one</a>.</p>`)
		}
		return hw.Err()
	})
}

func stat(hw *templates.Writer, label string, value int) {
	hw.Raw(`<div><dt>`)
	hw.Text(label)
	hw.Raw(`</dt><dd>`)
	hw.Text(strconv.Itoa(value))
	hw.Raw(`</dd></div>`)
}

// Repos renders the connected repositories and the connect form.
func Repos(page vm.ReposPageViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := templates.NewWriter(w)
		hw.Raw(`<h1>Repositories</h1>`)

		if page.Error != "" {
			hw.Raw(`<p class="error" role="alert">`)
			hw.Text(page.Error)
			hw.Raw(`</p>`)
		}

		if len(page.Repos) == 0 {
			hw.Raw(`<p class="empty">No repositories connected.</p>`)
		} else {
			hw.Raw(`<table class="repos"><thead><tr><th>Repository</th><th>Provider</th>`)
			hw.Raw(`<th>Open</th><th>Updated</th><th></th></tr></thead><tbody>`)
			for _, repo := range page.Repos {
				hw.Raw(`<tr><td><a`)
				hw.Href(repo.DetailPath)
				hw.Raw(`>`)
				hw.Text(repo.DisplayName)
				hw.Raw(`</a></td><td>`)
				hw.Text(repo.Provider)
				hw.Raw(`</td><td>`)
				hw.Text(strconv.Itoa(repo.OpenPullRequests))
				hw.Raw(`</td><td>`)
				if repo.UpdatedAt == "" {
					hw.Raw(`never`)
				} else {
					hw.Text(repo.UpdatedAt)
				}
				hw.Raw(`</td><td><form method="post"`)
				hw.Attr("action", repo.DeletePath)
				hw.Raw(`>`)
				csrfField(hw, page.CSRFToken)
				hw.Raw(`<button type="submit">Remove</button></form></td></tr>`)
			}
			hw.Raw(`</tbody></table>`)
		}

		hw.Raw(`<h2>Connect a repository</h2><form method="post" action="/dashboard/repos" class="connect">`)
		csrfField(hw, page.CSRFToken)
		hw.Raw(`<label>Provider <select name="provider"><option value="github">GitHub</option>`)
		hw.Raw(`<option value="gitlab">GitLab</option></select></label>`)
		hw.Raw(`<label>Repository or project id <input name="id" required></label>`)
		hw.Raw(`<label>owner/name (GitHub, optional) <input name="full_path"></label>`)
		hw.Raw(`<button type="submit">Connect</button></form>`)
		return hw.Err()
	})
}

func csrfField(hw *templates.Writer, token string) {
	hw.Raw(`<input type="hidden" name="csrf_token"`)
	hw.Attr("value", token)
	hw.Raw(`>`)
}

// RepoDetail renders one repository with its open change requests.
func RepoDetail(detail vm.RepoDetailViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := templates.NewWriter(w)
		hw.Raw(`<h1>`)
		hw.Text(detail.Repo.DisplayName)
		hw.Raw(` <small>`)
		hw.Text(detail.Repo.Provider)
		hw.Raw(`</small></h1>`)

		if detail.Error != "" {
			hw.Raw(`<p class="error" role="alert">`)
			hw.Text(detail.Error)
			hw.Raw(`</p>`)
			return hw.Err()
		}

		if len(detail.Changes) == 0 {
			hw.Raw(`<p class="empty">No open pull requests.</p>`)
			return hw.Err()
		}

		hw.Raw(`<ul class="changes">`)
		for _, cr := range detail.Changes {
			hw.Raw(`<li class="change`)
			if cr.IsDraft {
				hw.Raw(` draft`)
			}
			hw.Raw(`"><a class="title"`)
			hw.Href(cr.URL)
			hw.Raw(`>#`)
			hw.Text(strconv.Itoa(cr.Number))
			hw.Raw(` `)
			hw.Raw(cr.TitleHTML)
			hw.Raw(`</a>`)
			if cr.IsDraft {
				hw.Raw(` <span class="badge">Draft</span>`)
			}
			hw.Raw(`<span class="meta">`)
			hw.Text(cr.Author)
			hw.Raw(` on `)
			hw.Text(cr.Branch)
			hw.Raw(`, opened `)
			hw.Text(cr.CreatedAt)
			hw.Raw(`</span><span class="build build-`)
			hw.Text(cr.BuildStatus)
			hw.Raw(`">`)
			hw.Text(cr.BuildStatus)
			hw.Raw(`</span></li>`)
		}
		hw.Raw(`</ul>`)
		return hw.Err()
	})
}

// NotFound renders a missing-page message.
func NotFound(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := templates.NewWriter(w)
		hw.Raw(`<h1>Not found</h1><p>`)
		hw.Text(message)
		hw.Raw(`</p>`)
		return hw.Err()
	})
}
