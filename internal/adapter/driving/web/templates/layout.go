// Package templates holds the shared page chrome rendered as templ components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/shortest/internal/adapter/driving/web/viewmodel"
)

// Writer accumulates the first write error so components can emit markup
// without checking every call.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup as-is.
func (hw *Writer) Raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// Text writes s with HTML escaping.
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Attr writes name="value" with the value escaped, preceded by a space.
func (hw *Writer) Attr(name, value string) {
	hw.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// Href writes an href attribute, replacing unsafe URLs.
func (hw *Writer) Href(url string) {
	hw.Attr("href", string(templ.URL(url)))
}

// Component renders c into the same stream.
func (hw *Writer) Component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Err returns the first write error.
func (hw *Writer) Err() error {
	return hw.err
}

// Layout renders the full HTML document: head, the shell header, then body.
func Layout(title string, shell vm.ShellViewModel, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw(`<title>`)
		hw.Text(title + " | Shortest")
		hw.Raw(`</title><link rel="stylesheet" href="/static/shortest.css"></head><body>`)
		hw.Component(ctx, Header(shell))
		hw.Raw(`<main class="container">`)
		hw.Component(ctx, body)
		hw.Raw(`</main></body></html>`)
		return hw.Err()
	})
}

// Header renders the top bar. Signed-in users get the dashboard logo link,
// the Repositories nav link and their user badge; signed-out users get the
// landing logo link and a sign-in link.
func Header(shell vm.ShellViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<header class="shell-header"><a class="logo"`)
		hw.Href(shell.HomePath())
		hw.Raw(`>Shortest</a>`)

		if shell.SignedIn {
			hw.Raw(`<nav class="shell-nav"><a href="/dashboard/repos">Repositories</a></nav>`)
			hw.Raw(`<span class="user-badge" title="Signed in">`)
			hw.Text(shell.UserLogin)
			hw.Raw(`</span>`)
		} else {
			hw.Raw(`<a class="sign-in"`)
			hw.Href(shell.SignInURL)
			hw.Raw(`>Sign in</a>`)
		}

		hw.Raw(`</header>`)
		return hw.Err()
	})
}
