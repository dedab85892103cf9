package web

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// RenderInlineMarkdown renders a single-line string such as a pull request
// title. The paragraph wrapper goldmark adds is removed so the result can sit
// inside a table cell or link.
func RenderInlineMarkdown(src string) string {
	rendered := strings.TrimSpace(RenderMarkdown(src))
	if strings.HasPrefix(rendered, "<p>") && strings.HasSuffix(rendered, "</p>") &&
		strings.Count(rendered, "<p>") == 1 {
		rendered = strings.TrimSuffix(strings.TrimPrefix(rendered, "<p>"), "</p>")
	}
	return rendered
}
