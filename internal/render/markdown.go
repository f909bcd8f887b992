// Package render turns comment text into sanitised HTML.
package render

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders GFM to HTML and strips anything a commenter should not inject
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdown builds a renderer. Raw HTML in the source is escaped, and images are not allowed.
func NewMarkdown() *Markdown {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithXHTML(),
			),
		),
		policy: policy,
	}
}

// Render converts source. On a conversion failure it falls back to escaped text.
func (m *Markdown) Render(source string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "<p>" + html.EscapeString(source) + "</p>"
	}
	return string(m.policy.SanitizeBytes(buf.Bytes()))
}
