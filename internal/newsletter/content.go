package newsletter

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"mathblog/internal/domain"
	"mathblog/pkg/mathtext"
)

// Content is a composed subject and HTML body ready for dispatch.
type Content struct {
	Subject string
	HTML    string
}

// ContentBuilder composes newsletter emails from posts or custom bodies.
// Math spans are typeset before Markdown conversion so they survive
// Markdown's own character handling.
type ContentBuilder struct {
	md      goldmark.Markdown
	math    *mathtext.Renderer
	siteURL string
}

// NewContentBuilder creates a builder. Math markup produced by the engine is
// trusted output, so the Markdown renderer passes raw HTML through.
func NewContentBuilder(engine mathtext.Typesetter, siteURL string) *ContentBuilder {
	return &ContentBuilder{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		),
		math:    mathtext.NewRenderer(engine),
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

const footerText = "You received this because you subscribed to our newsletter."

var postShell = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>body { font-family: system-ui, sans-serif; } math { font-size: 1.1em; }</style></head>
<body style="font-family: system-ui, sans-serif; max-width: 600px; margin: 0 auto; padding: 1.5em;">
  <h1 style="font-size: 1.5em; font-weight: 600;">{{.Title}}</h1>
  {{.ExcerptHTML}}<p style="margin: 2.5em 0 2em;"><a href="{{.PostURL}}" style="color: #2563eb; text-decoration: underline; font-size: 1.125em;">Read more &rarr;</a></p>
  <p style="margin-top: 2em; font-size: 0.875em; color: #6b7280;">{{.Footer}}</p>
</body>
</html>`))

var customShell = template.Must(template.New("custom").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: system-ui, sans-serif; max-width: 600px; margin: 0 auto; padding: 1.5em;">
  <div style="line-height: 1.6;">{{.BodyHTML}}</div>
  <p style="margin-top: 2em; font-size: 0.875em; color: #6b7280;">{{.Footer}}</p>
</body>
</html>`))

// PostURL returns the canonical URL for a post.
func (b *ContentBuilder) PostURL(post domain.Post) string {
	return b.siteURL + "/posts/" + post.Slug
}

// BuildForPost composes a post-derived email: subject is the post title, the
// body embeds the excerpt (math then Markdown rendered) and a read-more link.
// A post without an excerpt gets no excerpt block at all.
func (b *ContentBuilder) BuildForPost(post domain.Post) (Content, error) {
	var excerptHTML template.HTML
	if post.Excerpt != "" {
		rendered, err := b.markdownToHTML(b.math.Render(post.Excerpt))
		if err != nil {
			return Content{}, fmt.Errorf("render excerpt: %w", err)
		}
		excerptHTML = template.HTML(
			`<div style="margin: 1em 0; color: #374151; line-height: 1.6;">` + rendered + "</div>\n  ")
	}

	var buf bytes.Buffer
	err := postShell.Execute(&buf, map[string]any{
		"Title":       post.Title,
		"ExcerptHTML": excerptHTML,
		"PostURL":     b.PostURL(post),
		"Footer":      footerText,
	})
	if err != nil {
		return Content{}, fmt.Errorf("execute post shell: %w", err)
	}

	return Content{Subject: post.Title, HTML: buf.String()}, nil
}

// BuildCustom composes a free-form email. The admin-supplied subject is used
// verbatim. Markdown bodies run through math typesetting then Markdown
// conversion; plain bodies are escaped with newlines as paragraph breaks.
func (b *ContentBuilder) BuildCustom(subject, body string, isMarkdown bool) (Content, error) {
	var bodyHTML string
	if isMarkdown {
		rendered, err := b.markdownToHTML(b.math.Render(body))
		if err != nil {
			return Content{}, fmt.Errorf("render body: %w", err)
		}
		bodyHTML = rendered
	} else {
		bodyHTML = "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "</p><p>") + "</p>"
	}

	var buf bytes.Buffer
	err := customShell.Execute(&buf, map[string]any{
		"BodyHTML": template.HTML(bodyHTML),
		"Footer":   footerText,
	})
	if err != nil {
		return Content{}, fmt.Errorf("execute custom shell: %w", err)
	}

	return Content{Subject: subject, HTML: buf.String()}, nil
}

// RenderMarkdown exposes the math-aware Markdown pipeline for callers that
// pre-render custom bodies at creation time.
func (b *ContentBuilder) RenderMarkdown(text string) (string, error) {
	return b.markdownToHTML(b.math.Render(text))
}

func (b *ContentBuilder) markdownToHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := b.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
