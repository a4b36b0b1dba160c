// Package markdown renders Markdown fragments to HTML for the composition
// engine, splitting yaml frontmatter and deriving a page title.
package markdown

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	uerrors "github.com/fwdslsh/unify-sub011/internal/errors"
	"github.com/fwdslsh/unify-sub011/internal/fragment"
)

// Result is the rendered form of a Markdown fragment.
type Result struct {
	HTML        string
	Frontmatter Frontmatter
	Title       string
	Excerpt     string
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		// Pages embed raw HTML (slot assignments, area-class divs); pass it through.
		html.WithUnsafe(),
	),
)

var titleCaser = cases.Title(language.English)

// Render converts Markdown text to HTML. filePath is used for diagnostics and
// for deriving a fallback title from the file name.
func Render(markdownText []byte, filePath string) (*Result, error) {
	fmRaw, body, _ := splitFrontmatter(markdownText)

	fm, err := parseFrontmatter(fmRaw)
	if err != nil {
		return nil, uerrors.Wrap(err, uerrors.CategoryMarkdown, uerrors.SeverityError, "parse frontmatter").
			WithContext("path", filePath)
	}

	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, uerrors.Wrap(err, uerrors.CategoryMarkdown, uerrors.SeverityError, "render markdown").
			WithContext("path", filePath)
	}

	out := &Result{
		HTML:        buf.String(),
		Frontmatter: fm,
		Title:       fm.Title,
		Excerpt:     fm.Excerpt,
	}
	if out.Title == "" {
		out.Title = firstHeading(out.HTML)
	}
	if out.Title == "" {
		out.Title = titleFromFilename(filePath)
	}
	if out.Excerpt == "" {
		out.Excerpt = firstParagraph(out.HTML)
	}
	return out, nil
}

func firstHeading(html string) string {
	if h1, ok := fragment.FindFirst(html, "h1"); ok && h1.End >= 0 {
		return strings.TrimSpace(stripTags(h1.Content(html)))
	}
	return ""
}

func firstParagraph(html string) string {
	if p, ok := fragment.FindFirst(html, "p"); ok && p.End >= 0 {
		return strings.TrimSpace(stripTags(p.Content(html)))
	}
	return ""
}

func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// titleFromFilename derives a human title from the file name:
// "getting-started.md" becomes "Getting Started".
func titleFromFilename(filePath string) string {
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCaser.String(name)
}
