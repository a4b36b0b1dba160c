// Package compose implements the cascading import expander: it recursively
// inlines imported fragments into a page, assigns page-provided content to
// slots, merges head sections, and reconciles layout placeholders with page
// content. Composition of a single page is a pure, synchronous computation
// over immutable parsed fragments; each request owns its own ImportStack.
package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	uerrors "github.com/fwdslsh/unify-sub011/internal/errors"
	"github.com/fwdslsh/unify-sub011/internal/fragment"
	"github.com/fwdslsh/unify-sub011/internal/head"
	"github.com/fwdslsh/unify-sub011/internal/markdown"
	"github.com/fwdslsh/unify-sub011/internal/resolve"
)

// Options configures a composition request.
type Options struct {
	// FailFast aborts the page on the first recoverable error instead of
	// collecting it as a warning. Security errors are fatal either way.
	FailFast bool
}

// Result is the outcome of composing one page.
type Result struct {
	HTML     string
	Warnings []error
	Errors   []error
}

// session carries the per-request state threaded through the recursion.
type session struct {
	sourceRoot string
	pagePath   string
	// pageHasSkeleton distinguishes a page that is already a full document
	// from one that delegates its skeleton to an imported layout.
	pageHasSkeleton bool
	opts            Options
	fragments       map[string]*fragment.Fragment // read cache for this pass only
	headParts       []head.Part
	warnings        []error
}

// ComposePage composes the page at pagePath against sourceRoot and returns
// the final document plus collected diagnostics. The returned error is
// non-nil only for failures fatal to the page: unreadable input, a circular
// import, a path traversal, or any recoverable error under fail-fast.
func ComposePage(ctx context.Context, pagePath, sourceRoot string, opts Options) (Result, error) {
	absPage, err := resolve.ValidateAndContain(pagePath, sourceRoot)
	if err != nil {
		return Result{Errors: []error{err}}, err
	}
	absRoot, err := filepath.Abs(sourceRoot)
	if err != nil {
		return Result{Errors: []error{err}}, err
	}

	raw, err := os.ReadFile(absPage)
	if err != nil {
		werr := uerrors.Wrap(err, uerrors.CategoryFileSystem, uerrors.SeverityFatal, "read page")
		return Result{Errors: []error{werr}}, werr
	}

	sess := &session{
		sourceRoot: absRoot,
		pagePath:   absPage,
		opts:       opts,
		fragments:  make(map[string]*fragment.Fragment),
	}

	var (
		pageMarkup   string
		pageHeadPart *head.Part
	)
	if isMarkdown(absPage) {
		rendered, err := markdown.Render(raw, absPage)
		if err != nil {
			return Result{Errors: []error{err}}, err
		}
		pageMarkup = rendered.HTML
		if layoutRef := rendered.Frontmatter.Layout; layoutRef != "" {
			pageMarkup = fmt.Sprintf(`<div %s=%q>%s</div>`, fragment.ImportAttr, layoutRef, rendered.HTML)
		}
		if rendered.Title != "" {
			pageHeadPart = &head.Part{
				Markup: "<title>" + rendered.Title + "</title>",
				Origin: absPage,
			}
		}
	} else {
		pageMarkup = string(raw)
		pf := fragment.Parse(pageMarkup, absPage)
		sess.pageHasSkeleton = pf.HasSkeleton
		if pf.HeadContent != "" {
			pageHeadPart = &head.Part{Markup: pf.HeadContent, Origin: absPage}
		}
	}

	stack := NewImportStack()
	stack.Push(absPage)
	expanded, err := sess.expand(ctx, pageMarkup, absPage, stack)
	stack.Pop()
	if err != nil {
		return Result{Warnings: sess.warnings, Errors: []error{err}}, err
	}

	// The page's own head contributes last in the cascade.
	parts := sess.headParts
	if pageHeadPart != nil {
		parts = append(parts, *pageHeadPart)
	}
	final, mergeWarnings := spliceHead(expanded, parts)
	for _, w := range mergeWarnings {
		sess.warn(w)
	}
	if sess.opts.FailFast && len(mergeWarnings) > 0 {
		return Result{Warnings: sess.warnings, Errors: mergeWarnings}, mergeWarnings[0]
	}

	return Result{HTML: final, Warnings: sess.warnings}, nil
}

func (s *session) warn(err error) {
	s.warnings = append(s.warnings, err)
}

func isMarkdown(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".md" || ext == ".markdown"
}

// load reads and parses a fragment, caching it for the duration of this
// composition pass. Markdown targets are rendered first and then treated as
// ordinary fragments whose body is the rendered HTML.
func (s *session) load(path string) (*fragment.Fragment, error) {
	if f, ok := s.fragments[path]; ok {
		return f, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, uerrors.Wrap(err, uerrors.CategoryFileSystem, uerrors.SeverityError, "read fragment").
			WithContext("path", path)
	}
	var f *fragment.Fragment
	if isMarkdown(path) {
		rendered, err := markdown.Render(raw, path)
		if err != nil {
			return nil, err
		}
		f = fragment.Parse(rendered.HTML, path)
		f.SourcePath = path
	} else {
		f = fragment.Parse(string(raw), path)
	}
	s.fragments[path] = f
	return f, nil
}

// spliceHead merges the collected head parts and splices the result into the
// document's <head>. Documents without a head (or html) element are returned
// unchanged; body-only fragments have nowhere to put head content.
func spliceHead(doc string, parts []head.Part) (string, []error) {
	if len(parts) == 0 {
		return doc, nil
	}
	merged, errs := head.Merge(parts)
	if merged == "" {
		return doc, errs
	}
	if el, ok := fragment.FindFirst(doc, "head"); ok && el.End >= 0 {
		return doc[:el.ContentStart] + "\n" + merged + "\n" + doc[el.ContentEnd:], errs
	}
	if el, ok := fragment.FindFirst(doc, "html"); ok && el.End >= 0 {
		return doc[:el.OpenEnd] + "\n<head>\n" + merged + "\n</head>" + doc[el.OpenEnd:], errs
	}
	return doc, errs
}
