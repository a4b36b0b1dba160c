package compose

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	uerrors "github.com/fwdslsh/unify-sub011/internal/errors"
	"github.com/fwdslsh/unify-sub011/internal/fragment"
	"github.com/fwdslsh/unify-sub011/internal/head"
	"github.com/fwdslsh/unify-sub011/internal/layout"
	"github.com/fwdslsh/unify-sub011/internal/logfields"
	"github.com/fwdslsh/unify-sub011/internal/resolve"
)

// expand inlines every import directive in markup, depth-first and pre-order
// in document order. hostPath locates relative references and names origins
// in diagnostics.
func (s *session) expand(ctx context.Context, markup, hostPath string, stack *ImportStack) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	directives := fragment.Directives(markup)
	if len(directives) == 0 {
		return markup, nil
	}

	var b strings.Builder
	pos := 0
	for _, d := range directives {
		b.WriteString(markup[pos:d.Start])
		repl, next, err := s.expandDirective(ctx, markup, d, hostPath, stack)
		if err != nil {
			return "", err
		}
		b.WriteString(repl)
		pos = next
	}
	b.WriteString(markup[pos:])
	return b.String(), nil
}

// errorMarker is the structured comment left in place of a directive that
// could not be expanded.
func errorMarker(reference, reason string) string {
	return "<!-- Import Error: " + reference + ": " + reason + " -->"
}

// expandDirective produces the replacement markup for one directive and the
// offset at which the caller should resume. A non-nil error is fatal for the
// page (cycle, traversal, cancelled context, or fail-fast).
func (s *session) expandDirective(ctx context.Context, markup string, d fragment.Element, hostPath string, stack *ImportStack) (string, int, error) {
	ref, _ := d.Attr(fragment.ImportAttr)

	// Unbalanced markup: the element boundary is unknown, so only the open
	// tag can be replaced. Degrade to not-found for this directive.
	if d.End < 0 {
		merr := &uerrors.MalformedMarkupError{Path: hostPath, Tag: d.Tag}
		if s.opts.FailFast {
			return "", 0, merr
		}
		s.warn(merr)
		slog.Warn("Unbalanced import directive", logfields.Page(hostPath), logfields.Reference(ref))
		return errorMarker(ref, "unbalanced markup"), d.OpenEnd, nil
	}

	target, err := resolve.Resolve(ref, hostPath, s.sourceRoot)
	if err != nil {
		var trav *uerrors.PathTraversalError
		if errors.As(err, &trav) {
			// Security errors are never downgraded.
			return "", 0, trav
		}
		if s.opts.FailFast {
			return "", 0, err
		}
		s.warn(err)
		slog.Warn("Import target not found", logfields.Page(hostPath), logfields.Reference(ref))
		return errorMarker(ref, "not found") + hostFallback(markup, d), d.End, nil
	}

	if stack.Contains(target) {
		return "", 0, &uerrors.CircularImportError{Chain: append(stack.Chain(), target)}
	}

	frag, err := s.load(target)
	if err != nil {
		if s.opts.FailFast {
			return "", 0, err
		}
		s.warn(err)
		slog.Warn("Import target failed to load",
			logfields.Page(hostPath), logfields.Reference(ref), logfields.Error(err))
		return errorMarker(ref, "failed to load") + hostFallback(markup, d), d.End, nil
	}

	assignments, defaultContent := collectAssignments(markup, d)

	stack.Push(target)
	defer stack.Pop()

	if frag.HeadContent != "" {
		s.headParts = append(s.headParts, head.Part{Markup: frag.HeadContent, Origin: target})
	}

	if frag.HasSkeleton {
		if hostPath == s.pagePath && !s.pageHasSkeleton {
			// The page delegates its document skeleton to this layout.
			return s.expandLayout(ctx, frag, assignments, defaultContent, stack, d.End)
		}
		// A full-document fragment imported mid-page contributes only its
		// composed body; its head was already forwarded to the merger.
		return s.expandEmbedded(ctx, frag, d, assignments, defaultContent, stack)
	}
	return s.expandFragment(ctx, frag, d, assignments, defaultContent, stack)
}

// expandEmbedded composes a full-document target imported from inside a page:
// slots are filled, the target's body goes through the matcher against the
// host's children, and the host element stays in place minus the import
// attribute.
func (s *session) expandEmbedded(ctx context.Context, frag *fragment.Fragment, d fragment.Element, assignments map[string]string, defaultContent string, stack *ImportStack) (string, int, error) {
	body, assigned, _, _ := substituteSlots(frag.BodyContent, assignments, "")
	composed, _ := layout.Place(body, defaultContent, assigned)

	expanded, err := s.expand(ctx, composed, frag.SourcePath, stack)
	if err != nil {
		return "", 0, err
	}

	open := fragment.RenderOpenTag(d.Tag, fragment.AttrsWithout(d.Attrs, fragment.ImportAttr))
	if selfContained(d) {
		return open + expanded, d.End, nil
	}
	return open + expanded + "</" + d.Tag + ">", d.End, nil
}

// expandLayout composes a full-page target: named assignments fill its slots,
// the remaining page content goes through the area/landmark matcher against
// the layout body, and the host element is dropped entirely (the page becomes
// the layout document).
func (s *session) expandLayout(ctx context.Context, frag *fragment.Fragment, assignments map[string]string, defaultContent string, stack *ImportStack, resumeAt int) (string, int, error) {
	body, assigned, _, _ := substituteSlots(frag.BodyContent, assignments, "")
	composed, dropped := layout.Place(body, defaultContent, assigned)
	if dropped > 0 {
		slog.Debug("Layout composition dropped page content blocks",
			logfields.Target(frag.SourcePath), slog.Int("blocks", dropped))
	}

	doc := replaceBodyContent(frag.Raw, composed)
	expanded, err := s.expand(ctx, doc, frag.SourcePath, stack)
	if err != nil {
		return "", 0, err
	}
	return expanded, resumeAt, nil
}

// expandFragment composes an ordinary body-only target: slots are filled, the
// result is recursively expanded, and the host element remains in place minus
// the import attribute.
func (s *session) expandFragment(ctx context.Context, frag *fragment.Fragment, d fragment.Element, assignments map[string]string, defaultContent string, stack *ImportStack) (string, int, error) {
	body, _, hasSlots, _ := substituteSlots(frag.BodyContent, assignments, defaultContent)

	if !hasSlots && (len(assignments) > 0 || strings.TrimSpace(defaultContent) != "") {
		// Host-supplied content for a slotless target is silently discarded.
		// Kept for compatibility; logged so the behavior is observable.
		slog.Debug("Import target has no slots; host-supplied content discarded",
			logfields.Target(frag.SourcePath))
	}

	expanded, err := s.expand(ctx, body, frag.SourcePath, stack)
	if err != nil {
		return "", 0, err
	}

	// A target that rendered nothing usable falls back to the host's own
	// children.
	if strings.TrimSpace(expanded) == "" && strings.TrimSpace(defaultContent) != "" {
		expanded = defaultContent
	}

	open := fragment.RenderOpenTag(d.Tag, fragment.AttrsWithout(d.Attrs, fragment.ImportAttr))
	if selfContained(d) {
		// Void or self-closing host: nothing can nest inside it.
		return open + expanded, d.End, nil
	}
	return open + expanded + "</" + d.Tag + ">", d.End, nil
}

// selfContained reports whether the element needs no close tag.
func selfContained(d fragment.Element) bool {
	return d.End == d.OpenEnd
}

// hostFallback renders the host element without the import attribute,
// preserving its children as fallback content.
func hostFallback(markup string, d fragment.Element) string {
	open := fragment.RenderOpenTag(d.Tag, fragment.AttrsWithout(d.Attrs, fragment.ImportAttr))
	if selfContained(d) {
		return open
	}
	return open + d.Content(markup) + "</" + d.Tag + ">"
}

// collectAssignments gathers the directive's child markup: data-target tagged
// blocks become slot assignments (the wrapper element is dropped), and all
// remaining child markup becomes the default-slot/fallback content. Multiple
// assignments to the same slot are invalid; the last one wins.
func collectAssignments(markup string, d fragment.Element) (map[string]string, string) {
	content := d.Content(markup)
	assignments := map[string]string{}
	var rest strings.Builder
	pos := 0
	for _, el := range fragment.Children(content) {
		name, ok := el.Attr(fragment.TargetAttr)
		if !ok || el.End < 0 {
			continue
		}
		rest.WriteString(content[pos:el.Start])
		assignments[name] = el.Content(content)
		pos = el.End
	}
	rest.WriteString(content[pos:])
	return assignments, rest.String()
}

// substituteSlots replaces each slot declaration with its assignment when the
// assignment is non-blank after trimming, else with the slot's own fallback
// content. The default (unnamed) slot matches the empty assignment name and,
// failing that, the host's remaining child markup. assigned marks the output
// ranges that received explicit content, so the matcher can leave the
// enclosing regions alone.
func substituteSlots(body string, assignments map[string]string, defaultContent string) (out string, assigned []layout.Span, hasSlots, hasDefault bool) {
	slots := fragment.Slots(body)
	if len(slots) == 0 {
		return body, nil, false, false
	}

	var b strings.Builder
	pos := 0
	for _, sl := range slots {
		if sl.End < 0 {
			continue
		}
		hasSlots = true
		name, _ := sl.Attr("name")
		if name == "" {
			hasDefault = true
		}

		val, ok := assignments[name]
		if !ok && name == "" && strings.TrimSpace(defaultContent) != "" {
			val, ok = defaultContent, true
		}
		if !ok || strings.TrimSpace(val) == "" {
			ok = false
			val = sl.Content(body)
		}

		b.WriteString(body[pos:sl.Start])
		if ok {
			assigned = append(assigned, layout.Span{Start: b.Len(), End: b.Len() + len(val)})
		}
		b.WriteString(val)
		pos = sl.End
	}
	b.WriteString(body[pos:])
	return b.String(), assigned, hasSlots, hasDefault
}

// replaceBodyContent swaps the content of the document's body element,
// leaving the rest of the document untouched.
func replaceBodyContent(doc, newBody string) string {
	el, ok := fragment.FindFirst(doc, "body")
	if !ok || el.End < 0 {
		return doc
	}
	return doc[:el.ContentStart] + newBody + doc[el.ContentEnd:]
}
