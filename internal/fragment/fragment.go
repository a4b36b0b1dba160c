// Package fragment turns raw markup text into the lightweight structural
// representation the composition engine works on: a head span, a body span,
// element boundaries, and declared import/slot/area markers. It deliberately
// does not build a DOM; offsets index the original text so unmatched markup
// passes through unchanged.
package fragment

import (
	"strings"
)

// Markup conventions recognized by the engine.
const (
	ImportAttr      = "data-unify"
	TargetAttr      = "data-target"
	SlotTag         = "slot"
	TemplateTag     = "template"
	AreaClassPrefix = "unify-"
)

// Fragment is a parsed unit of markup. Immutable after parse.
type Fragment struct {
	SourcePath  string
	Raw         string
	HeadContent string
	BodyContent string
	HasSkeleton bool // true when the markup carries a <body> element
}

// Parse builds a Fragment from raw markup. Documents without an <html>/<body>
// skeleton are treated as body-only fragments.
func Parse(raw, sourcePath string) *Fragment {
	f := &Fragment{SourcePath: sourcePath, Raw: raw}
	if head, ok := FindFirst(raw, "head"); ok && head.End >= 0 {
		f.HeadContent = head.Content(raw)
	}
	if body, ok := FindFirst(raw, "body"); ok && body.End >= 0 {
		f.BodyContent = body.Content(raw)
		f.HasSkeleton = true
		return f
	}
	f.BodyContent = raw
	return f
}

// Directives returns every element carrying the import attribute, at any
// depth, in document order. A directive's interior is not searched for nested
// directives; those belong to the target's expansion pass.
func Directives(s string) []Element {
	return findAll(s, func(e Element) bool { return e.HasAttr(ImportAttr) })
}

// Slots returns every slot declaration in document order, outermost first.
func Slots(s string) []Element {
	return findAll(s, func(e Element) bool { return e.Tag == SlotTag })
}

// AreaName extracts the area-class identity of an element, or "" when the
// element carries no recognized area class.
func AreaName(e Element) string {
	for _, c := range e.Classes() {
		if strings.HasPrefix(c, AreaClassPrefix) && len(c) > len(AreaClassPrefix) {
			return strings.TrimPrefix(c, AreaClassPrefix)
		}
	}
	return ""
}

// RenderOpenTag renders an open tag from a tag name and ordered attributes.
// Values are double-quoted; bare attributes render as bare names.
func RenderOpenTag(tag string, attrs []Attr) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if a.HasVal {
			b.WriteString(`="`)
			b.WriteString(strings.ReplaceAll(a.Val, `"`, "&quot;"))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')
	return b.String()
}

// AttrsWithout returns a copy of attrs with the named keys removed,
// preserving order.
func AttrsWithout(attrs []Attr, drop ...string) []Attr {
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		skip := false
		for _, d := range drop {
			if a.Key == d {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, a)
		}
	}
	return out
}
