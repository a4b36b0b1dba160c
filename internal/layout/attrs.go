package layout

import (
	"strings"

	"github.com/fwdslsh/unify-sub011/internal/fragment"
)

// MergeAttrs merges a matched page element's attributes into the layout
// region's: page values override layout values except `id` (the layout's id
// always wins, preserving referential stability for CSS/JS keyed by id) and
// `class`, whose token lists are unioned with duplicates removed. Layout
// attribute order is preserved; new page attributes append in page order.
func MergeAttrs(layoutAttrs, pageAttrs []fragment.Attr) []fragment.Attr {
	out := make([]fragment.Attr, len(layoutAttrs))
	copy(out, layoutAttrs)

	idx := make(map[string]int, len(out))
	for i, a := range out {
		idx[a.Key] = i
	}

	for _, p := range pageAttrs {
		switch p.Key {
		case "id":
			if _, has := idx["id"]; !has {
				idx["id"] = len(out)
				out = append(out, p)
			}
		case "class":
			if i, has := idx["class"]; has {
				out[i].Val = unionClasses(out[i].Val, p.Val)
				out[i].HasVal = true
			} else {
				idx["class"] = len(out)
				out = append(out, p)
			}
		default:
			if i, has := idx[p.Key]; has {
				out[i] = p
			} else {
				idx[p.Key] = len(out)
				out = append(out, p)
			}
		}
	}
	return out
}

func unionClasses(a, b string) string {
	seen := map[string]bool{}
	var tokens []string
	for _, tok := range append(strings.Fields(a), strings.Fields(b)...) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return strings.Join(tokens, " ")
}
