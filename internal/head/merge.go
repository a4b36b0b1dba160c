package head

import (
	"strings"
)

// Part is one origin's head contribution, in cascade order: layout first,
// intermediate fragments in document order of their import, page last.
type Part struct {
	Markup string
	Origin string
}

// dedupKey derives the per-tag deduplication key. ok is false for elements
// that are never deduplicated (always appended).
func dedupKey(e Element) (string, bool) {
	switch e.Tag {
	case "title":
		return "title", true
	case "base":
		return "base", true
	case "meta":
		for _, k := range []string{"name", "property", "http-equiv"} {
			if v, ok := e.Attr(k); ok {
				return "meta:" + v, true
			}
		}
		return "", false
	case "link":
		rel, _ := e.Attr("rel")
		if rel == "canonical" {
			return "link:canonical", true
		}
		if href, ok := e.Attr("href"); ok {
			return "link:" + rel + ":" + href, true
		}
		return "", false
	case "script":
		if src, ok := e.Attr("src"); ok {
			return "script:src:" + src, true
		}
		return "", false // inline scripts are always kept
	case "style":
		if href, ok := e.Attr("href"); ok {
			return "style:href:" + href, true
		}
		return "", false // inline styles are always kept
	default:
		return "", false
	}
}

// lastWins reports whether a key collision replaces the earlier element
// (title, meta, canonical link, base) instead of discarding the later one
// (non-canonical link, external script/style).
func lastWins(e Element) bool {
	switch e.Tag {
	case "title", "meta", "base":
		return true
	case "link":
		rel, _ := e.Attr("rel")
		return rel == "canonical"
	default:
		return false
	}
}

// Merge combines head contributions into one merged head section. Elements
// appear in first-introduction order; a last-wins replacement keeps the
// position of its first occurrence so relative cascade order is stable.
//
// A part that fails to parse is reported via the returned errors and skipped;
// the merge continues with the remaining parts.
func Merge(parts []Part) (string, []error) {
	var (
		merged []Element
		index  = map[string]int{}
		errs   []error
	)
	for _, part := range parts {
		if strings.TrimSpace(part.Markup) == "" {
			continue
		}
		els, err := ParseElements(part.Markup, part.Origin)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, el := range els {
			key, ok := dedupKey(el)
			if !ok {
				merged = append(merged, el)
				continue
			}
			if at, seen := index[key]; seen {
				if lastWins(el) {
					merged[at] = el
				}
				continue
			}
			index[key] = len(merged)
			merged = append(merged, el)
		}
	}
	return Render(merged), errs
}
