// Package layout reconciles a layout's placeholder regions with a page's
// supplied content using a three-tier fallback: area-class matching, then
// landmark/semantic tag matching, then ordered fill.
package layout

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/fwdslsh/unify-sub011/internal/fragment"
)

// MatchKind tags how a region or contribution can be matched.
type MatchKind string

const (
	MatchArea     MatchKind = "area-class"
	MatchLandmark MatchKind = "landmark"
	MatchOrdered  MatchKind = "ordered"
)

// landmarkTags is the fixed landmark set; semanticTags broadens it for
// tier-2 matching.
var landmarkTags = map[string]bool{
	"header": true, "nav": true, "main": true, "aside": true, "footer": true,
}

var semanticTags = map[string]bool{
	"header": true, "nav": true, "main": true, "aside": true, "footer": true,
	"article": true, "section": true,
}

// Region is a layout-side placeholder with absolute offsets into the layout
// body.
type Region struct {
	El       fragment.Element
	Kind     MatchKind
	Identity string // area name, tag name, or "" for ordered
}

// Contribution is a page-side candidate block.
type Contribution struct {
	El       fragment.Element
	AreaName string
	consumed bool
}

type replacement struct {
	content string
	attrs   []fragment.Attr
	matched bool
}

// Span is a byte range of the layout body that already carries explicitly
// assigned content. Regions overlapping an assigned span are placeholders no
// longer and must not be refilled by the fallback tiers.
type Span struct {
	Start, End int
}

func (sp Span) overlaps(el fragment.Element) bool {
	return sp.Start < el.End && sp.End > el.Start
}

// Place fills the layout body's regions with the page's content blocks and
// returns the composed body plus the number of page blocks that were dropped
// because no region remained for them.
//
// Tiers run in strict priority order; a contribution consumed by an earlier
// tier is excluded from all later tiers. Area regions whose contribution set
// is empty keep their default content, and regions covering an assigned span
// are never touched by the tag or ordered tiers.
func Place(layoutBody, pageContent string, assigned []Span) (string, int) {
	regions := collectRegions(layoutBody)
	contribs := collectContributions(pageContent)
	fills := make([]replacement, len(regions))

	protected := make([]bool, len(regions))
	for i, r := range regions {
		for _, sp := range assigned {
			if sp.overlaps(r.El) {
				protected[i] = true
				break
			}
		}
	}

	// Tier 1: area-class matching. All identically-named contributions are
	// concatenated in document order; an empty set keeps the default content.
	for i, r := range regions {
		if r.Kind != MatchArea {
			continue
		}
		var parts []string
		attrs := r.El.Attrs
		for j := range contribs {
			c := &contribs[j]
			if c.consumed || c.AreaName != r.Identity {
				continue
			}
			parts = append(parts, c.El.Content(pageContent))
			attrs = MergeAttrs(attrs, c.El.Attrs)
			c.consumed = true
		}
		if len(parts) > 0 {
			fills[i] = replacement{content: strings.Join(parts, ""), attrs: attrs, matched: true}
		}
	}

	// Tier 2: landmark/semantic fallback, one-to-one by tag in document order.
	// Area regions stay out even when their element carries a semantic tag.
	for i, r := range regions {
		if fills[i].matched || protected[i] || r.Kind != MatchLandmark {
			continue
		}
		for j := range contribs {
			c := &contribs[j]
			if c.consumed || c.El.Tag != r.El.Tag {
				continue
			}
			fills[i] = replacement{
				content: c.El.Content(pageContent),
				attrs:   MergeAttrs(r.El.Attrs, c.El.Attrs),
				matched: true,
			}
			c.consumed = true
			break
		}
	}

	// Tier 3: ordered fill, one-to-one until either side is exhausted. An
	// area region with no contributions keeps its default rather than
	// absorbing unrelated content.
	next := 0
	for i, r := range regions {
		if fills[i].matched || protected[i] || r.Kind == MatchArea {
			continue
		}
		for next < len(contribs) && contribs[next].consumed {
			next++
		}
		if next >= len(contribs) {
			break
		}
		c := &contribs[next]
		fills[i] = replacement{
			content: c.El.Content(pageContent),
			attrs:   MergeAttrs(r.El.Attrs, c.El.Attrs),
			matched: true,
		}
		c.consumed = true
	}

	dropped := 0
	for _, c := range contribs {
		if !c.consumed {
			dropped++
		}
	}
	if dropped > 0 {
		slog.Debug("Ordered fill dropped unconsumed page content", slog.Int("blocks", dropped))
	}

	return splice(layoutBody, regions, fills), dropped
}

// collectRegions finds the layout's placeholder regions in document order,
// outermost wins: area-class and landmark/semantic elements at any depth
// (their interiors are not searched further), plus remaining top-level
// elements as ordered regions.
func collectRegions(s string) []Region {
	var out []Region

	var descend func(el fragment.Element) bool
	descend = func(el fragment.Element) bool {
		if el.End < 0 {
			return false
		}
		if name := fragment.AreaName(el); name != "" {
			out = append(out, Region{El: el, Kind: MatchArea, Identity: name})
			return true
		}
		if semanticTags[el.Tag] {
			out = append(out, Region{El: el, Kind: MatchLandmark, Identity: el.Tag})
			return true
		}
		found := false
		base := el.ContentStart
		for _, child := range fragment.Children(el.Content(s)) {
			if descend(shift(child, base)) {
				found = true
			}
		}
		return found
	}

	for _, el := range fragment.Children(s) {
		if el.End < 0 {
			continue
		}
		if descend(el) {
			continue
		}
		out = append(out, Region{El: el, Kind: MatchOrdered})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].El.Start < out[j].El.Start })
	return out
}

// collectContributions classifies the page's top-level content blocks.
// Component-internal area classes are excluded by construction: only
// top-level elements of the supplied content participate.
func collectContributions(s string) []Contribution {
	var out []Contribution
	for _, el := range fragment.Children(s) {
		if el.End < 0 {
			continue
		}
		out = append(out, Contribution{El: el, AreaName: fragment.AreaName(el)})
	}
	return out
}

func shift(el fragment.Element, base int) fragment.Element {
	el.Start += base
	el.OpenEnd += base
	if el.ContentStart >= 0 {
		el.ContentStart += base
	}
	if el.ContentEnd >= 0 {
		el.ContentEnd += base
	}
	if el.End >= 0 {
		el.End += base
	}
	return el
}

// splice rebuilds the layout body, replacing matched regions and passing
// everything else through unchanged.
func splice(s string, regions []Region, fills []replacement) string {
	var b strings.Builder
	pos := 0
	for i, r := range regions {
		if !fills[i].matched {
			continue
		}
		b.WriteString(s[pos:r.El.Start])
		b.WriteString(fragment.RenderOpenTag(r.El.Tag, fills[i].attrs))
		b.WriteString(fills[i].content)
		b.WriteString("</" + r.El.Tag + ">")
		pos = r.El.End
	}
	b.WriteString(s[pos:])
	return b.String()
}
