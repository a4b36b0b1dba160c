// Package head parses head-section markup into discrete elements and merges
// contributions from multiple origins (layout, nested fragments, page) into a
// single deduplicated, order-preserving head section.
package head

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	uerrors "github.com/fwdslsh/unify-sub011/internal/errors"
	"github.com/fwdslsh/unify-sub011/internal/fragment"
)

// Attr is an ordered head-element attribute. Keys are lower-cased; HasVal is
// false for bare (boolean) attributes so `content=""` and `content` round-trip
// as written.
type Attr struct {
	Key    string
	Val    string
	HasVal bool
}

// Element is one parsed head-section entry.
type Element struct {
	Tag         string // title|meta|link|script|style|base|anything else
	Attrs       []Attr
	Content     string // inner text for paired tags, empty for self-closing
	SelfClosing bool
	Origin      string // contributing fragment, used for ordering diagnostics
}

// Attr returns the value of the named attribute.
func (e Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// selfClosingTags render without a closing tag.
var selfClosingTags = map[string]bool{
	"meta": true, "link": true, "base": true,
}

// ParseElements tokenizes head markup into Elements. Text and comments
// between elements are dropped; malformed markup yields a HeadMergeError so
// the caller can skip this origin's contribution.
func ParseElements(markup, origin string) ([]Element, error) {
	z := html.NewTokenizer(strings.NewReader(markup))
	var out []Element
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return out, nil
			}
			return nil, &uerrors.HeadMergeError{Origin: origin, Cause: z.Err()}
		case html.StartTagToken, html.SelfClosingTagToken:
			// The tokenizer unescapes values but flattens `k=""` and bare
			// `k` into the same form; the raw tag text keeps them apart.
			raw := string(z.Raw())
			tok := z.Token()
			el := Element{
				Tag:         tok.Data,
				Origin:      origin,
				SelfClosing: tt == html.SelfClosingTagToken || selfClosingTags[tok.Data],
			}
			_, rawAttrs, _ := fragment.ParseOpenTag(raw)
			for i, a := range tok.Attr {
				hasVal := a.Val != ""
				if i < len(rawAttrs) && strings.EqualFold(rawAttrs[i].Key, a.Key) {
					hasVal = rawAttrs[i].HasVal
				}
				el.Attrs = append(el.Attrs, Attr{Key: strings.ToLower(a.Key), Val: a.Val, HasVal: hasVal})
			}
			if !el.SelfClosing {
				el.Content = innerText(z, tok.Data)
			}
			out = append(out, el)
		}
	}
}

// innerText collects raw text until the close tag for a paired head element.
// Script and style contents arrive as single text tokens from the tokenizer.
func innerText(z *html.Tokenizer, tag string) string {
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				return b.String()
			}
		}
	}
}
