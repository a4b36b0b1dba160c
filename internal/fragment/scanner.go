package fragment

import (
	"strings"
)

// Attr is a parsed tag attribute in source order. HasVal is false for boolean
// (bare) attributes so they can be rendered back without `=""`.
type Attr struct {
	Key    string
	Val    string
	HasVal bool
}

// Element describes one element boundary inside a markup string. All offsets
// index into the original string so untouched markup can be passed through
// byte for byte.
//
// End == -1 signals that no matching close tag was found (unbalanced markup);
// callers must treat the boundary as unknown rather than guess.
type Element struct {
	Tag          string // lower-cased
	Attrs        []Attr
	Start        int // offset of '<'
	OpenEnd      int // offset just past the open tag's '>'
	ContentStart int
	ContentEnd   int
	End          int // offset just past the close tag; == OpenEnd for void/self-closing
	SelfClosing  bool
}

// Attr returns the value of the named attribute (name compared lower-case).
func (e Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Classes returns the element's class tokens.
func (e Element) Classes() []string {
	v, ok := e.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(v)
}

// Content returns the inner markup of the element, or "" when the boundary is
// unknown or the element is void.
func (e Element) Content(s string) string {
	if e.End < 0 || e.ContentEnd < e.ContentStart {
		return ""
	}
	return s[e.ContentStart:e.ContentEnd]
}

// Outer returns the element's full markup, or "" when the boundary is unknown.
func (e Element) Outer(s string) string {
	if e.End < 0 {
		return ""
	}
	return s[e.Start:e.End]
}

// voidElements render without a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements hold raw text until their literal close tag; depth counting
// inside them would misfire on markup-looking string content.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "textarea": true,
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == ':'
}

// scanName reads a tag or attribute name starting at i.
func scanName(s string, i int) (string, int) {
	start := i
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	return strings.ToLower(s[start:i]), i
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' || s[i] == '\f') {
		i++
	}
	return i
}

// ParseOpenTag parses a standalone open tag (raw markup starting with '<')
// and returns its name and attributes. It exists for callers that tokenize
// elsewhere but still need the valued/bare attribute distinction.
func ParseOpenTag(s string) (string, []Attr, bool) {
	i := strings.IndexByte(s, '<')
	if i < 0 {
		return "", nil, false
	}
	tag, attrs, _, _, ok := parseTag(s, i)
	return tag, attrs, ok
}

// parseTag parses an open tag starting at the '<' at offset i. It accepts
// double-quoted, single-quoted, unquoted, and bare (boolean) attributes.
// end is the offset just past '>'; ok is false when the tag never closes.
func parseTag(s string, i int) (tag string, attrs []Attr, selfClosing bool, end int, ok bool) {
	i++ // past '<'
	tag, i = scanName(s, i)
	if tag == "" {
		return "", nil, false, 0, false
	}
	for i < len(s) {
		i = skipSpace(s, i)
		if i >= len(s) {
			return "", nil, false, 0, false
		}
		switch {
		case s[i] == '>':
			return tag, attrs, selfClosing, i + 1, true
		case s[i] == '/' && i+1 < len(s) && s[i+1] == '>':
			return tag, attrs, true, i + 2, true
		case isNameStart(s[i]):
			var key string
			key, i = scanName(s, i)
			i = skipSpace(s, i)
			if i < len(s) && s[i] == '=' {
				i = skipSpace(s, i+1)
				var val string
				val, i, ok = scanAttrValue(s, i)
				if !ok {
					return "", nil, false, 0, false
				}
				attrs = append(attrs, Attr{Key: key, Val: val, HasVal: true})
			} else {
				attrs = append(attrs, Attr{Key: key})
			}
		default:
			// Stray character inside a tag; skip it rather than abort.
			i++
		}
	}
	return "", nil, false, 0, false
}

func scanAttrValue(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", 0, false
	}
	if s[i] == '"' || s[i] == '\'' {
		quote := s[i]
		j := strings.IndexByte(s[i+1:], quote)
		if j < 0 {
			return "", 0, false
		}
		return s[i+1 : i+1+j], i + j + 2, true
	}
	start := i
	for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\n' && s[i] != '\r' && s[i] != '>' && s[i] != '/' {
		i++
	}
	return s[start:i], i, true
}

// nextTagStart finds the next start-tag '<' at or after i, skipping comments,
// doctype/processing instructions, and close tags.
func nextTagStart(s string, i int) int {
	for i < len(s) {
		j := strings.IndexByte(s[i:], '<')
		if j < 0 {
			return -1
		}
		i += j
		switch {
		case strings.HasPrefix(s[i:], "<!--"):
			k := strings.Index(s[i+4:], "-->")
			if k < 0 {
				return -1
			}
			i += 4 + k + 3
		case strings.HasPrefix(s[i:], "<!") || strings.HasPrefix(s[i:], "<?"):
			k := strings.IndexByte(s[i:], '>')
			if k < 0 {
				return -1
			}
			i += k + 1
		case strings.HasPrefix(s[i:], "</"):
			k := strings.IndexByte(s[i:], '>')
			if k < 0 {
				return -1
			}
			i += k + 1
		case i+1 < len(s) && isNameStart(s[i+1]):
			return i
		default:
			i++
		}
	}
	return -1
}

// closeTagFor finds the literal close tag for a raw-text element, case
// insensitively. Returns contentEnd and end, or -1, -1.
func closeTagFor(s string, tag string, from int) (int, int) {
	needle := "</" + tag
	j := strings.Index(strings.ToLower(s[from:]), needle)
	if j < 0 {
		return -1, -1
	}
	pos := from + j
	k := strings.IndexByte(s[pos:], '>')
	if k < 0 {
		return -1, -1
	}
	return pos, pos + k + 1
}

// ScanElement parses the element whose open tag starts at the '<' at offset i.
// For paired tags it locates the matching close tag with an explicit state
// machine: scanning flips between content and tag states, and a depth counter
// tracks nesting of identically-named tags; depth reaching zero after a
// decrement marks the boundary. Unbalanced markup yields End == -1.
func ScanElement(s string, i int) (Element, bool) {
	tag, attrs, selfClosing, openEnd, ok := parseTag(s, i)
	if !ok {
		return Element{}, false
	}
	el := Element{Tag: tag, Attrs: attrs, Start: i, OpenEnd: openEnd, SelfClosing: selfClosing}
	if selfClosing || voidElements[tag] {
		el.ContentStart = openEnd
		el.ContentEnd = openEnd
		el.End = openEnd
		return el, true
	}
	el.ContentStart = openEnd
	if rawTextElements[tag] {
		contentEnd, end := closeTagFor(s, tag, openEnd)
		el.ContentEnd = contentEnd
		el.End = end
		return el, true
	}
	el.ContentEnd, el.End = findBalancedEnd(s, tag, openEnd)
	return el, true
}

// findBalancedEnd locates the close tag matching an already-consumed open tag
// of the given name, starting the scan at from. Returns (-1, -1) when the
// markup is unbalanced.
func findBalancedEnd(s string, tag string, from int) (contentEnd, end int) {
	depth := 1
	i := from
	for i < len(s) {
		j := strings.IndexByte(s[i:], '<')
		if j < 0 {
			return -1, -1
		}
		i += j
		switch {
		case strings.HasPrefix(s[i:], "<!--"):
			k := strings.Index(s[i+4:], "-->")
			if k < 0 {
				return -1, -1
			}
			i += 4 + k + 3
		case strings.HasPrefix(s[i:], "<!") || strings.HasPrefix(s[i:], "<?"):
			k := strings.IndexByte(s[i:], '>')
			if k < 0 {
				return -1, -1
			}
			i += k + 1
		case strings.HasPrefix(s[i:], "</"):
			name, ni := scanName(s, i+2)
			k := strings.IndexByte(s[ni:], '>')
			if k < 0 {
				return -1, -1
			}
			if name == tag {
				depth--
				if depth == 0 {
					return i, ni + k + 1
				}
			}
			i = ni + k + 1
		case i+1 < len(s) && isNameStart(s[i+1]):
			name, _, selfClosing, openEnd, ok := parseTag(s, i)
			if !ok {
				return -1, -1
			}
			if rawTextElements[name] {
				_, rawEnd := closeTagFor(s, name, openEnd)
				if rawEnd < 0 {
					return -1, -1
				}
				i = rawEnd
				continue
			}
			if name == tag && !selfClosing && !voidElements[name] {
				depth++
			}
			i = openEnd
		default:
			i++
		}
	}
	return -1, -1
}

// Children returns the top-level elements of s in document order. Elements
// with unknown boundaries are skipped past their open tag.
func Children(s string) []Element {
	var out []Element
	i := 0
	for {
		i = nextTagStart(s, i)
		if i < 0 {
			return out
		}
		el, ok := ScanElement(s, i)
		if !ok {
			i++
			continue
		}
		out = append(out, el)
		if el.End < 0 {
			i = el.OpenEnd
			continue
		}
		i = el.End
	}
}

// findAll walks s at any depth, in document order, collecting elements the
// match function selects. Selected elements' interiors are not descended into.
func findAll(s string, match func(Element) bool) []Element {
	var out []Element
	i := 0
	for {
		i = nextTagStart(s, i)
		if i < 0 {
			return out
		}
		el, ok := ScanElement(s, i)
		if !ok {
			i++
			continue
		}
		if match(el) {
			out = append(out, el)
			if el.End >= 0 {
				i = el.End
				continue
			}
			i = el.OpenEnd
			continue
		}
		if rawTextElements[el.Tag] && el.End >= 0 {
			i = el.End
			continue
		}
		i = el.OpenEnd
	}
}

// FindFirst returns the first element with the given tag at any depth.
func FindFirst(s string, tag string) (Element, bool) {
	els := findAll(s, func(e Element) bool { return e.Tag == tag })
	if len(els) == 0 {
		return Element{}, false
	}
	return els[0], true
}
