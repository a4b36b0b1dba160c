package head

import (
	"strings"

	"golang.org/x/net/html"
)

// Render serializes merged head elements, one per line. Self-closing tags
// render without a closing tag; bare attributes stay bare while explicit
// empty values keep their `=""`; attribute order is preserved from parse
// order.
func Render(els []Element) string {
	var b strings.Builder
	for i, el := range els {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('<')
		b.WriteString(el.Tag)
		for _, a := range el.Attrs {
			b.WriteByte(' ')
			b.WriteString(a.Key)
			if a.HasVal {
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(a.Val))
				b.WriteByte('"')
			}
		}
		b.WriteByte('>')
		if !el.SelfClosing {
			b.WriteString(el.Content)
			b.WriteString("</")
			b.WriteString(el.Tag)
			b.WriteByte('>')
		}
	}
	return b.String()
}
