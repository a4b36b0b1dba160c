package markdown

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the fields the composition engine consumes. Unknown keys
// are preserved in Extra for downstream use.
type Frontmatter struct {
	Layout  string         `yaml:"layout"`
	Title   string         `yaml:"title"`
	Excerpt string         `yaml:"description"`
	Extra   map[string]any `yaml:"-"`
}

var delim = []byte("---")

// splitFrontmatter separates `---` delimited YAML frontmatter from the body.
// Documents without an opening delimiter return the full input as body.
func splitFrontmatter(content []byte) (fm []byte, body []byte, had bool) {
	rest, ok := bytes.CutPrefix(content, append(delim, '\n'))
	if !ok {
		if rest, ok = bytes.CutPrefix(content, append(delim, '\r', '\n')); !ok {
			return nil, content, false
		}
	}

	for _, closeSeq := range [][]byte{[]byte("\n---\n"), []byte("\r\n---\r\n")} {
		if idx := bytes.Index(rest, closeSeq); idx >= 0 {
			return rest[:idx], rest[idx+len(closeSeq):], true
		}
	}
	// Closing delimiter at end of input without trailing newline.
	for _, closeSeq := range [][]byte{[]byte("\n---"), []byte("\r\n---")} {
		if bytes.HasSuffix(rest, closeSeq) {
			return rest[:len(rest)-len(closeSeq)], nil, true
		}
	}
	return nil, content, false
}

func parseFrontmatter(raw []byte) (Frontmatter, error) {
	var fm Frontmatter
	if len(bytes.TrimSpace(raw)) == 0 {
		return fm, nil
	}
	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return fm, err
	}
	extra := map[string]any{}
	if err := yaml.Unmarshal(raw, &extra); err == nil {
		delete(extra, "layout")
		delete(extra, "title")
		delete(extra, "description")
		if len(extra) > 0 {
			fm.Extra = extra
		}
	}
	return fm, nil
}
