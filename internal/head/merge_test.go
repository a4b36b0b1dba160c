package head

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeParts(t *testing.T, parts ...Part) string {
	t.Helper()
	out, errs := Merge(parts)
	require.Empty(t, errs)
	return out
}

func TestMergeTitleLastWins(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: "<title>A</title>", Origin: "layout"},
		Part{Markup: "<title>B</title>", Origin: "page"},
	)
	assert.Equal(t, "<title>B</title>", out)
}

func TestMergeTitleKeepsFirstPosition(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: `<title>A</title><link rel="stylesheet" href="a.css">`, Origin: "layout"},
		Part{Markup: "<title>B</title>", Origin: "page"},
	)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "<title>B</title>", lines[0], "replacement keeps the first occurrence's position")
	assert.Equal(t, `<link rel="stylesheet" href="a.css">`, lines[1])
}

func TestMergeMetaLastWins(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: `<meta name="k" content="v1">`, Origin: "layout"},
		Part{Markup: `<meta name="k" content="v2">`, Origin: "page"},
	)
	assert.Equal(t, `<meta name="k" content="v2">`, out)
}

func TestMergeMetaWithoutIdentityNeverDeduplicated(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: `<meta charset="utf-8">`, Origin: "layout"},
		Part{Markup: `<meta charset="utf-8">`, Origin: "page"},
	)
	assert.Equal(t, 2, strings.Count(out, "<meta"))
}

func TestMergeExternalScriptFirstWins(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: `<script src="s.js" defer></script>`, Origin: "layout"},
		Part{Markup: `<script src="s.js"></script>`, Origin: "page"},
	)
	assert.Equal(t, `<script src="s.js" defer></script>`, out)
}

func TestMergeInlineScriptsAllKept(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: `<script>var a = 1;</script>`, Origin: "layout"},
		Part{Markup: `<script>var a = 1;</script>`, Origin: "page"},
	)
	assert.Equal(t, 2, strings.Count(out, "<script>"))
	assert.Contains(t, out, "var a = 1;")
}

func TestMergeStylesheetFirstWins(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: `<link rel="stylesheet" href="base.css">`, Origin: "layout"},
		Part{Markup: `<link rel="stylesheet" href="base.css"><link rel="stylesheet" href="page.css">`, Origin: "page"},
	)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "base.css", "layout stylesheet stays before page stylesheet")
	assert.Contains(t, lines[1], "page.css")
}

func TestMergeCanonicalLinkLastWins(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: `<link rel="canonical" href="https://a.example/">`, Origin: "layout"},
		Part{Markup: `<link rel="canonical" href="https://b.example/">`, Origin: "page"},
	)
	assert.Equal(t, `<link rel="canonical" href="https://b.example/">`, out)
}

func TestMergeSkipsBlankParts(t *testing.T) {
	out := mergeParts(t,
		Part{Markup: "  \n\t", Origin: "layout"},
		Part{Markup: "<title>T</title>", Origin: "page"},
	)
	assert.Equal(t, "<title>T</title>", out)
}

func TestParseElementsAttributeForms(t *testing.T) {
	els, err := ParseElements(`<meta NAME=viewport content='width=device-width' data-x>`, "page")
	require.NoError(t, err)
	require.Len(t, els, 1)

	el := els[0]
	assert.True(t, el.SelfClosing)
	v, ok := el.Attr("name")
	assert.True(t, ok, "attribute names are lower-cased")
	assert.Equal(t, "viewport", v)
	v, _ = el.Attr("content")
	assert.Equal(t, "width=device-width", v)
	_, ok = el.Attr("data-x")
	assert.True(t, ok)
}

func TestRenderBooleanAttributeBare(t *testing.T) {
	out := Render([]Element{{
		Tag:         "script",
		Attrs:       []Attr{{Key: "src", Val: "app.js", HasVal: true}, {Key: "async"}},
		SelfClosing: false,
	}})
	assert.Equal(t, `<script src="app.js" async></script>`, out)
}

func TestRenderKeepsExplicitEmptyValue(t *testing.T) {
	els, err := ParseElements(`<meta name="x" content="" data-flag>`, "page")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, `<meta name="x" content="" data-flag>`, Render(els))
}
