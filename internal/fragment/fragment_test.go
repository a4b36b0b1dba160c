package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSplitsHeadAndBody(t *testing.T) {
	raw := `<!DOCTYPE html><html><head><title>T</title></head><body><main>M</main></body></html>`
	f := Parse(raw, "/src/page.html")

	assert.Equal(t, "<title>T</title>", f.HeadContent)
	assert.Equal(t, "<main>M</main>", f.BodyContent)
	assert.True(t, f.HasSkeleton)
	assert.Equal(t, "/src/page.html", f.SourcePath)
}

func TestParseBodyOnlyFragment(t *testing.T) {
	raw := `<div class="card">hello</div>`
	f := Parse(raw, "/src/_card.html")

	assert.Empty(t, f.HeadContent)
	assert.Equal(t, raw, f.BodyContent)
	assert.False(t, f.HasSkeleton)
}

func TestSlots(t *testing.T) {
	s := `<main><slot name="content">Default</slot></main><footer><slot>F</slot></footer>`
	slots := Slots(s)
	if len(slots) != 2 {
		t.Fatalf("got %d slots", len(slots))
	}
	name, _ := slots[0].Attr("name")
	assert.Equal(t, "content", name)
	assert.Equal(t, "Default", slots[0].Content(s))
	assert.False(t, slots[1].HasAttr("name"))
}

func TestAreaName(t *testing.T) {
	el, _ := ScanElement(`<div class="box unify-sidebar wide"></div>`, 0)
	assert.Equal(t, "sidebar", AreaName(el))

	el, _ = ScanElement(`<div class="plain"></div>`, 0)
	assert.Equal(t, "", AreaName(el))
}

func TestRenderOpenTagPreservesFormsAndOrder(t *testing.T) {
	el, _ := ScanElement(`<section data-unify="x" id=main hidden class="a"></section>`, 0)
	got := RenderOpenTag(el.Tag, AttrsWithout(el.Attrs, ImportAttr))
	assert.Equal(t, `<section id="main" hidden class="a">`, got)
}
