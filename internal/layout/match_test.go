package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwdslsh/unify-sub011/internal/fragment"
)

func TestPlaceAreaConcatenation(t *testing.T) {
	lay := `<div class="unify-x">Default</div>`
	page := `<div class="unify-x">A</div><div class="unify-x">B</div>`

	out, dropped := Place(lay, page, nil)
	assert.Equal(t, 0, dropped)
	assert.Contains(t, out, "AB")
	assert.NotContains(t, out, "Default", "layout default content is replaced")
}

func TestPlaceAreaEmptySetKeepsDefault(t *testing.T) {
	lay := `<div class="unify-x">Default</div>`
	out, dropped := Place(lay, `<p>unrelated</p>`, nil)
	assert.Contains(t, out, "Default")
	assert.NotContains(t, out, "unrelated", "ordered fill never claims an area region")
	assert.Equal(t, 1, dropped)
}

func TestPlaceAreaWithSemanticTagStaysAreaOnly(t *testing.T) {
	// An area element that happens to be a landmark tag is matched by area
	// name only; tag matching must not claim it.
	lay := `<header class="unify-top">Default</header>`
	out, dropped := Place(lay, `<header>Hi</header>`, nil)
	assert.Contains(t, out, "Default")
	assert.NotContains(t, out, "Hi")
	assert.Equal(t, 1, dropped)
}

func TestPlaceAssignedSpanProtectsRegion(t *testing.T) {
	lay := `<header>old</header><main>Bye</main>`
	start := strings.Index(lay, "Bye")
	assigned := []Span{{Start: start, End: start + len("Bye")}}

	out, dropped := Place(lay, `<header>Hi</header><p>extra</p>`, assigned)
	assert.Contains(t, out, "<header>Hi</header>")
	assert.Contains(t, out, "<main>Bye</main>", "assigned content survives ordered fill")
	assert.NotContains(t, out, "extra")
	assert.Equal(t, 1, dropped)
}

func TestPlaceLandmarkMatch(t *testing.T) {
	lay := `<header>old</header><main>keep</main>`
	page := `<header>Hi</header>`

	out, _ := Place(lay, page, nil)
	assert.Contains(t, out, "<header>Hi</header>")
	assert.Contains(t, out, "<main>keep</main>")
}

func TestPlaceTierIsolation(t *testing.T) {
	// A contribution consumed by area matching must not be re-used by
	// landmark matching in the same composition.
	lay := `<header class="unify-top">D</header><header>H2</header>`
	page := `<header class="unify-top">X</header>`

	out, _ := Place(lay, page, nil)
	assert.Contains(t, out, "X")
	assert.Contains(t, out, "<header>H2</header>", "second header keeps its default")
}

func TestPlaceOrderedFill(t *testing.T) {
	lay := `<div>one</div><div>two</div><div>three</div>`
	page := `<p>A</p><p>B</p>`

	out, dropped := Place(lay, page, nil)
	assert.Equal(t, 0, dropped)
	assert.Contains(t, out, ">A</div>")
	assert.Contains(t, out, ">B</div>")
	assert.Contains(t, out, "three", "leftover region keeps its default")
}

func TestPlaceOrderedFillDropsExcessPageContent(t *testing.T) {
	lay := `<div>one</div>`
	page := `<p>A</p><p>B</p><p>C</p>`

	out, dropped := Place(lay, page, nil)
	assert.Equal(t, 2, dropped)
	assert.NotContains(t, out, "B")
	assert.NotContains(t, out, "C")
}

func TestPlaceNestedRegionsOutermostWins(t *testing.T) {
	lay := `<div class="wrap"><main>old</main></div>`
	page := `<main>new</main>`

	out, _ := Place(lay, page, nil)
	assert.Contains(t, out, "<main>new</main>")
	assert.Contains(t, out, `<div class="wrap">`)
}

func TestMergeAttrs(t *testing.T) {
	la := []fragment.Attr{
		{Key: "id", Val: "hero", HasVal: true},
		{Key: "class", Val: "a b", HasVal: true},
		{Key: "role", Val: "banner", HasVal: true},
	}
	pa := []fragment.Attr{
		{Key: "id", Val: "other", HasVal: true},
		{Key: "class", Val: "b c", HasVal: true},
		{Key: "role", Val: "main", HasVal: true},
		{Key: "data-x", Val: "1", HasVal: true},
	}

	got := MergeAttrs(la, pa)
	byKey := map[string]string{}
	for _, a := range got {
		byKey[a.Key] = a.Val
	}
	assert.Equal(t, "hero", byKey["id"], "layout id always wins")
	assert.Equal(t, "a b c", byKey["class"], "class tokens are unioned")
	assert.Equal(t, "main", byKey["role"], "page value overrides")
	assert.Equal(t, "1", byKey["data-x"], "new page attributes are added")
}
