package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWithFrontmatter(t *testing.T) {
	src := []byte(`---
layout: blog
title: Hello World
tags: [a, b]
---

# Heading

Some **bold** text.
`)
	res, err := Render(src, "/src/post.md")
	require.NoError(t, err)

	assert.Equal(t, "blog", res.Frontmatter.Layout)
	assert.Equal(t, "Hello World", res.Title)
	assert.Contains(t, res.HTML, "<h1>Heading</h1>")
	assert.Contains(t, res.HTML, "<strong>bold</strong>")
	assert.Contains(t, res.Frontmatter.Extra, "tags")
}

func TestRenderTitleFromHeading(t *testing.T) {
	res, err := Render([]byte("# From Heading\n\nbody\n"), "/src/post.md")
	require.NoError(t, err)
	assert.Equal(t, "From Heading", res.Title)
	assert.Equal(t, "body", res.Excerpt)
}

func TestRenderTitleFromFilename(t *testing.T) {
	res, err := Render([]byte("plain text only\n"), "/src/getting-started.md")
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", res.Title)
}

func TestRenderPassesRawHTMLThrough(t *testing.T) {
	res, err := Render([]byte("<div data-target=\"content\">X</div>\n"), "/src/p.md")
	require.NoError(t, err)
	assert.Contains(t, res.HTML, `<div data-target="content">X</div>`)
}

func TestRenderBadFrontmatterFails(t *testing.T) {
	src := []byte("---\nlayout: [unclosed\n---\nbody\n")
	_, err := Render(src, "/src/p.md")
	assert.Error(t, err)
}

func TestSplitFrontmatterAbsent(t *testing.T) {
	fm, body, had := splitFrontmatter([]byte("no frontmatter here"))
	assert.False(t, had)
	assert.Nil(t, fm)
	assert.Equal(t, "no frontmatter here", string(body))
}
