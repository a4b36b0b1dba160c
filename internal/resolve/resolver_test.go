package resolve

import (
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwdslsh/unify-sub011/internal/errors"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<div></div>"), 0o644))
}

func TestResolveAbsoluteReference(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "parts", "card.html"))

	got, err := Resolve("/parts/card.html", filepath.Join(root, "blog", "post.html"), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "parts", "card.html"), got)
}

func TestResolveRelativeReference(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog", "card.html"))
	writeFile(t, filepath.Join(root, "shared.html"))

	host := filepath.Join(root, "blog", "post.html")

	got, err := Resolve("./card.html", host, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "blog", "card.html"), got)

	got, err = Resolve("../shared.html", host, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "shared.html"), got)
}

func TestResolveShortNamePrecedence(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(dir, "main.html"))
	writeFile(t, filepath.Join(dir, "_main.html"))
	writeFile(t, filepath.Join(dir, "_main.layout.html"))

	got, err := Resolve("main", filepath.Join(dir, "page.html"), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "main.html"), got, "exact match wins over prefix and suffix forms")
}

func TestResolveShortNamePrefixBeforeSuffix(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(dir, "_main.html"))
	writeFile(t, filepath.Join(dir, "_main.layout.html"))

	got, err := Resolve("main", filepath.Join(dir, "page.html"), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "_main.html"), got)
}

func TestResolveShortNameWalksUpToRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "_base.layout.html"))

	got, err := Resolve("base", filepath.Join(root, "a", "b", "page.html"), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "_base.layout.html"), got)
}

func TestResolveShortNameIncludesFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, IncludesDir, "_nav.html"))

	got, err := Resolve("nav", filepath.Join(root, "deep", "page.html"), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, IncludesDir, "_nav.html"), got)
}

func TestResolveNotFoundCarriesReferenceAndLastDir(t *testing.T) {
	root := t.TempDir()

	_, err := Resolve("missing", filepath.Join(root, "page.html"), root)
	var nf *errors.NotFoundError
	require.True(t, goerrors.As(err, &nf))
	assert.Equal(t, "missing", nf.Reference)
	assert.NotEmpty(t, nf.LastDir)
}

func TestResolveTraversalRejected(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "outside.html")
	writeFile(t, outside)
	t.Cleanup(func() { _ = os.Remove(outside) })

	_, err := Resolve("../outside.html", filepath.Join(root, "page.html"), root)
	var trav *errors.PathTraversalError
	require.True(t, goerrors.As(err, &trav), "expected PathTraversalError, got %v", err)
}

func TestValidateAndContain(t *testing.T) {
	root := t.TempDir()

	p, err := ValidateAndContain(filepath.Join(root, "a", "..", "b.html"), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "b.html"), p)

	_, err = ValidateAndContain(filepath.Join(root, ".."), root)
	var trav *errors.PathTraversalError
	assert.True(t, goerrors.As(err, &trav))
}
