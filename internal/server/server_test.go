package server

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwdslsh/unify-sub011/internal/config"
	"github.com/fwdslsh/unify-sub011/internal/metrics"
)

func testServer(t *testing.T, files map[string]string, mutate func(*config.Config)) *Server {
	t.Helper()
	out := t.TempDir()
	for name, content := range files {
		path := filepath.Join(out, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cfg := config.Default()
	cfg.Output.Directory = out
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, NewReloadHub(), nil)
}

func TestServeInjectsReloadScript(t *testing.T) {
	srv := testServer(t, map[string]string{
		"index.html": "<html><body><p>hi</p></body></html>",
	}, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	body := readAll(t, res.Body)
	assert.Contains(t, body, "<p>hi</p>")
	assert.Contains(t, body, reloadScriptPath)
	// the tag sits inside the body element
	assert.Less(t, strings.Index(body, reloadScriptPath), strings.Index(body, "</body>"))
}

func TestServeAssetsUntouched(t *testing.T) {
	srv := testServer(t, map[string]string{
		"style.css": "body { margin: 0 }",
	}, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL + "/style.css")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "body { margin: 0 }", readAll(t, res.Body))
}

func TestServeLiveReloadDisabled(t *testing.T) {
	off := false
	srv := testServer(t, map[string]string{
		"index.html": "<html><body>hi</body></html>",
	}, func(cfg *config.Config) {
		cfg.Serve.LiveReload = &off
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL + "/index.html")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.NotContains(t, readAll(t, res.Body), reloadScriptPath)

	res, err = ts.Client().Get(ts.URL + reloadScriptPath)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, 404, res.StatusCode)
}

func TestServeMetricsEndpoint(t *testing.T) {
	out := t.TempDir()
	cfg := config.Default()
	cfg.Output.Directory = out
	cfg.Serve.Metrics = true
	rec := metrics.NewPrometheusRecorder(nil)
	rec.SetPagesTotal(3)

	srv := New(cfg, NewReloadHub(), rec)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Contains(t, readAll(t, res.Body), "unify_pages_total")
}

func TestInjectReloadScriptWithoutBody(t *testing.T) {
	out := injectReloadScript([]byte("<p>bare</p>"))
	assert.Contains(t, string(out), reloadScriptPath)
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
