package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherBatchesChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "page.html"), []byte("<p>v1</p>"), 0o644))

	changes := make(chan []string, 4)
	w, err := New(root, filepath.Join(t.TempDir(), "dist"), 50*time.Millisecond, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(root, "page.html"), []byte("<p>v2</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.html"), []byte("<p>new</p>"), 0o644))

	select {
	case paths := <-changes:
		assert.NotEmpty(t, paths)
	case <-time.After(3 * time.Second):
		t.Fatal("expected change notification")
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()

	changes := make(chan []string, 4)
	w, err := New(root, filepath.Join(t.TempDir(), "dist"), 50*time.Millisecond, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))

	sub := filepath.Join(root, "docs")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// give the watcher a moment to register the new directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "guide.html"), []byte("<p>hi</p>"), 0o644))

	select {
	case paths := <-changes:
		assert.NotEmpty(t, paths)
	case <-time.After(3 * time.Second):
		t.Fatal("expected change notification")
	}
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	root := t.TempDir()

	changes := make(chan []string, 4)
	w, err := New(root, filepath.Join(t.TempDir(), "dist"), 50*time.Millisecond, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".swapfile"), []byte("x"), 0o644))

	select {
	case paths := <-changes:
		t.Fatalf("unexpected notification for hidden file: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}
}
