// Package watch monitors a source tree and triggers debounced rebuilds.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fwdslsh/unify-sub011/internal/logfields"
)

// Watcher monitors a source tree recursively and invokes a callback after
// file changes settle. Output and hidden directories are excluded.
type Watcher struct {
	sourceRoot string
	outputRoot string
	onChange   func(paths []string)
	debounce   time.Duration

	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	mu       sync.Mutex
	stopChan chan struct{}
	pending  map[string]struct{}
	timer    *time.Timer
}

// New creates a Watcher over sourceRoot. onChange receives the batch of
// changed paths once events settle; outputRoot is ignored if it lives
// inside the source tree.
func New(sourceRoot, outputRoot string, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	absSource, err := filepath.Abs(sourceRoot)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	absOutput, err := filepath.Abs(outputRoot)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		sourceRoot: absSource,
		outputRoot: absOutput,
		onChange:   onChange,
		debounce:   debounce,
		watcher:    fsw,
		logger:     slog.Default(),
		stopChan:   make(chan struct{}),
		pending:    make(map[string]struct{}),
	}, nil
}

// Start adds the source tree to the watcher and begins the event loop.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.sourceRoot); err != nil {
		return err
	}
	w.logger.Info("watching source tree", logfields.SourceRoot(w.sourceRoot))
	go w.loop(ctx)
	return nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) skipDir(path string) bool {
	if path == w.outputRoot {
		return true
	}
	base := filepath.Base(path)
	return path != w.sourceRoot && strings.HasPrefix(base, ".")
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	// newly created directories need their own watch
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDir(event.Name) {
				if err := w.addRecursive(event.Name); err != nil {
					w.logger.Warn("watch new directory failed", logfields.Error(err))
				}
			}
			return
		}
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

// flush delivers the settled batch to the callback.
func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	if len(paths) == 0 || w.onChange == nil {
		return
	}
	w.logger.Debug("changes detected", slog.Int("files", len(paths)))
	w.onChange(paths)
}
