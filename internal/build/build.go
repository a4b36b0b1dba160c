// Package build walks a source tree, composes every page through the
// composition engine, and copies everything else into the output directory.
package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fwdslsh/unify-sub011/internal/cache"
	"github.com/fwdslsh/unify-sub011/internal/compose"
	"github.com/fwdslsh/unify-sub011/internal/config"
	"github.com/fwdslsh/unify-sub011/internal/logfields"
	"github.com/fwdslsh/unify-sub011/internal/metrics"
)

// PageResult records the outcome of composing a single page.
type PageResult struct {
	Source   string // relative to the source root
	Output   string // relative to the output directory
	Outcome  metrics.OutcomeLabel
	Warnings []error
	Err      error
	Duration time.Duration
}

// Summary aggregates a full build run.
type Summary struct {
	BuildID  string
	Pages    []PageResult
	Assets   int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Builder orchestrates full-site builds.
type Builder struct {
	cfg      *config.Config
	store    *cache.Store // nil disables the hash cache
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithCache attaches a content-hash store; nil leaves caching off.
func WithCache(store *cache.Store) Option {
	return func(b *Builder) { b.store = store }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// New creates a Builder for the given configuration.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func isPage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".md":
		return true
	}
	return false
}

// outputName maps a source page path to its output path. Markdown pages
// become .html; everything else keeps its name.
func outputName(rel string) string {
	if strings.EqualFold(filepath.Ext(rel), ".md") {
		return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	}
	return rel
}

// Run executes a full build and returns its summary. Page-level failures
// are collected in the summary; Run itself fails only on environment
// errors (unreadable source tree, unwritable output) or, with fail-fast
// enabled, on the first fatal page error.
func (b *Builder) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	buildID := uuid.NewString()
	sourceRoot, err := filepath.Abs(b.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	outputRoot, err := filepath.Abs(b.cfg.Output.Directory)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	b.logger.Info("build started",
		logfields.BuildID(buildID),
		logfields.SourceRoot(sourceRoot),
		logfields.Output(outputRoot))

	if b.cfg.Output.Clean {
		if err := cleanDir(outputRoot); err != nil {
			return nil, fmt.Errorf("clean output directory: %w", err)
		}
	}

	pages, assets, fragments, err := b.discover(sourceRoot, outputRoot)
	if err != nil {
		return nil, err
	}
	b.recorder.SetPagesTotal(len(pages))

	// Fragment changes can affect any page, so every page's cache key
	// mixes in a digest over all non-page inputs.
	fragDigest, err := digestFiles(fragments)
	if err != nil {
		return nil, fmt.Errorf("hash fragments: %w", err)
	}

	summary := &Summary{BuildID: buildID}

	copied, err := b.copyAssets(ctx, sourceRoot, outputRoot, assets)
	if err != nil {
		return nil, err
	}
	summary.Assets = copied

	summary.Pages, err = b.composeAll(ctx, sourceRoot, outputRoot, pages, fragDigest)
	if err != nil {
		return nil, err
	}

	for _, pr := range summary.Pages {
		switch pr.Outcome {
		case metrics.OutcomeSkipped:
			summary.Skipped++
		case metrics.OutcomeFailed:
			summary.Failed++
		}
	}

	summary.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(summary.Duration)
	b.logger.Info("build finished",
		logfields.BuildID(buildID),
		slog.Int("pages", len(summary.Pages)),
		slog.Int("assets", summary.Assets),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		logfields.DurationMS(float64(summary.Duration.Milliseconds())))
	return summary, nil
}

// discover walks the source tree and splits it into pages, assets and
// fragment inputs. Underscore-prefixed and hidden entries never emit
// output; underscore-prefixed files still count as fragment inputs for
// cache invalidation.
func (b *Builder) discover(sourceRoot, outputRoot string) (pages, assets, fragments []string, err error) {
	err = filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if path != sourceRoot && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				if strings.HasPrefix(name, "_") {
					// still walk underscore dirs for fragment hashing
					return b.collectFragments(path, &fragments)
				}
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, "_") {
				fragments = append(fragments, path)
			}
			return nil
		}
		if d.IsDir() {
			if path == outputRoot {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(sourceRoot, path)
		if relErr != nil {
			return relErr
		}
		if isPage(path) {
			pages = append(pages, rel)
		} else {
			assets = append(assets, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("walk source tree: %w", err)
	}
	sort.Strings(pages)
	sort.Strings(assets)
	sort.Strings(fragments)
	return pages, assets, fragments, nil
}

func (b *Builder) collectFragments(dir string, out *[]string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			*out = append(*out, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return filepath.SkipDir
}

// composeAll runs page composition through a bounded worker pool.
func (b *Builder) composeAll(ctx context.Context, sourceRoot, outputRoot string, pages []string, fragDigest string) ([]PageResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	concurrency := b.cfg.Build.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]PageResult, len(pages))
		fatal   error
	)
	for i, rel := range pages {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rel string) {
			defer wg.Done()
			defer func() { <-sem }()

			pr := b.composeOne(ctx, sourceRoot, outputRoot, rel, fragDigest)
			mu.Lock()
			results[i] = pr
			if pr.Err != nil && b.cfg.Build.FailFast && fatal == nil {
				fatal = fmt.Errorf("compose %s: %w", rel, pr.Err)
				cancel()
			}
			mu.Unlock()
		}(i, rel)
	}
	wg.Wait()

	if fatal != nil {
		return nil, fatal
	}
	// drop zero entries from pages never scheduled after cancellation
	out := results[:0]
	for _, pr := range results {
		if pr.Source != "" {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (b *Builder) composeOne(ctx context.Context, sourceRoot, outputRoot, rel, fragDigest string) PageResult {
	start := time.Now()
	pr := PageResult{Source: rel, Output: outputName(rel)}
	srcPath := filepath.Join(sourceRoot, rel)
	dstPath := filepath.Join(outputRoot, pr.Output)

	content, err := os.ReadFile(srcPath)
	if err != nil {
		pr.Err = err
		pr.Outcome = metrics.OutcomeFailed
		b.finishPage(&pr, start)
		return pr
	}
	pageHash := cache.HashBytes(append(content, fragDigest...))

	if b.store != nil {
		changed, err := b.store.HasChanged(ctx, rel, pageHash)
		if err != nil {
			b.logger.Warn("cache lookup failed", logfields.Page(rel), logfields.Error(err))
		} else if !changed {
			if _, statErr := os.Stat(dstPath); statErr == nil {
				pr.Outcome = metrics.OutcomeSkipped
				b.finishPage(&pr, start)
				return pr
			}
		}
	}

	res, err := compose.ComposePage(ctx, srcPath, sourceRoot, compose.Options{FailFast: b.cfg.Build.FailFast})
	pr.Warnings = res.Warnings
	if err != nil {
		pr.Err = err
		pr.Outcome = metrics.OutcomeFailed
		b.finishPage(&pr, start)
		return pr
	}

	if err := writeFile(dstPath, []byte(res.HTML)); err != nil {
		pr.Err = err
		pr.Outcome = metrics.OutcomeFailed
		b.finishPage(&pr, start)
		return pr
	}

	if b.store != nil {
		if err := b.store.Put(ctx, rel, pageHash); err != nil {
			b.logger.Warn("cache store failed", logfields.Page(rel), logfields.Error(err))
		}
	}

	if len(pr.Warnings) > 0 {
		pr.Outcome = metrics.OutcomeWarning
	} else {
		pr.Outcome = metrics.OutcomeSuccess
	}
	b.finishPage(&pr, start)
	return pr
}

func (b *Builder) finishPage(pr *PageResult, start time.Time) {
	pr.Duration = time.Since(start)
	b.recorder.ObserveComposeDuration(pr.Duration)
	b.recorder.IncPageOutcome(pr.Outcome)
	b.recorder.AddWarnings(len(pr.Warnings))

	switch {
	case pr.Err != nil:
		b.logger.Error("page failed", logfields.Page(pr.Source), logfields.Error(pr.Err))
	case pr.Outcome == metrics.OutcomeSkipped:
		b.logger.Debug("page unchanged", logfields.Page(pr.Source))
	default:
		b.logger.Info("page composed",
			logfields.Page(pr.Source),
			logfields.Output(pr.Output),
			logfields.Warnings(len(pr.Warnings)),
			logfields.DurationMS(float64(pr.Duration.Milliseconds())))
		for _, w := range pr.Warnings {
			b.logger.Warn("compose warning", logfields.Page(pr.Source), logfields.Error(w))
		}
	}
}

func (b *Builder) copyAssets(ctx context.Context, sourceRoot, outputRoot string, assets []string) (int, error) {
	copied := 0
	for _, rel := range assets {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		src := filepath.Join(sourceRoot, rel)
		dst := filepath.Join(outputRoot, rel)
		if err := copyFile(src, dst); err != nil {
			return copied, fmt.Errorf("copy asset %s: %w", rel, err)
		}
		copied++
	}
	return copied, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// cleanDir removes the directory's contents but keeps the directory,
// so a server rooted on it survives rebuilds.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// digestFiles produces a stable digest over the given files' paths and
// contents.
func digestFiles(paths []string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
