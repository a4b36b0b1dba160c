package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/fwdslsh/unify-sub011/internal/build"
	"github.com/fwdslsh/unify-sub011/internal/cache"
	"github.com/fwdslsh/unify-sub011/internal/config"
	"github.com/fwdslsh/unify-sub011/internal/logfields"
	"github.com/fwdslsh/unify-sub011/internal/metrics"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"unify.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Compose the site into the output directory"`
	Serve ServeCmd `cmd:"" help:"Build the site and serve it with live reload"`
	Watch WatchCmd `cmd:"" help:"Build the site and rebuild on source changes"`
	Init  InitCmd  `cmd:"" help:"Initialize a new site configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configured file and re-applies logging from it.
// The --verbose flag always wins over the configured level.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level.SlogLevel()
	if root.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return cfg, nil
}

// newBuilder wires a Builder with the cache and recorder the config asks for.
// The returned closer releases the cache store, if any.
func newBuilder(cfg *config.Config, recorder *metrics.PrometheusRecorder) (*build.Builder, func(), error) {
	opts := []build.Option{}
	if recorder != nil {
		opts = append(opts, build.WithRecorder(recorder))
	}
	closer := func() {}
	if cfg.Build.CacheEnabled() {
		store, err := cache.Open(cfg.Build.CachePath)
		if err != nil {
			// a broken cache never blocks a build
			slog.Warn("cache unavailable, building without it", logfields.Error(err))
		} else {
			opts = append(opts, build.WithCache(store))
			closer = func() { _ = store.Close() }
		}
	}
	return build.New(cfg, opts...), closer, nil
}
