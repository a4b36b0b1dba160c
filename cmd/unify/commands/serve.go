package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwdslsh/unify-sub011/internal/logfields"
	"github.com/fwdslsh/unify-sub011/internal/metrics"
	"github.com/fwdslsh/unify-sub011/internal/server"
	"github.com/fwdslsh/unify-sub011/internal/watch"
)

// ServeCmd implements the 'serve' command: initial build, file watching
// and a development server with live reload.
type ServeCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)"`
	Output string `short:"o" help:"Output directory (overrides config)"`
	Port   int    `short:"p" help:"Port to listen on (overrides config)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Source != "" {
		cfg.Source = s.Source
	}
	if s.Output != "" {
		cfg.Output.Directory = s.Output
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder *metrics.PrometheusRecorder
	if cfg.Serve.Metrics {
		recorder = metrics.NewPrometheusRecorder(nil)
	}

	builder, closeCache, err := newBuilder(cfg, recorder)
	if err != nil {
		return err
	}
	defer closeCache()

	hub := server.NewReloadHub()
	rebuild := func() {
		summary, err := builder.Run(ctx)
		if err != nil {
			slog.Error("rebuild failed", logfields.Error(err))
			return
		}
		hub.Broadcast(summary.BuildID)
	}

	if _, err := builder.Run(ctx); err != nil {
		return err
	}

	watcher, err := watch.New(cfg.Source, cfg.Output.Directory, 200*time.Millisecond, func([]string) {
		rebuild()
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	return server.New(cfg, hub, recorder).ListenAndServe(ctx)
}
