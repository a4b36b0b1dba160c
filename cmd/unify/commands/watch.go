package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwdslsh/unify-sub011/internal/logfields"
	"github.com/fwdslsh/unify-sub011/internal/watch"
)

// WatchCmd implements the 'watch' command: rebuild on change without
// serving.
type WatchCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)"`
	Output string `short:"o" help:"Output directory (overrides config)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if w.Source != "" {
		cfg.Source = w.Source
	}
	if w.Output != "" {
		cfg.Output.Directory = w.Output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder, closeCache, err := newBuilder(cfg, nil)
	if err != nil {
		return err
	}
	defer closeCache()

	if _, err := builder.Run(ctx); err != nil {
		return err
	}

	watcher, err := watch.New(cfg.Source, cfg.Output.Directory, 200*time.Millisecond, func([]string) {
		if _, err := builder.Run(ctx); err != nil {
			slog.Error("rebuild failed", logfields.Error(err))
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}
