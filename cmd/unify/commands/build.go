package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source   string `short:"s" help:"Source directory (overrides config)"`
	Output   string `short:"o" help:"Output directory (overrides config)"`
	FailFast bool   `help:"Stop at the first page error"`
	NoCache  bool   `help:"Ignore the content-hash cache"`
	Clean    bool   `help:"Clean the output directory before building"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Source != "" {
		cfg.Source = b.Source
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.FailFast {
		cfg.Build.FailFast = true
	}
	if b.NoCache {
		off := false
		cfg.Build.Cache = &off
	}
	if b.Clean {
		cfg.Output.Clean = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder, closeCache, err := newBuilder(cfg, nil)
	if err != nil {
		return err
	}
	defer closeCache()

	summary, err := builder.Run(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d page(s) failed to compose", summary.Failed)
	}
	return nil
}
