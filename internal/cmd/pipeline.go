package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atikulmunna/deskwatch/internal/aggregator"
	"github.com/atikulmunna/deskwatch/internal/config"
	"github.com/atikulmunna/deskwatch/internal/hub"
	"github.com/atikulmunna/deskwatch/internal/tailer"
	"github.com/atikulmunna/deskwatch/internal/watcher"
)

// pipeline wires watcher → aggregator → hub.
type pipeline struct {
	watcher    *watcher.Watcher
	aggregator *aggregator.Aggregator
	hub        *hub.Hub
}

func newPipeline(cfg config.Config, logger *slog.Logger) (*pipeline, error) {
	w, err := watcher.New(cfg.Root, cfg.Subdirs(), cfg.Debounce, logger.With("component", "watcher"))
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	h := hub.New(logger.With("component", "hub"))
	t := tailer.New(logger.With("component", "tailer"))
	agg := aggregator.New(t, h, h.Dropped, logger.With("component", "aggregator"))

	return &pipeline{watcher: w, aggregator: agg, hub: h}, nil
}

// run starts watching and blocks until ctx is cancelled or the watch
// subscription fails. The hub is closed on return.
func (p *pipeline) run(ctx context.Context) {
	defer p.hub.Close()

	go p.watcher.Start(ctx)
	p.aggregator.Announce(p.watcher.Root())
	p.aggregator.Start(ctx, p.watcher.Notifications())
}
