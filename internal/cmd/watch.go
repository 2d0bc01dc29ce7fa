package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atikulmunna/deskwatch/internal/output"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream classified activity to the terminal",
	Long: `Watch the assistant's log tree and print each new entry along with the
role desks it moved. Supports colorized output and JSON mode.

Examples:
  deskwatch watch
  deskwatch watch --root /tmp/claude-home --output json`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	var renderer output.Renderer
	switch cfg.Output {
	case "json":
		renderer = output.NewJSONRenderer()
	default:
		renderer = output.NewTextRenderer()
	}

	events := p.hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.run(ctx)
	}()

	for msg := range events {
		if err := renderer.Render(msg.Event); err != nil {
			logger.Warn("render failed", "error", err)
		}
	}
	<-done
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\ndeskwatch shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
