package cmd

import (
	"github.com/atikulmunna/deskwatch/internal/config"
	"github.com/atikulmunna/deskwatch/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live event stream to dashboard clients",
	Long: `Watch the assistant's log tree and publish every batch over a WebSocket
at /ws. The initial roster and watch root are available at /api/roster and
/api/home; pipeline metrics at /api/stats and /healthz.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "7420", "HTTP listen port")
	cobra.CheckErr(viper.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port")))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	srv := server.New(p.hub, p.aggregator, cfg.Root, cfg.Port, logger.With("component", "server"))

	go func() {
		p.run(ctx)
		// The watch loop only ends early if its subscription failed; keep
		// serving the last known state until shutdown.
		if ctx.Err() == nil {
			logger.Error("watcher stopped, dashboard updates halted")
		}
	}()

	return srv.Start(ctx)
}
