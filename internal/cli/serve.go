package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediabench/mediabench/internal/metrics"
	"github.com/mediabench/mediabench/internal/origin"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local asset tree over HTTP",
	Long: `Serve the local asset tree over HTTP for the local provider.

Responses carry no-store cache headers so benchmark fetches are never
answered from a cache. When Prometheus is enabled the server also
exposes /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var instr *metrics.Instrumentation
		if cfg.Metrics.EnablePrometheus {
			instr = metrics.NewInstrumentation()
		}

		srv := origin.NewServer(cfg.Origin.Listen, cfg.Origin.Root, instr)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}
