package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/paw-chain/leasepay/api"
	"github.com/paw-chain/leasepay/app"
	"github.com/paw-chain/leasepay/app/telemetry"
)

const flagBlockInterval = "block-interval"

// ServeCmd runs the REST API and the metrics endpoint over the ledger.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only REST API and prometheus metrics",
		Long: `Serve the read-only REST API and prometheus metrics until interrupted.

The ledger database is held open for the lifetime of the process, so tx
commands cannot run against the same home at the same time. With
--block-interval set, serve seals an empty block on every tick so open
accounts keep settling.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}
			interval, err := cmd.Flags().GetDuration(flagBlockInterval)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tracer, err := telemetry.NewProvider(cfg.Tracing)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracer.Shutdown(shutdownCtx); err != nil {
					logger.Error("failed to flush traces", "err", err)
				}
			}()

			a, err := openApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if cfg.MetricsAddress != "" {
				meters, err := telemetry.NewMeterProvider()
				if err != nil {
					return err
				}
				defer meters.Shutdown(context.Background())
				metricsServer := StartPrometheusServer(cfg.MetricsAddress, logger)
				defer metricsServer.Close()
			}
			apiCfg, err := apiConfig(cfg)
			if err != nil {
				return err
			}

			// The producer must stop before the deferred Close releases the database.
			var wg sync.WaitGroup
			if interval > 0 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					produceBlocks(ctx, a, interval, logger)
				}()
			}
			err = api.NewServer(a, apiCfg, logger).Start(ctx)
			stop()
			wg.Wait()
			return err
		},
	}
	cmd.Flags().Duration(flagBlockInterval, 0, "seal an empty block at this interval; 0 disables")
	return cmd
}

func apiConfig(cfg Config) (*api.Config, error) {
	host, port, err := net.SplitHostPort(cfg.APIAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid api address %q: %w", cfg.APIAddress, err)
	}
	apiCfg := api.DefaultConfig()
	apiCfg.Host = host
	apiCfg.Port = port
	apiCfg.CORSOrigins = cfg.CORSOrigins
	apiCfg.RateLimitRPS = cfg.RateLimitRPS
	return apiCfg, nil
}

// produceBlocks seals a block per tick until ctx is done.
func produceBlocks(ctx context.Context, a *app.App, interval time.Duration, logger log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			height, err := a.EndBlock()
			if err != nil {
				logger.Error("failed to seal block", "err", err)
				continue
			}
			logger.Debug("sealed block", "height", height)
		}
	}
}
