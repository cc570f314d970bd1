package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcelayout/internal/server"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and sweeps over HTTP",
		Long: `Serve layouts and sweeps over HTTP.

Endpoints:
  POST /v1/layouts      lay out a graph or a generated topology
  POST /v1/sweeps       sweep cooling rates
  GET  /v1/sweeps/{id}  fetch a stored sweep
  GET  /healthz         liveness and build information
  GET  /metrics         Prometheus metrics

Results are cached in Redis when FORCELAYOUT_REDIS_URL (or cache.redis_url)
is set, otherwise in the local file cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewPrometheus(reg)
			observability.SetSimulationHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			c.Logger.Info("cache", "location", cacheLocation(cfg.Cache), "disabled", noCache || cfg.Cache.Disabled)
			return server.New(runner, metrics, cfg, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
