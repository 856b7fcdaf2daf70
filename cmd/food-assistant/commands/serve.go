package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/askiada/food-assistant/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the food assistant over HTTP",
		Long: `serve answers POST /v1/ask {"query": "..."} with {"run_id": "...", "response": "..."}.
Prometheus metrics are exposed on GET /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			pipe, cleanup, err := a.foodPipeline(cmd.Context(), buildOptions{registerer: reg})
			if err != nil {
				return err
			}
			defer func() {
				cerr := cleanup.Close()
				if err == nil {
					err = cerr
				}
			}()

			srv, err := server.New(pipe, reg, a.log)
			if err != nil {
				return err
			}

			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")

	return cmd
}
