package serve

import (
	"time"

	"github.com/spf13/cobra"

	"video-search/cmd/vcs/cmd/cli"
	"video-search/internal/api/server"
	"video-search/internal/app"
)

var (
	addr            string
	shutdownTimeout time.Duration
)

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from settings)")
	Cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Serve the search API.

- POST /search_video {"video_id", "query"} returns the best matching timestamp, 404 when none
- POST /api/v1/query runs a cross-modal query
- GET /api/v1/videos lists ingested videos
- GET /health and GET /metrics for probes and Prometheus`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		if addr == "" {
			addr = rt.Settings().Server.Addr
		}

		svc, cleanup, err := app.InitializeSearchService(cmd.Context(), rt.Config, rt.Logger)
		if err != nil {
			return err
		}
		defer cleanup()

		environment := "production"
		if rt.Settings().Development {
			environment = "development"
		}
		srv := server.NewServer(server.Config{
			Addr:         addr,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  2 * time.Minute,
			Environment:  environment,
		}, svc, rt.Logger)
		return srv.Run(cmd.Context(), shutdownTimeout)
	},
}
