package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonlayout/internal/server"
	"github.com/matzehuels/photonlayout/pkg/config"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve runs the HTTP API. It is configured from the environment:

  PHOTONLAYOUT_ADDR            listen address (default :8080)
  PHOTONLAYOUT_SESSION_CONFIG  session config file (TOML)
  PHOTONLAYOUT_REDIS_URL       route and diagram cache (optional)
  PHOTONLAYOUT_MONGO_URI       design store (default: files in PHOTONLAYOUT_STORE_DIR)
  PHOTONLAYOUT_STORE_DIR       design directory (default ./data/designs)
  PHOTONLAYOUT_ROUTE_TIMEOUT   time limit per build (default 30s)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PHOTONLAYOUT_ADDR)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	srv, err := server.Open(ctx, *cfg, loggerFromContext(ctx))
	if err != nil {
		return err
	}
	defer srv.Close()

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
