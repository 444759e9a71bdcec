package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minbump/internal/api"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts    registryOpts
		listen  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver as a JSON API",
		Long: `Serve the resolver over HTTP. All requests share one session, so registry
metadata fetched for one request is reused by the next.

Routes:
  GET  /healthz
  POST /v1/updates                   {"dependency","required","roots":["name@version"],"expand_ranges"}
  GET  /v1/closure/{name}/{version}  ?expand=true  ?format=dot
  GET  /v1/versions/{name}
  GET  /v1/stats

Scoped names are passed URL-escaped, e.g. /v1/versions/@babel%2Fcore.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = c.Config.Listen
			}
			return c.runServe(cmd.Context(), listen, timeout, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config, 127.0.0.1:8080)")
	cmd.Flags().DurationVar(&timeout, "timeout", api.DefaultRequestTimeout, "per-request timeout")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, listen string, timeout time.Duration, opts registryOpts) error {
	opts.longLived = true
	session, closeSession, err := c.newSession(ctx, opts, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	srv := api.New(session, c.Logger, timeout)
	srv.Metrics().Register()
	printInfo("Serving on %s", StyleLink.Render("http://"+listen))
	if err := srv.ListenAndServe(ctx, listen); err != nil {
		return err
	}
	printSuccess("Server stopped")
	return nil
}
