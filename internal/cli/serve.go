package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trading-journal/internal/api"
)

func newServeCmd(app *App) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal HTTP API",
		Example: `  journal serve
  journal serve --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}

			cfg := app.Config.Server
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return api.NewServer(svc, cfg, app.Logger).Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}

func newMigrateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Data migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "htf-trend",
		Short: "Rewrite legacy trend labels (Uptrend, Downtrend, Ranging) to Up, Down, Range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			n, err := svc.NormalizeHTFTrends(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]int64{"updated": n})
			}
			output.Success("✓ Updated %d trades", n)
			return nil
		},
	})

	return cmd
}
