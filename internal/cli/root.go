// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-journal/internal/config"
	"trading-journal/internal/journal"
	"trading-journal/internal/logging"
	"trading-journal/internal/store"
)

// Version information
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

const commandTimeout = 30 * time.Second

// App holds the application dependencies. The store is opened on first use
// so commands like version and config work without a database.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger

	store   store.Store
	service *journal.Service
}

// Service returns the journal service, opening the store if needed.
func (a *App) Service(ctx context.Context) (*journal.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	s, err := store.Open(ctx, a.Config.Database, a.Logger)
	if err != nil {
		return nil, err
	}
	a.store = s
	a.service = journal.NewService(s, a.Logger)
	a.Logger.Debug().Str("driver", a.Config.Database.Driver).Msg("Store opened")
	return a.service, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.service = nil, nil
	return err
}

// commandContext returns a context bounded by the default command timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, commandTimeout)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal - log trades, review R-multiples and setups",
		Long: `Trading journal for discretionary traders.

Log trades with their risk parameters and psychology notes, preview the
derived P&L, R-multiple and risk-reward before saving, and review win rate
and setup performance. Trades can be imported from broker CSV exports and
served to the web UI over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if !cfg.UI.ColorEnabled {
				color.NoColor = true
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newTradeCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newSetupCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newMigrateCmd(app))
	rootCmd.AddCommand(newServeCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trading Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the journal configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(redacted(app.Config))
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := config.Path(app.ConfigDir)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

// redacted returns a copy of cfg with the Postgres DSN masked.
func redacted(cfg *config.Config) config.Config {
	c := *cfg
	if c.Database.PostgresDSN != "" {
		c.Database.PostgresDSN = "****"
	}
	return c
}

func showConfig(output *Output, cfg *config.Config) {
	c := redacted(cfg)

	output.Bold("Server")
	output.Printf("  Environment:  %s\n", c.Env)
	output.Printf("  Address:      %s\n", c.Server.Addr())
	output.Printf("  Mode:         %s\n", c.Server.Mode)
	output.Println()

	output.Bold("Database")
	output.Printf("  Driver:       %s\n", c.Database.Driver)
	if c.Database.Driver == config.DriverPostgres {
		output.Printf("  DSN:          %s\n", orDash(c.Database.PostgresDSN))
	} else {
		output.Printf("  Path:         %s\n", c.Database.SQLitePath)
	}
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:        %s\n", c.Logging.Level)
	output.Printf("  Console:      %v\n", c.Logging.Console)
	output.Printf("  File:         %s\n", orDash(c.Logging.FilePath))
}
