package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/parkwise/internal/bootstrap"
	"github.com/railzwaylabs/parkwise/internal/clock"
	"github.com/railzwaylabs/parkwise/internal/config"
	"github.com/railzwaylabs/parkwise/internal/fee"
	"github.com/railzwaylabs/parkwise/internal/migration"
	"github.com/railzwaylabs/parkwise/internal/observability"
	"github.com/railzwaylabs/parkwise/internal/redis"
	"github.com/railzwaylabs/parkwise/internal/server"
	"github.com/railzwaylabs/parkwise/internal/session"
	"github.com/railzwaylabs/parkwise/internal/vehicle"
	"github.com/railzwaylabs/parkwise/internal/zone"
	"github.com/railzwaylabs/parkwise/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "parkwise",
		Short:         "Parking session and fee service",
		Version:       readVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default parkwise.yaml in . or /etc/parkwise)")

	path := func() config.Path { return config.Path(configPath) }
	root.AddCommand(
		newServeCmd(path),
		newMigrateCmd(path),
		newQuoteCmd(path),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(path func() config.Path) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(appOptions(path(),
				clock.Module,
				redis.Module,
				fee.Module,
				zone.Module,
				vehicle.Module,
				session.Module,
				migration.AutoModule,
				bootstrap.Module,
				server.Module,
			)...)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newMigrateCmd(path func() config.Path) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(appOptions(path(), migration.Module)...)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			if err := app.Start(ctx); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}
			return app.Stop(context.Background())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), readVersion())
		},
	}
}

// appOptions is the shared graph every long-running command builds on.
func appOptions(path config.Path, modules ...fx.Option) []fx.Option {
	opts := []fx.Option{
		fx.Supply(path),
		config.Module,
		observability.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Provide(registerSnowflake),
		db.Module,
	}
	return append(opts, modules...)
}

func registerSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.App.NodeID)
}

func readVersion() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return version
}
