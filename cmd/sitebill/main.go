package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smallbiznis/sitebill/internal/config"
	"github.com/smallbiznis/sitebill/internal/contract"
	"github.com/smallbiznis/sitebill/internal/invoice"
	"github.com/smallbiznis/sitebill/internal/migration"
	"github.com/smallbiznis/sitebill/internal/observability"
	"github.com/smallbiznis/sitebill/internal/site"
	sitedomain "github.com/smallbiznis/sitebill/internal/site/domain"
	"github.com/smallbiznis/sitebill/internal/timeseries"
	"github.com/smallbiznis/sitebill/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startTimeout = 2 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sitebill",
		Short:        "Sitebill schema CLI",
		Version:      readVersionFromEnv(),
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newCheckCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(migration.Module)
		},
	}

	var (
		steps int
		force bool
	)
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
				if err := checkRollbackAllowed(cfg, force); err != nil {
					return err
				}
				sqlDB, err := conn.DB()
				if err != nil {
					return err
				}
				if err := migration.Rollback(sqlDB, cfg.DBType, steps); err != nil {
					return err
				}
				version, _, err := migration.CurrentVersion(sqlDB, cfg.DBType)
				if err != nil {
					return err
				}
				log.Info("schema rolled back", zap.Int("steps", steps), zap.Uint("version", version))
				return nil
			}))
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	down.Flags().BoolVar(&force, "force", false, "allow reverting migrations in production")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied and latest schema versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
				sqlDB, err := conn.DB()
				if err != nil {
					return err
				}
				current, dirty, err := migration.CurrentVersion(sqlDB, cfg.DBType)
				if err != nil {
					return err
				}
				latest, err := migration.LatestMigrationVersion(cfg.DBType)
				if err != nil {
					return err
				}
				checksum, err := migration.MigrationsChecksum(cfg.DBType)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "current=%d dirty=%t latest=%d checksum=%s\n", current, dirty, latest, checksum)
				return nil
			}))
		},
	}

	migrate.AddCommand(up, down, version)
	return migrate
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the database is reachable and the schema is current",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(
				site.Module,
				contract.Module,
				invoice.Module,
				timeseries.Module,
				fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, sites sitedomain.Service, log *zap.Logger) {
					lc.Append(fx.Hook{
						OnStart: func(ctx context.Context) error {
							sqlDB, err := conn.DB()
							if err != nil {
								return err
							}
							if err := sqlDB.PingContext(ctx); err != nil {
								return fmt.Errorf("ping database: %w", err)
							}
							if err := migration.EnsureLatest(sqlDB, cfg.DBType); err != nil {
								return err
							}
							list, err := sites.List(ctx, sitedomain.ListFilter{Limit: 1})
							if err != nil {
								return fmt.Errorf("query sites: %w", err)
							}
							log.Info("schema check passed", zap.String("db_type", cfg.DBType), zap.Bool("has_sites", len(list) > 0))
							return nil
						},
					})
				}),
			)
		},
	}
}

var errProductionRollback = errors.New("refusing to revert migrations in production without --force")

func checkRollbackAllowed(cfg config.Config, force bool) error {
	if cfg.IsProduction() && !force {
		return errProductionRollback
	}
	return nil
}

// runApp starts the infrastructure modules plus opts and stops them again.
func runApp(opts ...fx.Option) error {
	app := fx.New(append([]fx.Option{
		config.Module,
		observability.Module,
		db.Module,
	}, opts...)...)

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(context.Background())
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
