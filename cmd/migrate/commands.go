package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "internal/infrastructure/migration/sql"

type globalFlags struct {
	path     string
	logLevel string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Database migration commands",
		Long:          "Apply, inspect and create the postgres schema migrations. Without --path the migrations embedded in the binary are used.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.path, "path", "p", "", "migrations directory (default: embedded)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newUpCommand(flags),
		newDownCommand(flags),
		newStepsCommand(flags),
		newVersionCommand(flags),
		newForceCommand(flags),
		newCreateCommand(flags),
		newListCommand(flags),
	)
	return cmd
}

func (f *globalFlags) logger() (*zap.Logger, error) {
	cfg := logger.DefaultConfig()
	cfg.Level = f.logLevel
	cfg.TimeFormat = "2006-01-02 15:04:05"
	return logger.New(cfg)
}

// withMigrator opens the configured database and runs fn against it
func (f *globalFlags) withMigrator(fn func(*migration.Migrator, *zap.Logger) error) error {
	log, err := f.logger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var m *migration.Migrator
	if f.path == "" {
		m, err = migration.New(db, log)
	} else {
		m, err = migration.NewFromDir(db, f.path, log)
	}
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m, log)
}

func newUpCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Up()
			})
		},
	}
}

func newDownCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Down()
			})
		},
	}
}

func newStepsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "steps [n]",
		Short: "Apply n migrations, negative n rolls back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return flags.withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Steps(n)
			})
		},
	}
}

func newVersionCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			})
		},
	}
}

func newForceCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "force [version]",
		Short: "Force the recorded version after a failed migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return flags.withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				log.Warn("Forcing migration version", zap.Int("version", version))
				return m.Force(version)
			})
		},
	}
}

func newCreateCommand(flags *globalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new migration file pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := flags.path
			if dir == "" {
				dir = defaultMigrationsPath
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\nCreated %s\n", mf.UpPath, mf.DownPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description written into the file header")
	return cmd
}

func newListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				migrations []migration.Migration
				err        error
			)
			if flags.path == "" {
				migrations, err = migration.ListMigrations(migration.Files, "sql")
			} else {
				migrations, err = migration.ListMigrations(os.DirFS(flags.path), ".")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(migrations) == 0 {
				fmt.Fprintln(out, "No migrations found")
				return nil
			}
			for _, m := range migrations {
				down := ""
				if !m.HasDown {
					down = " (no down)"
				}
				fmt.Fprintf(out, "%06d  %s%s\n", m.Version, m.Name, down)
			}
			return nil
		},
	}
}
