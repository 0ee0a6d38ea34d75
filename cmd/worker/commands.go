package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/bootstrap"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "worker",
		Short:         "Print backend background worker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newRunCommand(),
		newDrainCommand(),
		newCleanupCommand(),
		newFailedCommand(),
		newRequeueCommand(),
	)
	return cmd
}

// withApp loads configuration, builds the application and hands it to fn
func withApp(ctx context.Context, fn func(*bootstrap.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, providers, err := bootstrap.NewLogger(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()
	defer func() {
		_ = providers.Shutdown(context.WithoutCancel(ctx))
	}()

	app, err := bootstrap.New(ctx, cfg, log, providers)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			log.Warn("Error while releasing resources", zap.Error(err))
		}
	}()

	return fn(app)
}

func newRunCommand() *cobra.Command {
	var withCleanup bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process work items until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(app *bootstrap.App) error {
				profiler, err := bootstrap.StartProfiler(app.Config, "worker", app.Telemetry, app.Logger)
				if err != nil {
					return err
				}
				defer func() {
					if err := profiler.Stop(); err != nil {
						app.Logger.Warn("Profiler shutdown failed", zap.Error(err))
					}
				}()

				if err := app.Coordinator.Start(ctx); err != nil {
					return err
				}
				if withCleanup && app.Config.Cleanup.Enabled {
					go app.Cleanup.Run(ctx, app.Config.Cleanup.Interval)
				}
				app.Logger.Info("Worker running", zap.String("worker_id", app.Coordinator.WorkerID()))

				<-ctx.Done()
				app.Logger.Info("Worker shutting down")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withCleanup, "cleanup", true, "also run the expired receipt sweep")
	return cmd
}

func newDrainCommand() *cobra.Command {
	var (
		limit   int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Process due work items once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return withApp(ctx, func(app *bootstrap.App) error {
				n, err := app.Coordinator.RunOnce(ctx, limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d work items\n", n)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum items to process")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Minute, "overall deadline")
	return cmd
}

func newCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired receipts and their final files once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *bootstrap.App) error {
				n, err := app.Cleanup.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired receipts\n", n)
				return nil
			})
		},
	}
	return cmd
}

func newFailedCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List work items that ran out of attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *bootstrap.App) error {
				items, err := app.WorkItems.FindFailed(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printFailed(cmd.OutOrStdout(), items)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum items to list")
	return cmd
}

func newRequeueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requeue [id]",
		Short: "Give a failed work item a fresh attempt budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid work item id %q: %w", args[0], err)
			}
			return withApp(cmd.Context(), func(app *bootstrap.App) error {
				if err := app.WorkItems.Requeue(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %s\n", id)
				return nil
			})
		},
	}
	return cmd
}

// printFailed writes one line per failed item: id, kind, subject, attempts and last error
func printFailed(w io.Writer, items []*queue.WorkItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No failed work items")
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			item.ID, item.Kind, item.SubjectID, item.Attempts, item.MaxAttempts, item.LastError); err != nil {
			return err
		}
	}
	return nil
}
