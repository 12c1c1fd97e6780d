// Command assigncoins credits jornada coins to active users and drains the
// user mirror outbox.
//
//	assigncoins run --jornada week-12 --amount 50 --force
//	assigncoins reconcile --batch 500
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/quiniela/internal/app"
	"github.com/riskibarqy/quiniela/internal/config"
	"github.com/riskibarqy/quiniela/internal/observability"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assigncoins",
		Short:         "Virtual coin batch operations",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(withRuntime))
	root.AddCommand(newReconcileCmd(withRuntime))
	return root
}

type runtimeFunc func(cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error) error

// withRuntime loads config, builds the services and cancels on SIGINT/SIGTERM.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	tel, err := observability.Start(cfg, observability.Options{})
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}
	logger := tel.Logger.Named("assigncoins")
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "shutdown telemetry:", err)
		}
	}()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			logger.Error("close storage", "error", err)
		}
	}()

	return fn(ctx, rt)
}
