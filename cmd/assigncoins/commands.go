package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/riskibarqy/quiniela/internal/app"
	"github.com/riskibarqy/quiniela/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type jornadaAssigner interface {
	AssignForJornada(ctx context.Context, input usecase.AssignJornadaInput) (usecase.AssignJornadaResult, error)
}

type mirrorReconciler interface {
	Reconcile(ctx context.Context, limit int) (usecase.ReconcileResult, error)
}

func newRunCmd(run runtimeFunc) *cobra.Command {
	var (
		jornada string
		amount  string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Credit coins to every active user for a jornada",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := parseAssignInput(jornada, amount, force)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				return assignJornada(ctx, rt.Coins, cmd.OutOrStdout(), input)
			})
		},
	}
	cmd.Flags().StringVar(&jornada, "jornada", "", "Jornada label (default: first active jornada)")
	cmd.Flags().StringVar(&amount, "amount", "", "Coins per user (default: COINS_DEFAULT_AMOUNT)")
	cmd.Flags().BoolVar(&force, "force", false, "Assign even when matches started or users were already credited")
	return cmd
}

func newReconcileCmd(run runtimeFunc) *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Retry pending user mirror writes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batch < 1 {
				return fmt.Errorf("--batch must be >= 1")
			}
			return run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				return reconcileMirror(ctx, rt.Mirror, cmd.OutOrStdout(), batch)
			})
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 500, "Maximum outbox rows to process")
	return cmd
}

func parseAssignInput(jornada, amount string, force bool) (usecase.AssignJornadaInput, error) {
	input := usecase.AssignJornadaInput{
		Jornada: strings.TrimSpace(jornada),
		Force:   force,
	}
	if raw := strings.TrimSpace(amount); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return usecase.AssignJornadaInput{}, fmt.Errorf("invalid --amount %q: %w", amount, err)
		}
		if !parsed.IsPositive() {
			return usecase.AssignJornadaInput{}, fmt.Errorf("--amount must be > 0")
		}
		input.Amount = parsed
	}
	return input, nil
}

func assignJornada(ctx context.Context, svc jornadaAssigner, out io.Writer, input usecase.AssignJornadaInput) error {
	result, err := svc.AssignForJornada(ctx, input)
	if err != nil {
		return err
	}

	kickoff := "unknown"
	if !result.EarliestKickoff.IsZero() {
		kickoff = result.EarliestKickoff.UTC().Format("2006-01-02 15:04 MST")
	}
	fmt.Fprintf(out, "jornada %q: %d matches, earliest kickoff %s\n", result.Jornada, result.MatchCount, kickoff)
	for _, credit := range result.Credited {
		fmt.Fprintf(out, "  credited %s: %s -> %s\n",
			credit.Username, credit.Previous.StringFixed(2), credit.Current.StringFixed(2))
	}
	for _, username := range result.Skipped {
		fmt.Fprintf(out, "  skipped %s: already credited for this jornada\n", username)
	}
	for _, username := range result.Failed {
		fmt.Fprintf(out, "  failed %s\n", username)
	}
	fmt.Fprintf(out, "assigned %s coins to %d users (%d skipped, %d failed, forced=%t)\n",
		result.Amount.StringFixed(2), len(result.Credited), len(result.Skipped), len(result.Failed), result.Forced)

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d users could not be credited", len(result.Failed))
	}
	return nil
}

func reconcileMirror(ctx context.Context, svc mirrorReconciler, out io.Writer, batch int) error {
	result, err := svc.Reconcile(ctx, batch)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "mirror reconcile: %d pending, %d mirrored, %d failed\n",
		result.Pending, result.Mirrored, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d users are still pending mirror", result.Failed)
	}
	return nil
}
