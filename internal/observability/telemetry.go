package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/quiniela/internal/config"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
)

// Options tunes Start per binary. Batch commands skip profiling.
type Options struct {
	Profiling bool
}

// Telemetry owns the process-wide logger and the tracing and profiling
// exporters started for it.
type Telemetry struct {
	Logger *logging.Logger

	steps []shutdownStep
}

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// Start builds the process logger, installs it as the default and starts the
// exporters enabled in cfg. On error everything already started is stopped.
func Start(cfg config.Config, opts Options) (*Telemetry, error) {
	t := &Telemetry{Logger: logging.New(cfg.LogLevel, cfg.LogFormat)}
	t.add("logger", func(context.Context) error {
		if err := t.Logger.Sync(); err != nil && !isIgnorableSyncError(err) {
			return err
		}
		return nil
	})

	if cfg.BetterStackEnabled {
		logger, shipper, err := newBetterStackLogger(cfg)
		if err != nil {
			return nil, err
		}
		t.Logger = logger
		t.add("betterstack", shipper.Close)
		logger.Info("betterstack enabled", "min_level", cfg.BetterStackMinLevel.String())
	}
	logging.SetDefault(t.Logger)

	starters := []struct {
		name  string
		on    bool
		start func(config.Config, *logging.Logger) (func(context.Context) error, error)
	}{
		{name: "uptrace", on: true, start: startUptrace},
		{name: "pyroscope", on: opts.Profiling, start: startPyroscope},
		{name: "pprof", on: opts.Profiling, start: startPprof},
	}
	for _, s := range starters {
		if !s.on {
			continue
		}
		stop, err := s.start(cfg, t.Logger)
		if err != nil {
			_ = t.Shutdown(context.Background())
			return nil, fmt.Errorf("start %s: %w", s.name, err)
		}
		t.add(s.name, stop)
	}

	return t, nil
}

func (t *Telemetry) add(name string, fn func(context.Context) error) {
	t.steps = append(t.steps, shutdownStep{name: name, fn: fn})
}

// Shutdown stops exporters in reverse start order, so the log shipper drains
// after everything else had a chance to log.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.steps) - 1; i >= 0; i-- {
		step := t.steps[i]
		if err := step.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", step.name, err))
		}
	}
	t.steps = nil
	return errors.Join(errs...)
}

func isIgnorableSyncError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
