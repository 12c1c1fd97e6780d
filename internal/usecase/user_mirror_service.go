package usecase

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/riskibarqy/quiniela/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"

	"go.opentelemetry.io/otel/attribute"
)

const defaultMirrorWorkers = 4

type ReconcileResult struct {
	Pending  int `json:"pending"`
	Mirrored int `json:"mirrored"`
	Failed   int `json:"failed"`
}

// UserMirrorService copies authoritative user rows into the document store.
// Writes that fail stay in the outbox until a reconcile pass succeeds.
type UserMirrorService struct {
	users   user.Repository
	mirror  user.MirrorRepository
	outbox  user.MirrorOutbox
	logger  *logging.Logger
	metrics MetricsRecorder
	workers int
}

func NewUserMirrorService(
	users user.Repository,
	mirror user.MirrorRepository,
	outbox user.MirrorOutbox,
	workers int,
	metrics MetricsRecorder,
	logger *logging.Logger,
) *UserMirrorService {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if workers < 1 {
		workers = defaultMirrorWorkers
	}

	return &UserMirrorService{
		users:   users,
		mirror:  mirror,
		outbox:  outbox,
		logger:  logger,
		metrics: metrics,
		workers: workers,
	}
}

// Sync writes the projection of item and clears its outbox entry unless a
// newer version was queued meanwhile. A failure is recorded on the outbox
// entry and returned; the authoritative row is never touched.
func (s *UserMirrorService) Sync(ctx context.Context, item user.User) (err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserMirrorService.Sync", attribute.Int64("user_id", item.ID))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if s.mirror == nil {
		return fmt.Errorf("%w: user mirror is not configured", ErrDependencyUnavailable)
	}

	if err := s.mirror.Upsert(ctx, item); err != nil {
		s.metrics.MirrorAttempt(mirrorOutcomeFailure)
		s.logger.WarnContext(ctx, "user mirror write failed", "user_id", item.ID, "username", item.Username, "error", err)
		if s.outbox != nil {
			if recErr := s.outbox.RecordFailure(ctx, item.ID, err.Error()); recErr != nil {
				s.logger.ErrorContext(ctx, "record mirror failure failed", "user_id", item.ID, "error", recErr)
			}
		}
		return fmt.Errorf("mirror user=%s: %w", item.Username, err)
	}
	s.metrics.MirrorAttempt(mirrorOutcomeSuccess)

	if s.outbox != nil {
		if err := s.outbox.MarkMirrored(ctx, item.ID, item.Version); err != nil {
			s.logger.WarnContext(ctx, "clear mirror outbox failed", "user_id", item.ID, "error", err)
		}
	}
	return nil
}

// Reconcile retries up to limit pending outbox entries.
func (s *UserMirrorService) Reconcile(ctx context.Context, limit int) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserMirrorService.Reconcile")
	defer span.End()

	if s.outbox == nil {
		return ReconcileResult{}, fmt.Errorf("%w: user mirror outbox is not configured", ErrDependencyUnavailable)
	}
	if limit <= 0 {
		return ReconcileResult{}, fmt.Errorf("%w: reconcile limit must be > 0", ErrInvalidInput)
	}

	ids, err := s.outbox.ListPending(ctx, limit)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list pending mirror entries: %w", err)
	}
	result := ReconcileResult{Pending: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	items, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("load pending users: %w", err)
	}

	found := make(map[int64]struct{}, len(items))
	for _, item := range items {
		found[item.ID] = struct{}{}
	}
	for _, userID := range ids {
		if _, ok := found[userID]; ok {
			continue
		}
		if err := s.outbox.MarkMirrored(ctx, userID, math.MaxInt64); err != nil {
			s.logger.WarnContext(ctx, "drop orphan mirror entry failed", "user_id", userID, "error", err)
		}
	}

	var mirrored atomic.Int32
	var failed atomic.Int32
	p := pool.New().WithContext(ctx).WithMaxGoroutines(s.workers)
	for _, item := range items {
		p.Go(func(ctx context.Context) error {
			if err := s.Sync(ctx, item); err != nil {
				failed.Add(1)
				return nil
			}
			mirrored.Add(1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return result, fmt.Errorf("reconcile mirror: %w", err)
	}

	result.Mirrored = int(mirrored.Load())
	result.Failed = int(failed.Load())
	if result.Mirrored > 0 || result.Failed > 0 {
		s.logger.InfoContext(ctx, "user mirror reconciled",
			"pending", result.Pending,
			"mirrored", result.Mirrored,
			"failed", result.Failed,
		)
	}
	return result, nil
}

// RunReconciler calls Reconcile every interval until ctx is done.
func (s *UserMirrorService) RunReconciler(ctx context.Context, interval time.Duration, batch int) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx, batch); err != nil {
				s.logger.WarnContext(ctx, "user mirror reconcile failed", "error", err)
			}
		}
	}
}
