package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	qb "github.com/riskibarqy/quiniela/internal/platform/querybuilder"
)

type MirrorOutboxRepository struct {
	db *sqlx.DB
}

func NewMirrorOutboxRepository(db *sqlx.DB) *MirrorOutboxRepository {
	return &MirrorOutboxRepository{db: db}
}

func (r *MirrorOutboxRepository) ListPending(ctx context.Context, limit int) ([]int64, error) {
	query, args, err := qb.Select("user_id").
		From("user_mirror_outbox").
		OrderBy("enqueued_at ASC", "user_id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending mirror query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list pending mirror: %w", err)
	}
	return ids, nil
}

// MarkMirrored deletes the entry unless a newer version was queued after the
// mirrored snapshot was read.
func (r *MirrorOutboxRepository) MarkMirrored(ctx context.Context, userID, version int64) error {
	query, args, err := markMirroredQuery(userID, version)
	if err != nil {
		return fmt.Errorf("build mark mirrored query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark user %d mirrored: %w", userID, err)
	}
	return nil
}

func markMirroredQuery(userID, version int64) (string, []any, error) {
	return qb.DeleteFrom("user_mirror_outbox").
		Where(qb.Eq("user_id", userID), qb.Expr("version <= ?", version)).
		ToSQL()
}

func (r *MirrorOutboxRepository) RecordFailure(ctx context.Context, userID int64, reason string) error {
	query, args, err := qb.Update("user_mirror_outbox").
		SetExpr("attempts", "attempts + 1").
		Set("last_error", reason).
		SetExpr("last_attempt_at", "NOW()").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record mirror failure query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record mirror failure for user %d: %w", userID, err)
	}
	return nil
}
