package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	qb "github.com/riskibarqy/quiniela/internal/platform/querybuilder"
)

const pgUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}

// enqueueMirror marks version of userID for the document-store mirror inside
// the caller's transaction. An already queued user keeps its position and
// takes the newer version.
func enqueueMirror(ctx context.Context, tx *sqlx.Tx, userID, version int64) error {
	query, args, err := qb.InsertInto("user_mirror_outbox").
		Columns("user_id", "version").
		Values(userID, version).
		OnConflictDoUpdate("(user_id)", "version = GREATEST(user_mirror_outbox.version, EXCLUDED.version)").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build enqueue mirror query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("enqueue mirror for user %d: %w", userID, err)
	}
	return nil
}
