package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/quiniela/internal/domain/coinledger"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	qb "github.com/riskibarqy/quiniela/internal/platform/querybuilder"
	"github.com/shopspring/decimal"
)

type CoinLedgerRepository struct {
	db *sqlx.DB
}

func NewCoinLedgerRepository(db *sqlx.DB) *CoinLedgerRepository {
	return &CoinLedgerRepository{db: db}
}

// Apply locks the user row, records the ledger entry, increments the balance
// and queues the mirror in one transaction. A non-forced entry that hits the
// partial unique index on (user_id, jornada) leaves everything untouched.
func (r *CoinLedgerRepository) Apply(ctx context.Context, entry coinledger.Entry) (coinledger.Credit, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("begin tx apply coin entry: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("virtual_coins").
		From("users").
		Where(qb.Eq("id", entry.UserID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("build lock user query: %w", err)
	}
	var previous decimal.Decimal
	if err := tx.GetContext(ctx, &previous, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return coinledger.Credit{}, false, user.ErrUserNotFound
		}
		return coinledger.Credit{}, false, fmt.Errorf("lock user %d: %w", entry.UserID, err)
	}

	insertQuery, insertArgs, err := qb.InsertModel("coin_assignments", coinAssignmentTableModel{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Jornada:    entry.Jornada,
		Source:     string(entry.Source),
		Amount:     entry.Amount.Round(2),
		Forced:     entry.Forced,
		AssignedAt: entry.AssignedAt.UTC(),
	}).
		OnConflictDoNothing("(user_id, jornada) WHERE NOT forced").
		ToSQL()
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("build insert coin assignment query: %w", err)
	}
	result, err := tx.ExecContext(ctx, insertQuery, insertArgs...)
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("insert coin assignment: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("rows affected insert coin assignment: %w", err)
	}
	if inserted == 0 {
		return coinledger.Credit{Entry: entry, Previous: previous}, false, nil
	}

	updateQuery, updateArgs, err := qb.Update("users").
		SetExpr("virtual_coins", "virtual_coins + ?", entry.Amount.Round(2)).
		Set("last_coins_assignment", entry.AssignedAt.UTC()).
		SetExpr("updated_at", "NOW()").
		SetExpr("version", "version + 1").
		Where(qb.Eq("id", entry.UserID)).
		Returning(userColumns).
		ToSQL()
	if err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("build credit user query: %w", err)
	}
	var row userTableModel
	if err := tx.GetContext(ctx, &row, updateQuery, updateArgs...); err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("credit user %d: %w", entry.UserID, err)
	}

	if err := enqueueMirror(ctx, tx, row.ID, row.Version); err != nil {
		return coinledger.Credit{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return coinledger.Credit{}, false, fmt.Errorf("commit apply coin entry tx: %w", err)
	}

	return coinledger.Credit{Entry: entry, Previous: previous, User: userFromRow(row)}, true, nil
}

func (r *CoinLedgerRepository) ListByUser(ctx context.Context, userID int64) ([]coinledger.Entry, error) {
	query, args, err := qb.Select("id", "user_id", "jornada", "source", "amount", "forced", "assigned_at").
		From("coin_assignments").
		Where(qb.Eq("user_id", userID)).
		OrderBy("assigned_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list coin assignments query: %w", err)
	}

	var rows []coinAssignmentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list coin assignments: %w", err)
	}

	out := make([]coinledger.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}
	return out, nil
}
