package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	qb "github.com/riskibarqy/quiniela/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, item user.User) (user.User, error) {
	insertModel := userInsertModel{
		Username:     strings.TrimSpace(item.Username),
		Email:        strings.TrimSpace(item.Email),
		FirstName:    strings.TrimSpace(item.FirstName),
		LastName:     strings.TrimSpace(item.LastName),
		PasswordHash: item.PasswordHash,
		IsActive:     item.IsActive,
		IsStaff:      item.IsStaff,
		VirtualCoins: item.VirtualCoins.Round(2),
	}

	query, args, err := qb.InsertModel("users", insertModel).
		Returning(userColumns).
		ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build insert user query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, fmt.Errorf("begin tx create user: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var row userTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	if err := enqueueMirror(ctx, tx, row.ID, row.Version); err != nil {
		return user.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, fmt.Errorf("commit create user tx: %w", err)
	}

	return userFromRow(row), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("id", userID))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(username) = LOWER(?)", strings.TrimSpace(username)))
}

func (r *UserRepository) ListActive(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select(userColumns).
		From("users").
		Where(qb.Eq("is_active", true)).
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active users query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *UserRepository) ListByIDs(ctx context.Context, userIDs []int64) ([]user.User, error) {
	if len(userIDs) == 0 {
		return []user.User{}, nil
	}

	query, args, err := qb.Select(userColumns).
		From("users").
		Where(qb.In("id", userIDs)).
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users by ids query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, in user.ProfileUpdate) (user.User, error) {
	builder := qb.Update("users")
	if in.Email != nil {
		builder = builder.Set("email", strings.TrimSpace(*in.Email))
	}
	if in.FirstName != nil {
		builder = builder.Set("first_name", strings.TrimSpace(*in.FirstName))
	}
	if in.LastName != nil {
		builder = builder.Set("last_name", strings.TrimSpace(*in.LastName))
	}
	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		SetExpr("version", "version + 1").
		Where(qb.Eq("id", userID)).
		Returning(userColumns).
		ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build update user profile query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, fmt.Errorf("begin tx update user profile: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var row userTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("update user profile: %w", err)
	}
	if err := enqueueMirror(ctx, tx, row.ID, row.Version); err != nil {
		return user.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, fmt.Errorf("commit update user profile tx: %w", err)
	}

	return userFromRow(row), nil
}

func (r *UserRepository) getOne(ctx context.Context, condition qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns).
		From("users").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return userFromRow(row), true, nil
}

func (r *UserRepository) list(ctx context.Context, query string, args []any) ([]user.User, error) {
	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}
