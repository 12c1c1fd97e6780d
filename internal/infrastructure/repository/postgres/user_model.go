package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/coinledger"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/shopspring/decimal"
)

const userColumns = "id, username, email, first_name, last_name, password_hash, is_active, is_staff, virtual_coins, last_coins_assignment, created_at, updated_at, version"

type userTableModel struct {
	ID                  int64           `db:"id"`
	Username            string          `db:"username"`
	Email               string          `db:"email"`
	FirstName           string          `db:"first_name"`
	LastName            string          `db:"last_name"`
	PasswordHash        string          `db:"password_hash"`
	IsActive            bool            `db:"is_active"`
	IsStaff             bool            `db:"is_staff"`
	VirtualCoins        decimal.Decimal `db:"virtual_coins"`
	LastCoinsAssignment sql.NullTime    `db:"last_coins_assignment"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
	Version             int64           `db:"version"`
}

type userInsertModel struct {
	Username     string          `db:"username"`
	Email        string          `db:"email"`
	FirstName    string          `db:"first_name"`
	LastName     string          `db:"last_name"`
	PasswordHash string          `db:"password_hash"`
	IsActive     bool            `db:"is_active"`
	IsStaff      bool            `db:"is_staff"`
	VirtualCoins decimal.Decimal `db:"virtual_coins"`
}

type coinAssignmentTableModel struct {
	ID         string          `db:"id"`
	UserID     int64           `db:"user_id"`
	Jornada    string          `db:"jornada"`
	Source     string          `db:"source"`
	Amount     decimal.Decimal `db:"amount"`
	Forced     bool            `db:"forced"`
	AssignedAt time.Time       `db:"assigned_at"`
}

func userFromRow(row userTableModel) user.User {
	out := user.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		IsStaff:      row.IsStaff,
		VirtualCoins: row.VirtualCoins,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		Version:      row.Version,
	}
	if row.LastCoinsAssignment.Valid {
		last := row.LastCoinsAssignment.Time.UTC()
		out.LastCoinsAssignment = &last
	}
	return out
}

func entryFromRow(row coinAssignmentTableModel) coinledger.Entry {
	return coinledger.Entry{
		ID:         row.ID,
		UserID:     row.UserID,
		Jornada:    row.Jornada,
		Source:     coinledger.Source(row.Source),
		Amount:     row.Amount,
		Forced:     row.Forced,
		AssignedAt: row.AssignedAt.UTC(),
	}
}
