package coinledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceJornada Source = "jornada"
	SourceLogin   Source = "login"
	SourceAdmin   Source = "admin"
)

// Entry is one coin credit. Non-forced entries are unique per
// (UserID, Jornada); forced entries are always recorded.
type Entry struct {
	ID         string
	UserID     int64
	Jornada    string
	Source     Source
	Amount     decimal.Decimal
	Forced     bool
	AssignedAt time.Time
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.UserID <= 0 {
		return fmt.Errorf("entry user id is required")
	}
	if strings.TrimSpace(e.Jornada) == "" {
		return fmt.Errorf("entry jornada is required")
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("entry amount must be > 0")
	}
	if e.AssignedAt.IsZero() {
		return fmt.Errorf("entry assigned_at is required")
	}

	return nil
}

// Credit is the outcome of applying an entry.
type Credit struct {
	Entry    Entry
	Previous decimal.Decimal
	User     user.User
}

const loginKeyPrefix = "login:"

// LoginKey is the ledger jornada label used for login credits on t's UTC day.
func LoginKey(t time.Time) string {
	return loginKeyPrefix + t.UTC().Format("2006-01-02")
}

// IsReservedJornada reports whether name collides with the login key space.
// Jornadas may not use it or a jornada credit would block a day's login coins.
func IsReservedJornada(name string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), loginKeyPrefix)
}
