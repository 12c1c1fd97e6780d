package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
)

// User is the authoritative account row kept in the relational store.
type User struct {
	ID                  int64
	Username            string
	Email               string
	FirstName           string
	LastName            string
	PasswordHash        string
	IsActive            bool
	IsStaff             bool
	VirtualCoins        decimal.Decimal
	LastCoinsAssignment *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	// Version grows by one with every authoritative write. The mirror and
	// its outbox only accept a snapshot at least as new as what they hold.
	Version int64
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if u.VirtualCoins.IsNegative() {
		return fmt.Errorf("virtual coins cannot be negative")
	}

	return nil
}

// DueLoginCoins reports whether a login at now should credit coins: the user
// was never credited or the last credit is at least cooldown old.
func (u User) DueLoginCoins(now time.Time, cooldown time.Duration) bool {
	if u.LastCoinsAssignment == nil {
		return true
	}
	return now.Sub(*u.LastCoinsAssignment) >= cooldown
}

// AssignedAfter reports whether the last credit happened strictly after t.
func (u User) AssignedAfter(t time.Time) bool {
	return u.LastCoinsAssignment != nil && u.LastCoinsAssignment.After(t)
}

// Principal is the authenticated caller extracted from an access token.
type Principal struct {
	UserID   int64
	Username string
	IsStaff  bool
}

type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil
}
