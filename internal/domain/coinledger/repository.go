package coinledger

import "context"

// Repository applies credits against the authoritative user balance.
type Repository interface {
	// Apply records entry, increments the user's balance by entry.Amount and
	// stamps last_coins_assignment in one transaction. applied is false and
	// nothing changes when a non-forced entry for the same user and jornada
	// already exists.
	Apply(ctx context.Context, entry Entry) (credit Credit, applied bool, err error)
	ListByUser(ctx context.Context, userID int64) ([]Entry, error)
}
