package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	ListActive(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID int64) (League, bool, error)
	// Upsert merges the tracked field set into the document keyed by
	// LeagueID, creating it when missing, and returns the stored record.
	Upsert(ctx context.Context, item League) (League, error)
}
