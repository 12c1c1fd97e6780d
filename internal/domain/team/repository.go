package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	// List returns every team when leagueID is zero.
	List(ctx context.Context, leagueID int64) ([]Team, error)
	GetByID(ctx context.Context, teamID int64) (Team, bool, error)
	// Upsert also adds every id in item.LeagueIDs to the stored league set.
	Upsert(ctx context.Context, item Team) (Team, error)
}
