package match

import (
	"context"
	"time"
)

// Filter narrows match listings. Zero values mean "no constraint" except
// ActiveOnly which is applied when set.
type Filter struct {
	LeagueID   int64
	Jornada    string
	ActiveOnly bool
	// IsActive filters on the exact flag when not nil and wins over ActiveOnly.
	IsActive *bool
	From     *time.Time
	To       *time.Time
}

// Repository describes match persistence needs from use cases.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Match, error)
	GetByFixtureID(ctx context.Context, fixtureID int64) (Match, bool, error)
	// Upsert keeps the stored jornada when item.Jornada is empty; new
	// documents then get DefaultJornada.
	Upsert(ctx context.Context, item Match) (Match, error)
	// UpdateStatus sets status and, when score is not nil, the score. It
	// reports whether a document was modified.
	UpdateStatus(ctx context.Context, fixtureID int64, status string, score *Score) (bool, error)
	// Deactivate clears is_active on exactly the given fixtures, or on every
	// match when fixtureIDs is empty. It returns the modified count.
	Deactivate(ctx context.Context, fixtureIDs []int64) (int64, error)
	SetJornadaActive(ctx context.Context, jornada string, active bool) (int64, error)
	// TouchJornada stamps last_updated on every match of the jornada and
	// returns how many were stamped.
	TouchJornada(ctx context.Context, jornada string) (int64, error)
	// ListActiveJornadas returns distinct jornada labels of active matches
	// ordered by earliest kickoff, then label.
	ListActiveJornadas(ctx context.Context) ([]JornadaSummary, error)
}
