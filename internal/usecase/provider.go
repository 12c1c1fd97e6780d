package usecase

import (
	"context"
	"time"
)

// FootballProvider is the sports-data source used by the sync services.
// Implementations return an empty slice with a nil error when the provider
// has no data, wrap ErrDependencyUnavailable on transport failures and
// ErrUpstreamRejected when the provider answers with an error payload.
type FootballProvider interface {
	ListLeagues(ctx context.Context, query LeagueQuery) ([]ExternalLeague, error)
	ListTeams(ctx context.Context, leagueID int64, season int) ([]ExternalTeam, error)
	ListFixtures(ctx context.Context, query FixtureQuery) ([]ExternalFixture, error)
	GetFixture(ctx context.Context, fixtureID int64) (ExternalFixture, bool, error)
	ListOdds(ctx context.Context, fixtureID int64) ([]ExternalOdds, error)
	// ListFixturesWithOdds attaches the odds lookup of every fixture to its
	// Odds field. Fixtures without an id are skipped.
	ListFixturesWithOdds(ctx context.Context, query FixtureQuery) ([]ExternalFixture, error)
}

type LeagueQuery struct {
	Country string
	Season  int
}

// FixtureQuery filters fixtures. Zero values are omitted from the request.
type FixtureQuery struct {
	LeagueID int64
	Season   int
	TeamID   int64
	Date     time.Time
	From     time.Time
	To       time.Time
}

type ExternalLeague struct {
	LeagueID int64
	Name     string
	Type     string
	Logo     string
	Country  string
	Seasons  []ExternalSeason
}

type ExternalSeason struct {
	Year    int
	Current bool
}

type ExternalTeam struct {
	TeamID   int64
	Name     string
	Code     string
	Country  string
	Founded  *int
	National bool
	Logo     string
}

type ExternalFixture struct {
	FixtureID int64
	KickoffAt time.Time
	Timestamp int64
	Venue     string
	Status    string
	Elapsed   *int
	League    ExternalLeagueRef
	Home      ExternalTeamRef
	Away      ExternalTeamRef
	HomeGoals *int
	AwayGoals *int
	Odds      []ExternalOdds
}

type ExternalLeagueRef struct {
	ID      int64
	Name    string
	Country string
	Logo    string
	Season  int
	Round   string
}

type ExternalTeamRef struct {
	ID   int64
	Name string
	Logo string
}

type ExternalOdds struct {
	FixtureID  int64
	Bookmakers []ExternalBookmaker
}

type ExternalBookmaker struct {
	ID   int64
	Name string
	Bets []ExternalBet
}

type ExternalBet struct {
	ID     int64
	Name   string
	Values []ExternalBetValue
}

// ExternalBetValue keeps the provider's odd verbatim; it is parsed when odds
// are mapped onto a match.
type ExternalBetValue struct {
	Value string
	Odd   string
}
