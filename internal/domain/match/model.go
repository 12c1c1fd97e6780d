package match

import (
	"fmt"
	"time"
)

const DefaultJornada = "current"

// Match is one fixture with its 1X2 odds. FixtureID is the provider's
// natural key.
type Match struct {
	FixtureID     int64
	LeagueID      int64
	LeagueName    string
	LeagueCountry string
	LeagueLogo    string
	Season        int
	Round         string
	HomeTeam      TeamRef
	AwayTeam      TeamRef
	KickoffAt     time.Time
	Timestamp     int64
	Venue         string
	Status        string
	Elapsed       *int
	Score         Score
	Odds          Odds
	IsActive      bool
	Jornada       string
	LastUpdated   time.Time
}

type TeamRef struct {
	ID   int64
	Name string
	Logo string
}

// Score holds goals per side. Nil means the provider has not reported one.
type Score struct {
	Home *int
	Away *int
}

type Odds struct {
	Home float64
	Draw float64
	Away float64
}

func DefaultOdds() Odds {
	return Odds{Home: 2.0, Draw: 3.0, Away: 4.0}
}

func (m Match) Validate() error {
	if m.FixtureID <= 0 {
		return fmt.Errorf("fixture id is required")
	}
	if m.LeagueID <= 0 {
		return fmt.Errorf("match league id is required")
	}

	return nil
}

func (m Match) HasStarted() bool {
	return IsStartedStatus(m.Status)
}

// JornadaSummary describes one distinct jornada label among active matches.
type JornadaSummary struct {
	Name         string
	FirstKickoff time.Time
	MatchCount   int
}

// HasKickoff reports whether the provider gave the match a real date. Zero
// and epoch-or-earlier kickoffs mean the fixture is still undated.
func (m Match) HasKickoff() bool {
	return !m.KickoffAt.IsZero() && m.KickoffAt.Unix() > 0
}

// EarliestKickoff returns the minimum kickoff among dated items. ok is false
// when no item has a kickoff.
func EarliestKickoff(items []Match) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, item := range items {
		if !item.HasKickoff() {
			continue
		}
		if !found || item.KickoffAt.Before(earliest) {
			earliest = item.KickoffAt
			found = true
		}
	}
	return earliest, found
}
