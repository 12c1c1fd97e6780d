package team

import (
	"fmt"
	"time"
)

// Team is a club synced from the sports-data provider. LeagueIDs collects
// every league the team was synced under.
type Team struct {
	TeamID      int64
	Name        string
	Logo        string
	Country     string
	Founded     *int
	LeagueIDs   []int64
	LastUpdated time.Time
}

func (t Team) Validate() error {
	if t.TeamID <= 0 {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

func (t Team) InLeague(leagueID int64) bool {
	for _, id := range t.LeagueIDs {
		if id == leagueID {
			return true
		}
	}
	return false
}
