package league

import (
	"fmt"
	"time"
)

// League is a competition synced from the sports-data provider, keyed by
// the provider's league id.
type League struct {
	LeagueID    int64
	Name        string
	Country     string
	Logo        string
	Type        string
	Season      int
	IsActive    bool
	LastUpdated time.Time
}

func (l League) Validate() error {
	if l.LeagueID <= 0 {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
