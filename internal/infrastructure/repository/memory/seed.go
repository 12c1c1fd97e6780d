package memory

import (
	"strconv"
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/league"
	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/domain/team"
)

const (
	LeagueIDPremierLeague = 39
	LeagueIDLaLiga        = 140
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			LeagueID: LeagueIDPremierLeague,
			Name:     "Premier League",
			Country:  "England",
			Logo:     "https://media.api-sports.io/football/leagues/39.png",
			Type:     "League",
			Season:   2025,
			IsActive: true,
		},
		{
			LeagueID: LeagueIDLaLiga,
			Name:     "La Liga",
			Country:  "Spain",
			Logo:     "https://media.api-sports.io/football/leagues/140.png",
			Type:     "League",
			Season:   2025,
			IsActive: true,
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{TeamID: 33, Name: "Manchester United", Country: "England", Founded: intPtr(1878), LeagueIDs: []int64{LeagueIDPremierLeague}},
		{TeamID: 40, Name: "Liverpool", Country: "England", Founded: intPtr(1892), LeagueIDs: []int64{LeagueIDPremierLeague}},
		{TeamID: 42, Name: "Arsenal", Country: "England", Founded: intPtr(1886), LeagueIDs: []int64{LeagueIDPremierLeague}},
		{TeamID: 50, Name: "Manchester City", Country: "England", Founded: intPtr(1880), LeagueIDs: []int64{LeagueIDPremierLeague}},
		{TeamID: 529, Name: "Barcelona", Country: "Spain", Founded: intPtr(1899), LeagueIDs: []int64{LeagueIDLaLiga}},
		{TeamID: 541, Name: "Real Madrid", Country: "Spain", Founded: intPtr(1902), LeagueIDs: []int64{LeagueIDLaLiga}},
	}
}

// SeedMatches returns one upcoming jornada per league relative to now.
func SeedMatches(now time.Time) []match.Match {
	base := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, 2)
	ref := func(id int64, name string) match.TeamRef {
		return match.TeamRef{ID: id, Name: name, Logo: "https://media.api-sports.io/football/teams/" + itoa(id) + ".png"}
	}

	return []match.Match{
		{
			FixtureID:  1208021,
			LeagueID:   LeagueIDPremierLeague,
			LeagueName: "Premier League",
			Season:     2025,
			Round:      "Regular Season - 1",
			HomeTeam:   ref(33, "Manchester United"),
			AwayTeam:   ref(40, "Liverpool"),
			KickoffAt:  base.Add(15 * time.Hour),
			Venue:      "Old Trafford",
			Status:     match.StatusNotStarted,
			Odds:       match.Odds{Home: 2.9, Draw: 3.4, Away: 2.35},
			IsActive:   true,
			Jornada:    "jornada-1",
		},
		{
			FixtureID:  1208022,
			LeagueID:   LeagueIDPremierLeague,
			LeagueName: "Premier League",
			Season:     2025,
			Round:      "Regular Season - 1",
			HomeTeam:   ref(42, "Arsenal"),
			AwayTeam:   ref(50, "Manchester City"),
			KickoffAt:  base.Add(17*time.Hour + 30*time.Minute),
			Venue:      "Emirates Stadium",
			Status:     match.StatusNotStarted,
			Odds:       match.DefaultOdds(),
			IsActive:   true,
			Jornada:    "jornada-1",
		},
		{
			FixtureID:  1208401,
			LeagueID:   LeagueIDLaLiga,
			LeagueName: "La Liga",
			Season:     2025,
			Round:      "Regular Season - 1",
			HomeTeam:   ref(541, "Real Madrid"),
			AwayTeam:   ref(529, "Barcelona"),
			KickoffAt:  base.AddDate(0, 0, 7).Add(20 * time.Hour),
			Venue:      "Estadio Santiago Bernabeu",
			Status:     match.StatusNotStarted,
			Odds:       match.Odds{Home: 2.1, Draw: 3.6, Away: 3.2},
			IsActive:   true,
			Jornada:    "jornada-2",
		},
	}
}

func intPtr(v int) *int {
	return &v
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
