package apifootball

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/quiniela/internal/usecase"
)

// envelope is the common API-Football response wrapper. Errors is either an
// empty array or an object keyed by field when the request was rejected.
type envelope[T any] struct {
	Get      string `json:"get"`
	Errors   any    `json:"errors"`
	Results  int    `json:"results"`
	Paging   paging `json:"paging"`
	Response []T    `json:"response"`
}

type errorCarrier interface {
	errorMessage() string
}

func (e *envelope[T]) errorMessage() string {
	return formatProviderErrors(e.Errors)
}

type paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type leagueItem struct {
	League struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
		Logo string `json:"logo"`
	} `json:"league"`
	Country struct {
		Name string  `json:"name"`
		Code *string `json:"code"`
		Flag *string `json:"flag"`
	} `json:"country"`
	Seasons []struct {
		Year    int    `json:"year"`
		Start   string `json:"start"`
		End     string `json:"end"`
		Current bool   `json:"current"`
	} `json:"seasons"`
}

type teamItem struct {
	Team struct {
		ID       int64   `json:"id"`
		Name     string  `json:"name"`
		Code     *string `json:"code"`
		Country  string  `json:"country"`
		Founded  *int    `json:"founded"`
		National bool    `json:"national"`
		Logo     string  `json:"logo"`
	} `json:"team"`
}

type fixtureItem struct {
	Fixture struct {
		ID        int64   `json:"id"`
		Referee   *string `json:"referee"`
		Timezone  string  `json:"timezone"`
		Date      string  `json:"date"`
		Timestamp int64   `json:"timestamp"`
		Venue     struct {
			ID   *int64  `json:"id"`
			Name *string `json:"name"`
			City *string `json:"city"`
		} `json:"venue"`
		Status struct {
			Long    string `json:"long"`
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Logo    string `json:"logo"`
		Season  int    `json:"season"`
		Round   string `json:"round"`
	} `json:"league"`
	Teams struct {
		Home fixtureTeam `json:"home"`
		Away fixtureTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type fixtureTeam struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Winner *bool  `json:"winner"`
}

type oddsItem struct {
	Fixture struct {
		ID int64 `json:"id"`
	} `json:"fixture"`
	Update     string `json:"update"`
	Bookmakers []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Bets []struct {
			ID     int64  `json:"id"`
			Name   string `json:"name"`
			Values []struct {
				Value flexString `json:"value"`
				Odd   flexString `json:"odd"`
			} `json:"values"`
		} `json:"bets"`
	} `json:"bookmakers"`
}

// flexString accepts a JSON string or number. Bet values are strings for the
// 1X2 market but numeric for handicap and totals markets.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		*f = flexString(unquoted)
		return nil
	}
	*f = flexString(raw)
	return nil
}

func (i leagueItem) toExternal() usecase.ExternalLeague {
	seasons := make([]usecase.ExternalSeason, 0, len(i.Seasons))
	for _, season := range i.Seasons {
		seasons = append(seasons, usecase.ExternalSeason{Year: season.Year, Current: season.Current})
	}

	return usecase.ExternalLeague{
		LeagueID: i.League.ID,
		Name:     strings.TrimSpace(i.League.Name),
		Type:     i.League.Type,
		Logo:     i.League.Logo,
		Country:  strings.TrimSpace(i.Country.Name),
		Seasons:  seasons,
	}
}

func (i teamItem) toExternal() usecase.ExternalTeam {
	return usecase.ExternalTeam{
		TeamID:   i.Team.ID,
		Name:     strings.TrimSpace(i.Team.Name),
		Code:     derefString(i.Team.Code),
		Country:  strings.TrimSpace(i.Team.Country),
		Founded:  i.Team.Founded,
		National: i.Team.National,
		Logo:     i.Team.Logo,
	}
}

func (i fixtureItem) toExternal() usecase.ExternalFixture {
	var kickoff time.Time
	if i.Fixture.Timestamp > 0 {
		kickoff = time.Unix(i.Fixture.Timestamp, 0).UTC()
	}
	if parsed, err := time.Parse(time.RFC3339, i.Fixture.Date); err == nil {
		kickoff = parsed.UTC()
	}

	return usecase.ExternalFixture{
		FixtureID: i.Fixture.ID,
		KickoffAt: kickoff,
		Timestamp: i.Fixture.Timestamp,
		Venue:     derefString(i.Fixture.Venue.Name),
		Status:    i.Fixture.Status.Short,
		Elapsed:   i.Fixture.Status.Elapsed,
		League: usecase.ExternalLeagueRef{
			ID:      i.League.ID,
			Name:    i.League.Name,
			Country: i.League.Country,
			Logo:    i.League.Logo,
			Season:  i.League.Season,
			Round:   i.League.Round,
		},
		Home:      usecase.ExternalTeamRef{ID: i.Teams.Home.ID, Name: i.Teams.Home.Name, Logo: i.Teams.Home.Logo},
		Away:      usecase.ExternalTeamRef{ID: i.Teams.Away.ID, Name: i.Teams.Away.Name, Logo: i.Teams.Away.Logo},
		HomeGoals: i.Goals.Home,
		AwayGoals: i.Goals.Away,
	}
}

func (i oddsItem) toExternal() usecase.ExternalOdds {
	out := usecase.ExternalOdds{
		FixtureID:  i.Fixture.ID,
		Bookmakers: make([]usecase.ExternalBookmaker, 0, len(i.Bookmakers)),
	}
	for _, bookmaker := range i.Bookmakers {
		mapped := usecase.ExternalBookmaker{
			ID:   bookmaker.ID,
			Name: bookmaker.Name,
			Bets: make([]usecase.ExternalBet, 0, len(bookmaker.Bets)),
		}
		for _, bet := range bookmaker.Bets {
			values := make([]usecase.ExternalBetValue, 0, len(bet.Values))
			for _, value := range bet.Values {
				values = append(values, usecase.ExternalBetValue{Value: string(value.Value), Odd: string(value.Odd)})
			}
			mapped.Bets = append(mapped.Bets, usecase.ExternalBet{ID: bet.ID, Name: bet.Name, Values: values})
		}
		out.Bookmakers = append(out.Bookmakers, mapped)
	}
	return out
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
