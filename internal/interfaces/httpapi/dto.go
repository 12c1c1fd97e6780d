package httpapi

import (
	"time"

	"github.com/riskibarqy/quiniela/internal/domain/league"
	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/domain/team"
	"github.com/riskibarqy/quiniela/internal/domain/user"
	"github.com/riskibarqy/quiniela/internal/usecase"
	"github.com/shopspring/decimal"
)

type syncLeaguesRequest struct {
	Country string `json:"country" validate:"omitempty,max=100"`
	Season  int    `json:"season" validate:"omitempty,gte=1900,lte=2100"`
}

type syncTeamsRequest struct {
	LeagueID int64 `json:"league_id" validate:"required,gt=0"`
	Season   int   `json:"season" validate:"omitempty,gte=1900,lte=2100"`
}

type syncMatchesRequest struct {
	LeagueID  int64  `json:"league_id" validate:"required,gt=0"`
	Season    int    `json:"season" validate:"omitempty,gte=1900,lte=2100"`
	Date      string `json:"date" validate:"omitempty"`
	DaysRange int    `json:"days_range" validate:"gte=0,lte=90"`
}

type updateMatchRequest struct {
	Status *string   `json:"status" validate:"omitempty,max=10"`
	Score  *scoreDTO `json:"score"`
}

type createJornadaRequest struct {
	LeagueID    int64  `json:"league_id" validate:"required,gt=0"`
	Season      int    `json:"season" validate:"omitempty,gte=1900,lte=2100"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	JornadaName string `json:"jornada_name" validate:"required,max=50"`
}

type updateJornadaRequest struct {
	JornadaName string `json:"jornada_name" validate:"required,max=50"`
	IsActive    *bool  `json:"is_active"`
}

type assignCoinsRequest struct {
	JornadaName string           `json:"jornada_name" validate:"omitempty,max=50"`
	CoinsAmount *decimal.Decimal `json:"coins_amount"`
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type updateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

type messageDTO struct {
	Message string `json:"message"`
}

type leagueDTO struct {
	LeagueID    int64  `json:"league_id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Logo        string `json:"logo,omitempty"`
	Type        string `json:"type,omitempty"`
	Season      int    `json:"season,omitempty"`
	IsActive    bool   `json:"is_active"`
	LastUpdated string `json:"last_updated,omitempty"`
}

type leagueListDTO struct {
	Message string      `json:"message,omitempty"`
	Count   int         `json:"count"`
	Leagues []leagueDTO `json:"leagues"`
}

type teamDTO struct {
	TeamID      int64   `json:"team_id"`
	Name        string  `json:"name"`
	Logo        string  `json:"logo,omitempty"`
	Country     string  `json:"country,omitempty"`
	Founded     *int    `json:"founded"`
	LeagueIDs   []int64 `json:"league_ids,omitempty"`
	LastUpdated string  `json:"last_updated,omitempty"`
}

type teamListDTO struct {
	Message string    `json:"message,omitempty"`
	Count   int       `json:"count"`
	Teams   []teamDTO `json:"teams"`
}

type scoreDTO struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type oddsDTO struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

type matchDTO struct {
	FixtureID     int64    `json:"fixture_id"`
	LeagueID      int64    `json:"league_id"`
	LeagueName    string   `json:"league_name"`
	LeagueCountry string   `json:"league_country,omitempty"`
	LeagueLogo    string   `json:"league_logo,omitempty"`
	Season        int      `json:"season,omitempty"`
	Round         string   `json:"round,omitempty"`
	HomeTeamID    int64    `json:"home_team_id"`
	HomeTeamName  string   `json:"home_team_name"`
	HomeTeamLogo  string   `json:"home_team_logo,omitempty"`
	AwayTeamID    int64    `json:"away_team_id"`
	AwayTeamName  string   `json:"away_team_name"`
	AwayTeamLogo  string   `json:"away_team_logo,omitempty"`
	Date          string   `json:"date"`
	Timestamp     int64    `json:"timestamp,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Status        string   `json:"status"`
	Elapsed       *int     `json:"elapsed"`
	Score         scoreDTO `json:"score"`
	Odds          oddsDTO  `json:"odds"`
	IsActive      bool     `json:"is_active"`
	Jornada       string   `json:"jornada"`
	LastUpdated   string   `json:"last_updated,omitempty"`
}

type matchListDTO struct {
	Message        string     `json:"message,omitempty"`
	Count          int        `json:"count"`
	Matches        []matchDTO `json:"matches"`
	ActiveJornadas []string   `json:"active_jornadas,omitempty"`
}

type matchMutationDTO struct {
	Message string   `json:"message"`
	Match   matchDTO `json:"match"`
}

type jornadaDTO struct {
	Name         string `json:"name"`
	FirstKickoff string `json:"first_kickoff"`
	MatchCount   int    `json:"match_count"`
}

type jornadaListDTO struct {
	ActiveJornadas []string     `json:"active_jornadas"`
	Jornadas       []jornadaDTO `json:"jornadas"`
}

type jornadaMutationDTO struct {
	Message  string `json:"message"`
	Modified int64  `json:"modified"`
}

type assignCoinsDTO struct {
	Message       string  `json:"message"`
	AssignedCount int     `json:"assigned_count"`
	CoinsAmount   float64 `json:"coins_amount"`
}

type userDTO struct {
	ID                  int64  `json:"id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	VirtualCoins        string `json:"virtual_coins"`
	LastCoinsAssignment string `json:"last_coins_assignment,omitempty"`
	IsStaff             bool   `json:"is_staff"`
	DateJoined          string `json:"date_joined"`
}

type authDTO struct {
	Message          string  `json:"message"`
	User             userDTO `json:"user"`
	Access           string  `json:"access"`
	Refresh          string  `json:"refresh"`
	AccessExpiresAt  string  `json:"access_expires_at"`
	RefreshExpiresAt string  `json:"refresh_expires_at"`
	CoinsAssigned    bool    `json:"coins_assigned"`
}

type tokenDTO struct {
	Access          string `json:"access"`
	AccessExpiresAt string `json:"access_expires_at"`
}

func leaguesToDTO(items []league.League) []leagueDTO {
	out := make([]leagueDTO, 0, len(items))
	for _, v := range items {
		out = append(out, leagueDTO{
			LeagueID:    v.LeagueID,
			Name:        v.Name,
			Country:     v.Country,
			Logo:        v.Logo,
			Type:        v.Type,
			Season:      v.Season,
			IsActive:    v.IsActive,
			LastUpdated: formatTime(v.LastUpdated),
		})
	}
	return out
}

func teamsToDTO(items []team.Team) []teamDTO {
	out := make([]teamDTO, 0, len(items))
	for _, v := range items {
		out = append(out, teamDTO{
			TeamID:      v.TeamID,
			Name:        v.Name,
			Logo:        v.Logo,
			Country:     v.Country,
			Founded:     v.Founded,
			LeagueIDs:   v.LeagueIDs,
			LastUpdated: formatTime(v.LastUpdated),
		})
	}
	return out
}

func matchToDTO(v match.Match) matchDTO {
	return matchDTO{
		FixtureID:     v.FixtureID,
		LeagueID:      v.LeagueID,
		LeagueName:    v.LeagueName,
		LeagueCountry: v.LeagueCountry,
		LeagueLogo:    v.LeagueLogo,
		Season:        v.Season,
		Round:         v.Round,
		HomeTeamID:    v.HomeTeam.ID,
		HomeTeamName:  v.HomeTeam.Name,
		HomeTeamLogo:  v.HomeTeam.Logo,
		AwayTeamID:    v.AwayTeam.ID,
		AwayTeamName:  v.AwayTeam.Name,
		AwayTeamLogo:  v.AwayTeam.Logo,
		Date:          formatTime(v.KickoffAt),
		Timestamp:     v.Timestamp,
		Venue:         v.Venue,
		Status:        v.Status,
		Elapsed:       v.Elapsed,
		Score:         scoreDTO{Home: v.Score.Home, Away: v.Score.Away},
		Odds:          oddsDTO{Home: v.Odds.Home, Draw: v.Odds.Draw, Away: v.Odds.Away},
		IsActive:      v.IsActive,
		Jornada:       v.Jornada,
		LastUpdated:   formatTime(v.LastUpdated),
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, v := range items {
		out = append(out, matchToDTO(v))
	}
	return out
}

func matchListingToDTO(message string, listing usecase.MatchListing) matchListDTO {
	items := matchesToDTO(listing.Matches)
	return matchListDTO{
		Message:        message,
		Count:          len(items),
		Matches:        items,
		ActiveJornadas: listing.ActiveJornadas,
	}
}

func jornadasToDTO(items []match.JornadaSummary) jornadaListDTO {
	out := jornadaListDTO{
		ActiveJornadas: make([]string, 0, len(items)),
		Jornadas:       make([]jornadaDTO, 0, len(items)),
	}
	for _, v := range items {
		out.ActiveJornadas = append(out.ActiveJornadas, v.Name)
		out.Jornadas = append(out.Jornadas, jornadaDTO{
			Name:         v.Name,
			FirstKickoff: formatTime(v.FirstKickoff),
			MatchCount:   v.MatchCount,
		})
	}
	return out
}

func userToDTO(v user.User) userDTO {
	out := userDTO{
		ID:           v.ID,
		Username:     v.Username,
		Email:        v.Email,
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		VirtualCoins: v.VirtualCoins.StringFixed(2),
		IsStaff:      v.IsStaff,
		DateJoined:   formatTime(v.CreatedAt),
	}
	if v.LastCoinsAssignment != nil {
		out.LastCoinsAssignment = formatTime(*v.LastCoinsAssignment)
	}
	return out
}

func authResultToDTO(message string, result usecase.AuthResult) authDTO {
	return authDTO{
		Message:          message,
		User:             userToDTO(result.User),
		Access:           result.Tokens.AccessToken,
		Refresh:          result.Tokens.RefreshToken,
		AccessExpiresAt:  formatTime(result.Tokens.AccessExpiresAt),
		RefreshExpiresAt: formatTime(result.Tokens.RefreshExpiresAt),
		CoinsAssigned:    result.CoinsAssigned,
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
