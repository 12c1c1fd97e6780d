package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/quiniela/internal/usecase"
)

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := leaguesToDTO(leagues)
	writeSuccess(ctx, w, http.StatusOK, leagueListDTO{Count: len(items), Leagues: items})
}

func (h *Handler) SyncLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncLeagues")
	defer span.End()

	var req syncLeaguesRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagues, err := h.leagueService.SyncLeagues(ctx, usecase.SyncLeaguesInput{
		Country: req.Country,
		Season:  req.Season,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sync leagues failed", "country", req.Country, "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := leaguesToDTO(leagues)
	writeSuccess(ctx, w, http.StatusOK, leagueListDTO{
		Message: fmt.Sprintf("Successfully synced %d leagues", len(items)),
		Count:   len(items),
		Leagues: items,
	})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	leagueID, err := parseInt64Param(r.URL.Query().Get("league_id"), "league_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.teamService.ListTeams(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := teamsToDTO(teams)
	writeSuccess(ctx, w, http.StatusOK, teamListDTO{Count: len(items), Teams: items})
}

func (h *Handler) SyncTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncTeams")
	defer span.End()

	var req syncTeamsRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.teamService.SyncTeams(ctx, usecase.SyncTeamsInput{
		LeagueID: req.LeagueID,
		Season:   req.Season,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sync teams failed", "league_id", req.LeagueID, "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := teamsToDTO(teams)
	writeSuccess(ctx, w, http.StatusOK, teamListDTO{
		Message: fmt.Sprintf("Successfully synced %d teams", len(items)),
		Count:   len(items),
		Teams:   items,
	})
}
