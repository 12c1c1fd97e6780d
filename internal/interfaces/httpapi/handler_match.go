package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/quiniela/internal/domain/match"
	"github.com/riskibarqy/quiniela/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	query := r.URL.Query()
	leagueID, err := parseInt64Param(query.Get("league_id"), "league_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	isActive, err := parseBoolParam(query.Get("is_active"), "is_active")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	from, err := parseDateParam(query.Get("from"), "from", false)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	to, err := parseDateParam(query.Get("to"), "to", true)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	listing, err := h.matchService.ListMatches(ctx, usecase.ListMatchesInput{
		LeagueID: leagueID,
		Jornada:  query.Get("jornada"),
		IsActive: isActive,
		From:     from,
		To:       to,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchListingToDTO("", listing))
}

func (h *Handler) SyncMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncMatches")
	defer span.End()

	var req syncMatchesRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	listing, err := h.matchService.SyncMatches(ctx, usecase.SyncMatchesInput{
		LeagueID:  req.LeagueID,
		Season:    req.Season,
		Date:      date,
		DaysRange: req.DaysRange,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sync matches failed", "league_id", req.LeagueID, "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	message := fmt.Sprintf("Successfully synced %d matches", len(listing.Matches))
	writeSuccess(ctx, w, http.StatusOK, matchListingToDTO(message, listing))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	fixtureID, err := fixtureIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.GetMatch(ctx, fixtureID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
	defer span.End()

	fixtureID, err := fixtureIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateMatchRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdateMatchInput{Status: req.Status}
	if req.Score != nil {
		input.Score = &match.Score{Home: req.Score.Home, Away: req.Score.Away}
	}

	item, err := h.matchService.UpdateMatch(ctx, fixtureID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchMutationDTO{
		Message: "Match updated successfully",
		Match:   matchToDTO(item),
	})
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	fixtureID, err := fixtureIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.matchService.DeactivateMatch(ctx, fixtureID); err != nil {
		h.logger.WarnContext(ctx, "deactivate match failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, messageDTO{Message: "Match deactivated successfully"})
}

func fixtureIDFromPath(r *http.Request) (int64, error) {
	fixtureID, err := parseInt64Param(r.PathValue("fixture_id"), "fixture_id")
	if err != nil {
		return 0, err
	}
	if fixtureID == 0 {
		return 0, fmt.Errorf("%w: fixture_id is required", usecase.ErrInvalidInput)
	}
	return fixtureID, nil
}
