package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/quiniela/internal/usecase"
)

func (h *Handler) ListJornadas(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJornadas")
	defer span.End()

	items, err := h.jornadaService.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list jornadas failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jornadasToDTO(items))
}

func (h *Handler) CreateJornada(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateJornada")
	defer span.End()

	var req createJornadaRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	startDate, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	endDate, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.jornadaService.Create(ctx, usecase.CreateJornadaInput{
		LeagueID:  req.LeagueID,
		Season:    req.Season,
		StartDate: startDate,
		EndDate:   endDate,
		Name:      req.JornadaName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create jornada failed", "jornada", req.JornadaName, "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := matchesToDTO(matches)
	writeSuccess(ctx, w, http.StatusOK, matchListDTO{
		Message: fmt.Sprintf("Successfully created jornada %q with %d matches", req.JornadaName, len(items)),
		Count:   len(items),
		Matches: items,
	})
}

func (h *Handler) UpdateJornada(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateJornada")
	defer span.End()

	var req updateJornadaRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	var (
		modified int64
		err      error
	)
	if req.IsActive != nil {
		modified, err = h.jornadaService.SetActive(ctx, req.JornadaName, *req.IsActive)
	} else {
		modified, err = h.jornadaService.Touch(ctx, req.JornadaName)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jornadaMutationDTO{
		Message:  fmt.Sprintf("Successfully updated %d matches for jornada %q", modified, req.JornadaName),
		Modified: modified,
	})
}

func (h *Handler) DeleteJornada(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteJornada")
	defer span.End()

	name := r.URL.Query().Get("jornada_name")
	modified, err := h.jornadaService.Deactivate(ctx, name)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jornadaMutationDTO{
		Message:  fmt.Sprintf("Successfully deactivated %d matches for jornada %q", modified, name),
		Modified: modified,
	})
}
