package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/quiniela/internal/usecase"
)

// AssignCoins credits every active user unconditionally. Each credit is
// still written to the ledger as a forced admin entry.
func (h *Handler) AssignCoins(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignCoins")
	defer span.End()

	var req assignCoinsRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.GrantInput{Jornada: req.JornadaName}
	if req.CoinsAmount != nil {
		input.Amount = *req.CoinsAmount
		if input.Amount.IsZero() {
			writeError(ctx, w, fmt.Errorf("%w: coins_amount must be > 0", usecase.ErrInvalidInput))
			return
		}
	}

	result, err := h.coinService.GrantAll(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "assign coins failed", "jornada", req.JornadaName, "error", err)
		writeError(ctx, w, err)
		return
	}

	amount, _ := result.Amount.Float64()
	writeSuccess(ctx, w, http.StatusOK, assignCoinsDTO{
		Message: fmt.Sprintf("Successfully assigned %s coins to %d users for jornada %q",
			result.Amount.StringFixed(2), result.AssignedCount, result.Jornada),
		AssignedCount: result.AssignedCount,
		CoinsAmount:   amount,
	})
}
