package http

import (
	"net/http"
	"strconv"

	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
)

// HistoryHandler serves the switch audit trail.
type HistoryHandler struct {
	SwitchService *service.SwitchService
}

// HandleList handles GET /v1/history
//
//	@Summary		Switch History
//	@Description	Returns the caller's persona switch history, newest first. Defaults to the 50 most recent entries.
//	@Tags			Switching
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum entries to return"
//	@Success		200		{object}	identitysdk.HistoryResponse
//	@Router			/v1/history [get].
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.SwitchService.History(r.Context(), userID(r), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]identitysdk.SwitchHistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = toHistoryEntry(e)
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.HistoryResponse{Entries: out})
}
