package http

import (
	"encoding/json"
	"net/http"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
)

// ContextSwitchHandler accepts runtime context signals and runs them
// through the rule engine.
type ContextSwitchHandler struct {
	SwitchService *service.SwitchService
}

// HandleSignal handles POST /v1/context/switch
//
//	@Summary		Context Switch
//	@Description	Evaluates the caller's rules for the given signal kind against the value. First match under priority order wins; no match or a match of the current persona is a successful no-op.
//	@Tags			Switching
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.ContextSwitchRequest	true	"Context signal"
//	@Success		200		{object}	identitysdk.SwitchResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Router			/v1/context/switch [post].
func (h *ContextSwitchHandler) HandleSignal(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.ContextSwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}
	if req.Kind == "" {
		writeBadRequest(w, "kind is required")
		return
	}

	result, err := h.SwitchService.SwitchByContext(r.Context(), userID(r),
		domain.ContextKind(req.Kind), req.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSwitchResponse(result))
}
