package http

import (
	"encoding/json"
	"net/http"

	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
)

// ActivePersonaHandler serves the active-persona endpoints: reading the
// current persona and switching manually.
type ActivePersonaHandler struct {
	PersonaService *service.PersonaService
	SwitchService  *service.SwitchService
}

// HandleGet handles GET /v1/personas/active
//
//	@Summary		Get Active Persona
//	@Description	Resolves the caller's active persona. Inconsistent state (stale pointer, missing flag) is repaired on read; a user with no personas gets a default one.
//	@Tags			Personas
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.PersonaInfo
//	@Failure		401	{object}	identitysdk.ErrorResponse
//	@Router			/v1/personas/active [get].
func (h *ActivePersonaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	persona, err := h.PersonaService.ActivePersona(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPersonaInfo(persona))
}

// HandleSwitch handles PUT /v1/personas/active
//
//	@Summary		Switch Persona
//	@Description	Activates the given persona. Switching to the already-active persona succeeds as a no-op and records no history entry.
//	@Tags			Personas
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.SwitchRequest	true	"Target persona"
//	@Success		200		{object}	identitysdk.SwitchResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		403		{object}	identitysdk.ErrorResponse
//	@Failure		404		{object}	identitysdk.ErrorResponse
//	@Router			/v1/personas/active [put].
func (h *ActivePersonaHandler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}
	if req.PersonaID == "" {
		writeBadRequest(w, "persona_id is required")
		return
	}

	result, err := h.SwitchService.SwitchManually(r.Context(), userID(r), req.PersonaID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSwitchResponse(result))
}
