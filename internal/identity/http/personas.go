package http

import (
	"encoding/json"
	"net/http"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
)

// PersonasHandler handles the persona CRUD endpoints.
type PersonasHandler struct {
	PersonaService *service.PersonaService
}

// HandleList handles GET /v1/personas
//
//	@Summary		List Personas
//	@Description	Returns all of the caller's personas in creation order.
//	@Tags			Personas
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.ListPersonasResponse
//	@Failure		401	{object}	identitysdk.ErrorResponse
//	@Router			/v1/personas [get].
func (h *PersonasHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	personas, err := h.PersonaService.Personas(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	infos := make([]identitysdk.PersonaInfo, len(personas))
	for i, p := range personas {
		infos[i] = toPersonaInfo(p)
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.ListPersonasResponse{Personas: infos})
}

// HandleCreate handles POST /v1/personas
//
//	@Summary		Create Persona
//	@Description	Creates a new persona. Name, visibility and payload fall back to type-specific defaults. The first persona a user creates becomes active.
//	@Tags			Personas
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.CreatePersonaRequest	true	"Persona creation request"
//	@Success		201		{object}	identitysdk.PersonaInfo
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Router			/v1/personas [post].
func (h *PersonasHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.CreatePersonaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}
	if req.Type == "" {
		writeBadRequest(w, "Persona type is required")
		return
	}

	payload, err := payloadFromMap(req.Payload)
	if err != nil {
		writeBadRequest(w, "Invalid persona payload")
		return
	}

	input := service.CreatePersonaInput{
		Name:       req.Name,
		Type:       domain.PersonaType(req.Type),
		Visibility: visibilityFromInfo(req.Visibility),
		Steps:      req.Steps,
	}
	if req.IsPublic != nil {
		input.IsPublic = *req.IsPublic
	}
	if len(req.Payload) > 0 {
		input.Payload = &payload
	}

	persona, err := h.PersonaService.CreatePersona(r.Context(), userID(r), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPersonaInfo(persona))
}

// HandleGet handles GET /v1/personas/{id}
//
//	@Summary		Get Persona
//	@Tags			Personas
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Persona ID (ULID)"
//	@Success		200	{object}	identitysdk.PersonaInfo
//	@Failure		403	{object}	identitysdk.ErrorResponse
//	@Failure		404	{object}	identitysdk.ErrorResponse
//	@Router			/v1/personas/{id} [get].
func (h *PersonasHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	persona, err := h.PersonaService.GetPersona(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPersonaInfo(persona))
}

// HandleUpdate handles PATCH /v1/personas/{id}
//
//	@Summary		Update Persona
//	@Description	Partial update restricted to name, is_public, visibility and payload. Attempts to change id, owner, type or created_at are rejected.
//	@Tags			Personas
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"Persona ID (ULID)"
//	@Param			request	body		identitysdk.UpdatePersonaRequest	true	"Partial update"
//	@Success		200		{object}	identitysdk.PersonaInfo
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		403		{object}	identitysdk.ErrorResponse
//	@Failure		404		{object}	identitysdk.ErrorResponse
//	@Router			/v1/personas/{id} [patch].
func (h *PersonasHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	// Decode into the domain patch directly: its rejected-fields block means
	// writes to immutable keys surface as ErrImmutableField instead of being
	// dropped on the floor.
	var patch domain.PersonaPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}

	persona, err := h.PersonaService.UpdatePersona(r.Context(), userID(r), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPersonaInfo(persona))
}

// HandleDelete handles DELETE /v1/personas/{id}
//
//	@Summary		Delete Persona
//	@Description	Deletes a persona. The last remaining persona cannot be deleted. Deleting the active persona hands activity to the oldest remaining one.
//	@Tags			Personas
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Persona ID (ULID)"
//	@Success		204	"Persona deleted"
//	@Failure		403	{object}	identitysdk.ErrorResponse
//	@Failure		404	{object}	identitysdk.ErrorResponse
//	@Failure		409	{object}	identitysdk.ErrorResponse	"last remaining persona"
//	@Router			/v1/personas/{id} [delete].
func (h *PersonasHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.PersonaService.DeletePersona(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
