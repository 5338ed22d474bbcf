package http

import (
	"encoding/json"
	"net/http"

	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
)

// OnboardingHandler handles the per-persona onboarding endpoints.
type OnboardingHandler struct {
	OnboardingService *service.OnboardingService
}

// HandleState handles GET /v1/onboarding/{personaID}
//
//	@Summary		Get Onboarding State
//	@Description	Returns onboarding progress for a persona, creating the record on first access.
//	@Tags			Onboarding
//	@Produce		json
//	@Security		BearerAuth
//	@Param			personaID	path		string	true	"Persona ID (ULID)"
//	@Success		200			{object}	identitysdk.OnboardingStateInfo
//	@Failure		403			{object}	identitysdk.ErrorResponse
//	@Failure		404			{object}	identitysdk.ErrorResponse
//	@Router			/v1/onboarding/{personaID} [get].
func (h *OnboardingHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.OnboardingService.State(r.Context(), userID(r), r.PathValue("personaID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOnboardingInfo(state))
}

// HandleAdvance handles POST /v1/onboarding/{personaID}/advance
//
//	@Summary		Advance Onboarding
//	@Description	Marks the current step done and moves to the next one. Steps cannot be skipped; the terminal step is finished via the complete endpoint instead.
//	@Tags			Onboarding
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			personaID	path		string							true	"Persona ID (ULID)"
//	@Param			request		body		identitysdk.AdvanceStepRequest	true	"Step just finished"
//	@Success		200			{object}	identitysdk.OnboardingStateInfo
//	@Failure		409			{object}	identitysdk.ErrorResponse	"out of order, terminal step, or already complete"
//	@Router			/v1/onboarding/{personaID}/advance [post].
func (h *OnboardingHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.AdvanceStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}
	if req.Step == "" {
		writeBadRequest(w, "step is required")
		return
	}

	state, err := h.OnboardingService.Advance(r.Context(), userID(r), r.PathValue("personaID"), req.Step)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOnboardingInfo(state))
}

// HandleForm handles POST /v1/onboarding/{personaID}/form
//
//	@Summary		Save Onboarding Form Data
//	@Description	Merges values into the free-form data bag without moving the step machine.
//	@Tags			Onboarding
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			personaID	path		string						true	"Persona ID (ULID)"
//	@Param			request		body		identitysdk.FormDataRequest	true	"Values to merge"
//	@Success		200			{object}	identitysdk.OnboardingStateInfo
//	@Failure		409			{object}	identitysdk.ErrorResponse	"onboarding already complete"
//	@Router			/v1/onboarding/{personaID}/form [post].
func (h *OnboardingHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.FormDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}

	state, err := h.OnboardingService.SaveFormData(r.Context(), userID(r), r.PathValue("personaID"), req.FormData)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOnboardingInfo(state))
}

// HandleComplete handles POST /v1/onboarding/{personaID}/complete
//
//	@Summary		Complete Onboarding
//	@Description	Finishes the sequence. Only allowed when the current step is the terminal step; completion is permanent.
//	@Tags			Onboarding
//	@Produce		json
//	@Security		BearerAuth
//	@Param			personaID	path		string	true	"Persona ID (ULID)"
//	@Success		200			{object}	identitysdk.OnboardingStateInfo
//	@Failure		409			{object}	identitysdk.ErrorResponse	"not on terminal step or already complete"
//	@Router			/v1/onboarding/{personaID}/complete [post].
func (h *OnboardingHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	state, err := h.OnboardingService.Complete(r.Context(), userID(r), r.PathValue("personaID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toOnboardingInfo(state))
}

// HandleCheck handles GET /v1/onboarding/next
//
//	@Summary		Onboarding Check
//	@Description	Scans the caller's personas in creation order and reports the first one with incomplete onboarding.
//	@Tags			Onboarding
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.OnboardingCheckResponse
//	@Router			/v1/onboarding/next [get].
func (h *OnboardingHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	check, err := h.OnboardingService.CheckNeeded(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.OnboardingCheckResponse{
		Needed:    check.Needed,
		PersonaID: check.PersonaID,
	})
}
