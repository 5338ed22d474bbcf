package http

import (
	"encoding/json"
	"net/http"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
)

// RulesHandler handles the context rule endpoints.
type RulesHandler struct {
	RuleService *service.RuleService
}

// HandleList handles GET /v1/rules
//
//	@Summary		List Rules
//	@Description	Returns every context rule the caller owns, priority order.
//	@Tags			Rules
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identitysdk.ListRulesResponse
//	@Router			/v1/rules [get].
func (h *RulesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rules, err := h.RuleService.Rules(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	infos := make([]identitysdk.RuleInfo, len(rules))
	for i, rule := range rules {
		infos[i] = toRuleInfo(rule)
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.ListRulesResponse{Rules: infos})
}

// HandleCreate handles POST /v1/rules
//
//	@Summary		Create Rule
//	@Description	Creates a context rule mapping a signal pattern onto one of the caller's personas. The pattern must be a valid regular expression.
//	@Tags			Rules
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		identitysdk.CreateRuleRequest	true	"Rule creation request"
//	@Success		201		{object}	identitysdk.RuleInfo
//	@Failure		400		{object}	identitysdk.ErrorResponse	"invalid kind or pattern"
//	@Failure		403		{object}	identitysdk.ErrorResponse
//	@Failure		404		{object}	identitysdk.ErrorResponse	"target persona not found"
//	@Router			/v1/rules [post].
func (h *RulesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}
	if req.PersonaID == "" {
		writeBadRequest(w, "persona_id is required")
		return
	}

	rule, err := h.RuleService.CreateRule(r.Context(), userID(r), service.CreateRuleInput{
		PersonaID: req.PersonaID,
		Kind:      domain.ContextKind(req.Kind),
		Pattern:   req.Pattern,
		Priority:  req.Priority,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toRuleInfo(rule))
}

// HandleUpdatePriority handles PATCH /v1/rules/{id}/priority
//
//	@Summary		Update Rule Priority
//	@Description	Changes a rule's priority. Priority is the only mutable rule field; pattern or kind changes require a new rule.
//	@Tags			Rules
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string									true	"Rule ID (ULID)"
//	@Param			request	body		identitysdk.UpdateRulePriorityRequest	true	"New priority"
//	@Success		200		{object}	identitysdk.RuleInfo
//	@Failure		403		{object}	identitysdk.ErrorResponse
//	@Failure		404		{object}	identitysdk.ErrorResponse
//	@Router			/v1/rules/{id}/priority [patch].
func (h *RulesHandler) HandleUpdatePriority(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.UpdateRulePriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON in request body")
		return
	}

	rule, err := h.RuleService.UpdateRulePriority(r.Context(), userID(r), r.PathValue("id"), req.Priority)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRuleInfo(rule))
}

// HandleDelete handles DELETE /v1/rules/{id}
//
//	@Summary		Delete Rule
//	@Tags			Rules
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Rule ID (ULID)"
//	@Success		204	"Rule deleted"
//	@Failure		403	{object}	identitysdk.ErrorResponse
//	@Failure		404	{object}	identitysdk.ErrorResponse
//	@Router			/v1/rules/{id} [delete].
func (h *RulesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.RuleService.DeleteRule(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
