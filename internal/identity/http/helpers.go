package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/identitysdk"
	"github.com/venturemesh/identity/pkg/slogx"
)

// writeServiceError maps service errors onto the HTTP surface: validation
// failures are 400, missing resources 404, ownership violations 403 and
// invariant violations 409. Anything unrecognized is a 500 with the detail
// kept out of the response body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrInvalidPersonaType),
		errors.Is(err, service.ErrInvalidPattern),
		errors.Is(err, service.ErrInvalidContextKind),
		errors.Is(err, service.ErrImmutableField):
		httpx.WriteError(w, http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest, err.Error())

	case errors.Is(err, service.ErrPersonaNotFound),
		errors.Is(err, service.ErrRuleNotFound):
		httpx.WriteError(w, http.StatusNotFound, identitysdk.ErrorCodeNotFound, err.Error())

	case errors.Is(err, service.ErrNotOwner):
		httpx.WriteError(w, http.StatusForbidden, identitysdk.ErrorCodeForbidden, err.Error())

	case errors.Is(err, service.ErrLastPersona),
		errors.Is(err, service.ErrOnboardingComplete),
		errors.Is(err, service.ErrStepNotCurrent),
		errors.Is(err, service.ErrNotFinalStep):
		httpx.WriteError(w, http.StatusConflict, identitysdk.ErrorCodeConflict, err.Error())

	default:
		log.Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, identitysdk.ErrorCodeServerError, "internal error")
	}
}

// writeBadRequest is the shorthand for request parsing failures.
func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest, desc)
}

// userID pulls the authenticated subject out of the request context. The
// authn middleware guarantees it is present on protected routes.
func userID(r *http.Request) string {
	return httpx.UserIDFromCtx(r.Context())
}

/* Domain to wire conversions */

func toPersonaInfo(p domain.Persona) identitysdk.PersonaInfo {
	info := identitysdk.PersonaInfo{
		ID:       p.ID,
		Name:     p.Name,
		Type:     string(p.Type),
		IsActive: p.IsActive,
		IsPublic: p.IsPublic,
		Visibility: identitysdk.VisibilityInfo{
			DiscoverableAs: p.Visibility.DiscoverableAs,
			VisibleTo:      p.Visibility.VisibleTo,
			HiddenFields:   p.Visibility.HiddenFields,
		},
		Payload:   payloadToMap(p.Payload),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.LastUsedAt != nil {
		info.LastUsedAt = p.LastUsedAt.Format(time.RFC3339)
	}
	return info
}

// payloadToMap flattens the typed payload into its JSON object form. The
// wire format for payloads is a plain object so clients never need the
// block types.
func payloadToMap(p domain.PersonaPayload) map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// payloadFromMap parses a JSON object back into the typed payload. Unknown
// keys are dropped, matching how the store deserializes rows.
func payloadFromMap(m map[string]any) (domain.PersonaPayload, error) {
	var p domain.PersonaPayload
	if len(m) == 0 {
		return p, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	return p, nil
}

func visibilityFromInfo(v *identitysdk.VisibilityInfo) *domain.VisibilitySettings {
	if v == nil {
		return nil
	}
	return &domain.VisibilitySettings{
		DiscoverableAs: v.DiscoverableAs,
		VisibleTo:      v.VisibleTo,
		HiddenFields:   v.HiddenFields,
	}
}

func toRuleInfo(rule domain.ContextRule) identitysdk.RuleInfo {
	return identitysdk.RuleInfo{
		ID:        rule.ID,
		PersonaID: rule.PersonaID,
		Kind:      string(rule.Kind),
		Pattern:   rule.Pattern,
		Priority:  rule.Priority,
		CreatedAt: rule.CreatedAt.Format(time.RFC3339),
	}
}

func toOnboardingInfo(state domain.OnboardingState) identitysdk.OnboardingStateInfo {
	info := identitysdk.OnboardingStateInfo{
		PersonaID:      state.PersonaID,
		Steps:          state.Steps,
		CurrentStep:    state.CurrentStep,
		CompletedSteps: state.CompletedSteps,
		FormData:       state.FormData,
		IsComplete:     state.IsComplete,
		TimeSpentSecs:  int64(state.TimeSpent.Seconds()),
	}
	if state.CompletedAt != nil {
		info.CompletedAt = state.CompletedAt.Format(time.RFC3339)
	}
	return info
}

func toSwitchResponse(res service.SwitchResult) identitysdk.SwitchResponse {
	return identitysdk.SwitchResponse{
		Switched:      res.Switched,
		FromPersonaID: res.FromPersonaID,
		ToPersonaID:   res.ToPersonaID,
		Trigger:       string(res.Trigger),
	}
}

func toHistoryEntry(e domain.SwitchEntry) identitysdk.SwitchHistoryEntry {
	return identitysdk.SwitchHistoryEntry{
		ID:            e.ID,
		FromPersonaID: e.FromPersonaID,
		ToPersonaID:   e.ToPersonaID,
		Trigger:       string(e.Trigger),
		Context:       e.Context,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
