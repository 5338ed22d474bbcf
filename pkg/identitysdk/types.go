package identitysdk

// ErrorResponse is the standard error body returned by the identity service.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g. "invalid_request")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Verifier string `json:"verifier,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// VisibilityInfo mirrors a persona's discovery settings on the wire.
type VisibilityInfo struct {
	DiscoverableAs []string `json:"discoverable_as,omitempty"`
	VisibleTo      string   `json:"visible_to,omitempty"`
	HiddenFields   []string `json:"hidden_fields,omitempty"`
}

// PersonaInfo is the wire representation of a persona.
type PersonaInfo struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	IsActive   bool           `json:"is_active"`
	IsPublic   bool           `json:"is_public"`
	Visibility VisibilityInfo `json:"visibility"`
	Payload    map[string]any `json:"payload,omitempty"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	LastUsedAt string         `json:"last_used_at,omitempty"`
}

// ListPersonasResponse wraps GET /v1/personas.
type ListPersonasResponse struct {
	Personas []PersonaInfo `json:"personas"`
}

// CreatePersonaRequest creates a new persona. Type is required; everything
// else falls back to type-specific defaults.
type CreatePersonaRequest struct {
	Name       string          `json:"name,omitempty"`
	Type       string          `json:"type"`
	IsPublic   *bool           `json:"is_public,omitempty"`
	Visibility *VisibilityInfo `json:"visibility,omitempty"`
	Payload    map[string]any  `json:"payload,omitempty"`

	// Steps optionally overrides the default onboarding sequence.
	Steps []string `json:"steps,omitempty"`
}

// UpdatePersonaRequest is a partial update. Only the listed fields may
// change; sending id, user_id, type or created_at is rejected.
type UpdatePersonaRequest struct {
	Name       *string         `json:"name,omitempty"`
	IsPublic   *bool           `json:"is_public,omitempty"`
	Visibility *VisibilityInfo `json:"visibility,omitempty"`
	Payload    map[string]any  `json:"payload,omitempty"`
}

// SwitchRequest selects the persona to activate.
type SwitchRequest struct {
	PersonaID string `json:"persona_id"`
}

// SwitchResponse reports the outcome of a manual or rule-driven switch.
type SwitchResponse struct {
	Switched      bool   `json:"switched"`
	FromPersonaID string `json:"from_persona_id,omitempty"`
	ToPersonaID   string `json:"to_persona_id"`
	Trigger       string `json:"trigger,omitempty"`
}

// ContextSwitchRequest carries a runtime signal for rule evaluation.
type ContextSwitchRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// RuleInfo is the wire representation of a context rule.
type RuleInfo struct {
	ID        string `json:"id"`
	PersonaID string `json:"persona_id"`
	Kind      string `json:"kind"`
	Pattern   string `json:"pattern"`
	Priority  int    `json:"priority"`
	CreatedAt string `json:"created_at"`
}

// ListRulesResponse wraps GET /v1/rules.
type ListRulesResponse struct {
	Rules []RuleInfo `json:"rules"`
}

// CreateRuleRequest creates a context rule targeting one of the caller's
// personas.
type CreateRuleRequest struct {
	PersonaID string `json:"persona_id"`
	Kind      string `json:"kind"`
	Pattern   string `json:"pattern"`
	Priority  int    `json:"priority"`
}

// UpdateRulePriorityRequest changes a rule's priority. Priority is the only
// mutable rule field.
type UpdateRulePriorityRequest struct {
	Priority int `json:"priority"`
}

// OnboardingStateInfo is the wire representation of onboarding progress.
type OnboardingStateInfo struct {
	PersonaID      string         `json:"persona_id"`
	Steps          []string       `json:"steps"`
	CurrentStep    string         `json:"current_step"`
	CompletedSteps []string       `json:"completed_steps"`
	FormData       map[string]any `json:"form_data,omitempty"`
	IsComplete     bool           `json:"is_complete"`
	CompletedAt    string         `json:"completed_at,omitempty"`
	TimeSpentSecs  int64          `json:"time_spent_secs"`
}

// AdvanceStepRequest names the step the client just finished.
type AdvanceStepRequest struct {
	Step string `json:"step"`
}

// FormDataRequest merges values into the onboarding form bag.
type FormDataRequest struct {
	FormData map[string]any `json:"form_data"`
}

// OnboardingCheckResponse answers "does this user still need onboarding".
type OnboardingCheckResponse struct {
	Needed    bool   `json:"needed"`
	PersonaID string `json:"persona_id,omitempty"`
}

// SwitchHistoryEntry is one row of the persona transition audit trail.
type SwitchHistoryEntry struct {
	ID            string `json:"id"`
	FromPersonaID string `json:"from_persona_id,omitempty"`
	ToPersonaID   string `json:"to_persona_id"`
	Trigger       string `json:"trigger"`
	Context       string `json:"context,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// HistoryResponse wraps GET /v1/history.
type HistoryResponse struct {
	Entries []SwitchHistoryEntry `json:"entries"`
}
