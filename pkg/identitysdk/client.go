// Package identitysdk is a typed Go client for the identity service HTTP
// API. It covers persona management, context switching, onboarding and the
// switch history, plus the health probes.
package identitysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the identity service. The access token is
// obtained from the platform auth service out of band; this SDK never talks
// to the token endpoint itself.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	accessToken string
}

// NewSDKClient creates a client bound to the given base URL and bearer
// token. Pass an empty token for the unauthenticated health endpoints only.
func NewSDKClient(baseURL, accessToken string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		accessToken: accessToken,
	}
}

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request, JSON-encoding body when non-nil and
// attaching the bearer token when one is configured.
func (c *SDKClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// decodeJSON decodes a JSON response into target, converting non-expected
// statuses into a typed APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatusNoContent returns a typed error unless the response is 204.
func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}

	return nil
}

/* Personas */

// ListPersonas returns all of the caller's personas in creation order.
func (c *SDKClient) ListPersonas(ctx context.Context) (*ListPersonasResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/personas", nil)
	if err != nil {
		return nil, err
	}

	var out ListPersonasResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePersona creates a new persona for the caller.
func (c *SDKClient) CreatePersona(ctx context.Context, req CreatePersonaRequest) (*PersonaInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/personas", req)
	if err != nil {
		return nil, err
	}

	var out PersonaInfo
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPersona fetches a single persona by id.
func (c *SDKClient) GetPersona(ctx context.Context, personaID string) (*PersonaInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/personas/"+personaID, nil)
	if err != nil {
		return nil, err
	}

	var out PersonaInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePersona applies a partial update to a persona.
func (c *SDKClient) UpdatePersona(ctx context.Context, personaID string, req UpdatePersonaRequest) (*PersonaInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, "/v1/personas/"+personaID, req)
	if err != nil {
		return nil, err
	}

	var out PersonaInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePersona removes a persona. Deleting the last remaining persona
// fails with a conflict error.
func (c *SDKClient) DeletePersona(ctx context.Context, personaID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/personas/"+personaID, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GetActivePersona returns the caller's currently active persona.
func (c *SDKClient) GetActivePersona(ctx context.Context) (*PersonaInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/personas/active", nil)
	if err != nil {
		return nil, err
	}

	var out PersonaInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SwitchPersona activates the given persona for the caller.
func (c *SDKClient) SwitchPersona(ctx context.Context, personaID string) (*SwitchResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/v1/personas/active", SwitchRequest{PersonaID: personaID})
	if err != nil {
		return nil, err
	}

	var out SwitchResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitContextSignal reports a runtime signal and returns the switch
// outcome after rule evaluation.
func (c *SDKClient) SubmitContextSignal(ctx context.Context, kind, value string) (*SwitchResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/context/switch", ContextSwitchRequest{Kind: kind, Value: value})
	if err != nil {
		return nil, err
	}

	var out SwitchResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

/* Context rules */

// ListRules returns all of the caller's context rules.
func (c *SDKClient) ListRules(ctx context.Context) (*ListRulesResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/rules", nil)
	if err != nil {
		return nil, err
	}

	var out ListRulesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRule creates a context rule.
func (c *SDKClient) CreateRule(ctx context.Context, req CreateRuleRequest) (*RuleInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/rules", req)
	if err != nil {
		return nil, err
	}

	var out RuleInfo
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRulePriority changes a rule's priority.
func (c *SDKClient) UpdateRulePriority(ctx context.Context, ruleID string, priority int) (*RuleInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, "/v1/rules/"+ruleID+"/priority",
		UpdateRulePriorityRequest{Priority: priority})
	if err != nil {
		return nil, err
	}

	var out RuleInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRule removes a context rule.
func (c *SDKClient) DeleteRule(ctx context.Context, ruleID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/rules/"+ruleID, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

/* Onboarding */

// GetOnboarding returns onboarding progress for a persona, creating the
// record on first access.
func (c *SDKClient) GetOnboarding(ctx context.Context, personaID string) (*OnboardingStateInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/onboarding/"+personaID, nil)
	if err != nil {
		return nil, err
	}

	var out OnboardingStateInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdvanceOnboarding marks the current step done and moves to the next one.
func (c *SDKClient) AdvanceOnboarding(ctx context.Context, personaID, step string) (*OnboardingStateInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/onboarding/"+personaID+"/advance",
		AdvanceStepRequest{Step: step})
	if err != nil {
		return nil, err
	}

	var out OnboardingStateInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveOnboardingForm merges values into the onboarding form bag.
func (c *SDKClient) SaveOnboardingForm(ctx context.Context, personaID string, formData map[string]any) (*OnboardingStateInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/onboarding/"+personaID+"/form",
		FormDataRequest{FormData: formData})
	if err != nil {
		return nil, err
	}

	var out OnboardingStateInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteOnboarding finishes the sequence from its terminal step.
func (c *SDKClient) CompleteOnboarding(ctx context.Context, personaID string) (*OnboardingStateInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/onboarding/"+personaID+"/complete", nil)
	if err != nil {
		return nil, err
	}

	var out OnboardingStateInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// OnboardingCheck reports whether any persona still needs onboarding.
func (c *SDKClient) OnboardingCheck(ctx context.Context) (*OnboardingCheckResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/onboarding/next", nil)
	if err != nil {
		return nil, err
	}

	var out OnboardingCheckResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

/* History and health */

// GetHistory returns the caller's switch history, newest first.
func (c *SDKClient) GetHistory(ctx context.Context, limit int) (*HistoryResponse, error) {
	path := "/v1/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out HistoryResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
