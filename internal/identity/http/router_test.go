package http

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/internal/identity/store/drivers/sqlite"
	"github.com/venturemesh/identity/pkg/identitysdk"
	"github.com/venturemesh/identity/pkg/jwtx"
)

// stubVerifier treats the raw bearer token as the subject. Tokens prefixed
// "ro-" only carry the read scope.
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (jwtx.Claims, error) {
	scopes := []string{"identity:read", "identity:write"}
	if strings.HasPrefix(token, "ro-") {
		scopes = []string{"identity:read"}
	}
	return jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   token,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scopes: scopes,
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys := jwtx.NewKeySet()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, keys.AddJWK(jwtx.JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		Kid: "test",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}))

	router := NewRouter(keys, stubVerifier{}, "test", st, slog.New(slog.DiscardHandler))

	personas := &service.PersonaService{Store: st}
	rules := &service.RuleService{Store: st}
	router.PersonaService = personas
	router.RuleService = rules
	router.OnboardingService = &service.OnboardingService{Store: st}
	router.SwitchService = &service.SwitchService{Store: st, Personas: personas, Rules: rules}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *identitysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestPersonaEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	client := identitysdk.NewSDKClient(srv.URL, "user-1")

	// A fresh user gets a default persona synthesized on first access.
	active, err := client.GetActivePersona(ctx)
	require.NoError(t, err)
	require.Equal(t, "custom", active.Type)
	require.True(t, active.IsActive)

	founder, err := client.CreatePersona(ctx, identitysdk.CreatePersonaRequest{
		Type: "founder",
	})
	require.NoError(t, err)
	require.Equal(t, "founder", founder.Type)
	require.Equal(t, "Founder", founder.Name)
	require.False(t, founder.IsActive)

	list, err := client.ListPersonas(ctx)
	require.NoError(t, err)
	require.Len(t, list.Personas, 2)

	name := "Startup Founder"
	updated, err := client.UpdatePersona(ctx, founder.ID, identitysdk.UpdatePersonaRequest{
		Name: &name,
	})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)

	t.Run("unknown type is a bad request", func(t *testing.T) {
		_, err := client.CreatePersona(ctx, identitysdk.CreatePersonaRequest{Type: "wizard"})
		requireAPIError(t, err, http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := client.GetPersona(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		requireAPIError(t, err, http.StatusNotFound, identitysdk.ErrorCodeNotFound)
	})

	t.Run("another user's persona is forbidden", func(t *testing.T) {
		other := identitysdk.NewSDKClient(srv.URL, "user-2")
		_, err := other.GetPersona(ctx, founder.ID)
		requireAPIError(t, err, http.StatusForbidden, identitysdk.ErrorCodeForbidden)
	})

	t.Run("deleting the last persona conflicts", func(t *testing.T) {
		solo := identitysdk.NewSDKClient(srv.URL, "user-solo")
		only, err := solo.GetActivePersona(ctx)
		require.NoError(t, err)

		err = solo.DeletePersona(ctx, only.ID)
		requireAPIError(t, err, http.StatusConflict, identitysdk.ErrorCodeConflict)
	})
}

func TestAuthnAndScopes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	t.Run("missing bearer token is unauthorized", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/personas")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("read scope cannot write", func(t *testing.T) {
		client := identitysdk.NewSDKClient(srv.URL, "ro-user")

		// Reads still work.
		_, err := client.ListPersonas(ctx)
		require.NoError(t, err)

		_, err = client.CreatePersona(ctx, identitysdk.CreatePersonaRequest{Type: "founder"})
		var apiErr *identitysdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})
}

func TestSwitchEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	client := identitysdk.NewSDKClient(srv.URL, "user-1")

	first, err := client.GetActivePersona(ctx)
	require.NoError(t, err)
	investor, err := client.CreatePersona(ctx, identitysdk.CreatePersonaRequest{Type: "investor"})
	require.NoError(t, err)

	res, err := client.SwitchPersona(ctx, investor.ID)
	require.NoError(t, err)
	require.True(t, res.Switched)
	require.Equal(t, first.ID, res.FromPersonaID)
	require.Equal(t, investor.ID, res.ToPersonaID)
	require.Equal(t, "manual", res.Trigger)

	active, err := client.GetActivePersona(ctx)
	require.NoError(t, err)
	require.Equal(t, investor.ID, active.ID)

	// Idempotent re-switch.
	res, err = client.SwitchPersona(ctx, investor.ID)
	require.NoError(t, err)
	require.False(t, res.Switched)

	history, err := client.GetHistory(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, history.Entries)
	require.Equal(t, "manual", history.Entries[0].Trigger)
	require.Equal(t, investor.ID, history.Entries[0].ToPersonaID)
}

func TestContextSwitchAndRuleEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	client := identitysdk.NewSDKClient(srv.URL, "user-1")

	_, err := client.GetActivePersona(ctx)
	require.NoError(t, err)
	investor, err := client.CreatePersona(ctx, identitysdk.CreatePersonaRequest{Type: "investor"})
	require.NoError(t, err)

	rule, err := client.CreateRule(ctx, identitysdk.CreateRuleRequest{
		PersonaID: investor.ID,
		Kind:      "url_path",
		Pattern:   "^/deals",
		Priority:  10,
	})
	require.NoError(t, err)

	res, err := client.SubmitContextSignal(ctx, "url_path", "/deals/42")
	require.NoError(t, err)
	require.True(t, res.Switched)
	require.Equal(t, investor.ID, res.ToPersonaID)
	require.Equal(t, "rule", res.Trigger)

	t.Run("invalid kind is a bad request", func(t *testing.T) {
		_, err := client.SubmitContextSignal(ctx, "moon_phase", "full")
		requireAPIError(t, err, http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest)
	})

	t.Run("priority is the only mutable field", func(t *testing.T) {
		got, err := client.UpdateRulePriority(ctx, rule.ID, 50)
		require.NoError(t, err)
		require.Equal(t, 50, got.Priority)
	})

	t.Run("delete removes the rule", func(t *testing.T) {
		require.NoError(t, client.DeleteRule(ctx, rule.ID))

		rules, err := client.ListRules(ctx)
		require.NoError(t, err)
		require.Empty(t, rules.Rules)
	})
}

func TestOnboardingEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	client := identitysdk.NewSDKClient(srv.URL, "user-1")

	persona, err := client.GetActivePersona(ctx)
	require.NoError(t, err)

	state, err := client.GetOnboarding(ctx, persona.ID)
	require.NoError(t, err)
	require.Equal(t, "welcome", state.CurrentStep)
	require.False(t, state.IsComplete)

	t.Run("skipping ahead conflicts", func(t *testing.T) {
		_, err := client.AdvanceOnboarding(ctx, persona.ID, "visibility")
		requireAPIError(t, err, http.StatusConflict, identitysdk.ErrorCodeConflict)
	})

	state, err = client.AdvanceOnboarding(ctx, persona.ID, "welcome")
	require.NoError(t, err)
	require.Equal(t, "basic_info", state.CurrentStep)
	require.Equal(t, []string{"welcome"}, state.CompletedSteps)

	state, err = client.SaveOnboardingForm(ctx, persona.ID, map[string]any{"company": "Acme"})
	require.NoError(t, err)
	require.Equal(t, "Acme", state.FormData["company"])

	check, err := client.OnboardingCheck(ctx)
	require.NoError(t, err)
	require.True(t, check.Needed)
	require.Equal(t, persona.ID, check.PersonaID)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newTestServer(t)

	client := identitysdk.NewSDKClient(srv.URL, "")

	live, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Verifier)
}
