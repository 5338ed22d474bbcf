package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/store"
	"github.com/venturemesh/identity/internal/identity/store/drivers/sqlite"
)

// newTestStore spins up a migrated in-memory database per test.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newPersonaService(t *testing.T) *PersonaService {
	t.Helper()
	return &PersonaService{Store: newTestStore(t)}
}

// seedUser initializes a user and returns their default persona.
func seedUser(t *testing.T, svc *PersonaService, userID string) domain.Persona {
	t.Helper()

	persona, err := svc.EnsureInitialized(context.Background(), userID, userID+"@test.example", "Test User")
	require.NoError(t, err)
	return persona
}

// addPersona creates an extra persona of the given type for the user.
func addPersona(t *testing.T, svc *PersonaService, userID string, typ domain.PersonaType) domain.Persona {
	t.Helper()

	persona, err := svc.CreatePersona(context.Background(), userID, CreatePersonaInput{Type: typ})
	require.NoError(t, err)
	return persona
}

// requireOneActive asserts the one-active invariant across all three
// representations: exactly one is_active flag and a pointer matching it.
func requireOneActive(t *testing.T, svc *PersonaService, userID, wantID string) {
	t.Helper()
	ctx := context.Background()

	personas, err := svc.Personas(ctx, userID)
	require.NoError(t, err)

	activeCount := 0
	for _, p := range personas {
		if p.IsActive {
			activeCount++
			require.Equal(t, wantID, p.ID)
		}
	}
	require.Equal(t, 1, activeCount)

	profile, err := svc.Store.Profiles().Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, profile.ActivePersonaID)
	require.Equal(t, wantID, *profile.ActivePersonaID)
}
