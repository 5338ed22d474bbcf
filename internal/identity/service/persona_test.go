package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venturemesh/identity/internal/identity/domain"
)

func TestEnsureInitialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates profile and default persona", func(t *testing.T) {
		svc := newPersonaService(t)

		persona, err := svc.EnsureInitialized(ctx, "user-1", "u1@test.example", "Alex")
		require.NoError(t, err)
		require.Equal(t, domain.PersonaCustom, persona.Type)
		require.Equal(t, "Alex", persona.Name)
		require.True(t, persona.IsActive)

		requireOneActive(t, svc, "user-1", persona.ID)

		// Initial activation lands in the audit trail with no from-persona.
		entries, err := svc.Store.History().ListByUser(ctx, "user-1", 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Empty(t, entries[0].FromPersonaID)
		require.Equal(t, persona.ID, entries[0].ToPersonaID)
		require.Equal(t, domain.TriggerAuto, entries[0].Trigger)
	})

	t.Run("is idempotent", func(t *testing.T) {
		svc := newPersonaService(t)

		first, err := svc.EnsureInitialized(ctx, "user-1", "u1@test.example", "Alex")
		require.NoError(t, err)

		second, err := svc.EnsureInitialized(ctx, "user-1", "u1@test.example", "Alex")
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)

		personas, err := svc.Personas(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, personas, 1)
	})
}

func TestCreatePersona(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects invalid type", func(t *testing.T) {
		svc := newPersonaService(t)

		_, err := svc.CreatePersona(ctx, "user-1", CreatePersonaInput{Type: "superhero"})
		require.ErrorIs(t, err, ErrInvalidPersonaType)
	})

	t.Run("fills type defaults", func(t *testing.T) {
		svc := newPersonaService(t)

		persona, err := svc.CreatePersona(ctx, "user-1", CreatePersonaInput{Type: domain.PersonaFounder})
		require.NoError(t, err)
		require.Equal(t, "Founder", persona.Name)
		require.Equal(t, []string{"founder"}, persona.Visibility.DiscoverableAs)
		require.Equal(t, "network", persona.Visibility.VisibleTo)

		// The onboarding row is created alongside with the type's sequence.
		state, err := svc.Store.Onboarding().Get(ctx, "user-1", persona.ID)
		require.NoError(t, err)
		require.Equal(t, domain.DefaultSteps(domain.PersonaFounder), state.Steps)
		require.Equal(t, domain.StepWelcome, state.CurrentStep)
	})

	t.Run("first persona becomes active, later ones do not", func(t *testing.T) {
		svc := newPersonaService(t)

		first, err := svc.CreatePersona(ctx, "user-1", CreatePersonaInput{Type: domain.PersonaFounder})
		require.NoError(t, err)
		require.True(t, first.IsActive)

		second, err := svc.CreatePersona(ctx, "user-1", CreatePersonaInput{Type: domain.PersonaInvestor})
		require.NoError(t, err)
		require.False(t, second.IsActive)

		requireOneActive(t, svc, "user-1", first.ID)
	})

	t.Run("caller overrides beat defaults", func(t *testing.T) {
		svc := newPersonaService(t)

		persona, err := svc.CreatePersona(ctx, "user-1", CreatePersonaInput{
			Name: "Angel Investing",
			Type: domain.PersonaInvestor,
			Visibility: &domain.VisibilitySettings{
				VisibleTo: "nobody",
			},
			Steps: []string{"welcome", "review"},
		})
		require.NoError(t, err)
		require.Equal(t, "Angel Investing", persona.Name)
		require.Equal(t, "nobody", persona.Visibility.VisibleTo)

		state, err := svc.Store.Onboarding().Get(ctx, "user-1", persona.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"welcome", "review"}, state.Steps)
	})
}

func TestActivePersona(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("resolves via pointer", func(t *testing.T) {
		svc := newPersonaService(t)
		first := seedUser(t, svc, "user-1")

		active, err := svc.ActivePersona(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, first.ID, active.ID)
	})

	t.Run("repairs a stale pointer from the flag", func(t *testing.T) {
		svc := newPersonaService(t)
		first := seedUser(t, svc, "user-1")
		addPersona(t, svc, "user-1", domain.PersonaInvestor)

		// Corrupt the pointer to a persona that doesn't exist.
		bogus := "00000000000000000000000000"
		require.NoError(t, svc.Store.Profiles().SetActivePersona(ctx, "user-1", &bogus))

		active, err := svc.ActivePersona(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, first.ID, active.ID)
		requireOneActive(t, svc, "user-1", first.ID)
	})

	t.Run("repairs missing flag from the oldest persona", func(t *testing.T) {
		svc := newPersonaService(t)
		first := seedUser(t, svc, "user-1")
		second := addPersona(t, svc, "user-1", domain.PersonaInvestor)

		// Wipe the flag and the pointer.
		require.NoError(t, svc.Store.Personas().SetActive(ctx, first.ID, false, nil))
		require.NoError(t, svc.Store.Personas().SetActive(ctx, second.ID, false, nil))
		require.NoError(t, svc.Store.Profiles().SetActivePersona(ctx, "user-1", nil))

		active, err := svc.ActivePersona(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, first.ID, active.ID)
		requireOneActive(t, svc, "user-1", first.ID)
	})

	t.Run("synthesizes a default for a user with no personas", func(t *testing.T) {
		svc := newPersonaService(t)

		active, err := svc.ActivePersona(ctx, "brand-new-user")
		require.NoError(t, err)
		require.Equal(t, domain.PersonaCustom, active.Type)
		require.True(t, active.IsActive)
		requireOneActive(t, svc, "brand-new-user", active.ID)
	})
}

func TestUpdatePersona(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects immutable fields", func(t *testing.T) {
		svc := newPersonaService(t)
		persona := seedUser(t, svc, "user-1")

		otherType := "founder"
		_, err := svc.UpdatePersona(ctx, "user-1", persona.ID, domain.PersonaPatch{Type: &otherType})
		require.ErrorIs(t, err, ErrImmutableField)

		// State untouched.
		got, err := svc.GetPersona(ctx, "user-1", persona.ID)
		require.NoError(t, err)
		require.Equal(t, domain.PersonaCustom, got.Type)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		svc := newPersonaService(t)
		persona := seedUser(t, svc, "user-1")

		got, err := svc.UpdatePersona(ctx, "user-1", persona.ID, domain.PersonaPatch{})
		require.NoError(t, err)
		require.Equal(t, persona.ID, got.ID)
	})

	t.Run("merges allow-listed fields", func(t *testing.T) {
		svc := newPersonaService(t)
		persona := seedUser(t, svc, "user-1")

		name := "Weekend Advisor"
		isPublic := true
		got, err := svc.UpdatePersona(ctx, "user-1", persona.ID, domain.PersonaPatch{
			Name:     &name,
			IsPublic: &isPublic,
		})
		require.NoError(t, err)
		require.Equal(t, "Weekend Advisor", got.Name)
		require.True(t, got.IsPublic)

		// Untouched fields survive.
		require.Equal(t, persona.Visibility, got.Visibility)
	})

	t.Run("enforces ownership", func(t *testing.T) {
		svc := newPersonaService(t)
		persona := seedUser(t, svc, "user-1")
		seedUser(t, svc, "user-2")

		name := "hijack"
		_, err := svc.UpdatePersona(ctx, "user-2", persona.ID, domain.PersonaPatch{Name: &name})
		require.ErrorIs(t, err, ErrNotOwner)
	})
}

func TestDeletePersona(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("refuses to delete the last persona", func(t *testing.T) {
		svc := newPersonaService(t)
		persona := seedUser(t, svc, "user-1")

		err := svc.DeletePersona(ctx, "user-1", persona.ID)
		require.ErrorIs(t, err, ErrLastPersona)

		// Nothing changed.
		requireOneActive(t, svc, "user-1", persona.ID)
		personas, err := svc.Personas(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, personas, 1)
	})

	t.Run("deleting the active persona hands over to the oldest remaining", func(t *testing.T) {
		svc := newPersonaService(t)
		first := seedUser(t, svc, "user-1")
		second := addPersona(t, svc, "user-1", domain.PersonaInvestor)
		third := addPersona(t, svc, "user-1", domain.PersonaAdvisor)
		_ = third

		require.NoError(t, svc.DeletePersona(ctx, "user-1", first.ID))
		requireOneActive(t, svc, "user-1", second.ID)

		// The handover is recorded as an automatic switch.
		entries, err := svc.Store.History().ListByUser(ctx, "user-1", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, domain.TriggerAuto, entries[0].Trigger)
		require.Equal(t, first.ID, entries[0].FromPersonaID)
		require.Equal(t, second.ID, entries[0].ToPersonaID)
	})

	t.Run("deleting an inactive persona leaves the active one alone", func(t *testing.T) {
		svc := newPersonaService(t)
		first := seedUser(t, svc, "user-1")
		second := addPersona(t, svc, "user-1", domain.PersonaInvestor)

		before, err := svc.Store.History().ListByUser(ctx, "user-1", 0)
		require.NoError(t, err)

		require.NoError(t, svc.DeletePersona(ctx, "user-1", second.ID))
		requireOneActive(t, svc, "user-1", first.ID)

		// No handover entry for an inactive delete.
		after, err := svc.Store.History().ListByUser(ctx, "user-1", 0)
		require.NoError(t, err)
		require.Len(t, after, len(before))
	})

	t.Run("cascades onboarding and rules", func(t *testing.T) {
		svc := newPersonaService(t)
		seedUser(t, svc, "user-1")
		second := addPersona(t, svc, "user-1", domain.PersonaInvestor)

		rules := &RuleService{Store: svc.Store}
		_, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
			PersonaID: second.ID,
			Kind:      domain.ContextURLPath,
			Pattern:   "^/deals",
			Priority:  10,
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeletePersona(ctx, "user-1", second.ID))

		left, err := rules.Rules(ctx, "user-1")
		require.NoError(t, err)
		require.Empty(t, left)
	})
}

func TestSetActivePersona(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("flips flags and pointer atomically", func(t *testing.T) {
		svc := newPersonaService(t)
		seedUser(t, svc, "user-1")
		second := addPersona(t, svc, "user-1", domain.PersonaInvestor)

		require.NoError(t, svc.SetActivePersona(ctx, "user-1", second.ID))
		requireOneActive(t, svc, "user-1", second.ID)
	})

	t.Run("rejects personas owned by someone else", func(t *testing.T) {
		svc := newPersonaService(t)
		seedUser(t, svc, "user-1")
		other := seedUser(t, svc, "user-2")

		err := svc.SetActivePersona(ctx, "user-1", other.ID)
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("rejects unknown personas", func(t *testing.T) {
		svc := newPersonaService(t)
		seedUser(t, svc, "user-1")

		err := svc.SetActivePersona(ctx, "user-1", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.ErrorIs(t, err, ErrPersonaNotFound)
	})
}
