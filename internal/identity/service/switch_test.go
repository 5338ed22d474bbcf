package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venturemesh/identity/internal/identity/domain"
)

func newSwitchFixture(t *testing.T) (*PersonaService, *RuleService, *SwitchService) {
	t.Helper()
	personas := newPersonaService(t)
	rules := &RuleService{Store: personas.Store}
	return personas, rules, &SwitchService{
		Store:    personas.Store,
		Personas: personas,
		Rules:    rules,
	}
}

func TestSwitchManually(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("activates the target and records the transition", func(t *testing.T) {
		personas, _, switcher := newSwitchFixture(t)
		first := seedUser(t, personas, "user-1")
		founder := addPersona(t, personas, "user-1", domain.PersonaFounder)

		res, err := switcher.SwitchManually(ctx, "user-1", founder.ID)
		require.NoError(t, err)
		require.True(t, res.Switched)
		require.Equal(t, first.ID, res.FromPersonaID)
		require.Equal(t, founder.ID, res.ToPersonaID)
		require.Equal(t, domain.TriggerManual, res.Trigger)

		requireOneActive(t, personas, "user-1", founder.ID)

		entries, err := switcher.History(ctx, "user-1", 10)
		require.NoError(t, err)
		// One entry from initialization plus the manual switch, newest first.
		require.Len(t, entries, 2)
		require.Equal(t, domain.TriggerManual, entries[0].Trigger)
		require.Equal(t, first.ID, entries[0].FromPersonaID)
		require.Equal(t, founder.ID, entries[0].ToPersonaID)
	})

	t.Run("switching to the active persona is a quiet no-op", func(t *testing.T) {
		personas, _, switcher := newSwitchFixture(t)
		first := seedUser(t, personas, "user-1")

		before, err := switcher.History(ctx, "user-1", 10)
		require.NoError(t, err)

		res, err := switcher.SwitchManually(ctx, "user-1", first.ID)
		require.NoError(t, err)
		require.False(t, res.Switched)
		require.Equal(t, first.ID, res.ToPersonaID)

		after, err := switcher.History(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, after, len(before))
	})

	t.Run("unknown target leaves the previous persona active", func(t *testing.T) {
		personas, _, switcher := newSwitchFixture(t)
		first := seedUser(t, personas, "user-1")

		_, err := switcher.SwitchManually(ctx, "user-1", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.ErrorIs(t, err, ErrPersonaNotFound)

		requireOneActive(t, personas, "user-1", first.ID)
	})
}

func TestSwitchByContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("a matching rule drives the switch", func(t *testing.T) {
		personas, rules, switcher := newSwitchFixture(t)
		first := seedUser(t, personas, "user-1")
		investor := addPersona(t, personas, "user-1", domain.PersonaInvestor)

		_, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
			PersonaID: investor.ID,
			Kind:      domain.ContextURLPath,
			Pattern:   "^/deals",
			Priority:  10,
		})
		require.NoError(t, err)

		res, err := switcher.SwitchByContext(ctx, "user-1", domain.ContextURLPath, "/deals/42")
		require.NoError(t, err)
		require.True(t, res.Switched)
		require.Equal(t, first.ID, res.FromPersonaID)
		require.Equal(t, investor.ID, res.ToPersonaID)
		require.Equal(t, domain.TriggerRule, res.Trigger)

		requireOneActive(t, personas, "user-1", investor.ID)

		entries, err := switcher.History(ctx, "user-1", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, domain.TriggerRule, entries[0].Trigger)
		require.Equal(t, "url_path:/deals/42", entries[0].Context)
	})

	t.Run("no matching rule is a no-op", func(t *testing.T) {
		personas, _, switcher := newSwitchFixture(t)
		first := seedUser(t, personas, "user-1")

		before, err := switcher.History(ctx, "user-1", 10)
		require.NoError(t, err)

		res, err := switcher.SwitchByContext(ctx, "user-1", domain.ContextURLPath, "/nothing/here")
		require.NoError(t, err)
		require.False(t, res.Switched)

		requireOneActive(t, personas, "user-1", first.ID)

		after, err := switcher.History(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, after, len(before))
	})

	t.Run("matching the already-active persona adds no history", func(t *testing.T) {
		personas, rules, switcher := newSwitchFixture(t)
		first := seedUser(t, personas, "user-1")

		_, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
			PersonaID: first.ID,
			Kind:      domain.ContextURLPath,
			Pattern:   "^/home",
			Priority:  1,
		})
		require.NoError(t, err)

		before, err := switcher.History(ctx, "user-1", 10)
		require.NoError(t, err)

		res, err := switcher.SwitchByContext(ctx, "user-1", domain.ContextURLPath, "/home")
		require.NoError(t, err)
		require.False(t, res.Switched)
		require.Equal(t, first.ID, res.ToPersonaID)

		after, err := switcher.History(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, after, len(before))
	})
}

func TestHistoryLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	personas, _, switcher := newSwitchFixture(t)
	first := seedUser(t, personas, "user-1")
	second := addPersona(t, personas, "user-1", domain.PersonaFounder)

	// Bounce back and forth to accumulate entries.
	for i := 0; i < 3; i++ {
		_, err := switcher.SwitchManually(ctx, "user-1", second.ID)
		require.NoError(t, err)
		_, err = switcher.SwitchManually(ctx, "user-1", first.ID)
		require.NoError(t, err)
	}

	entries, err := switcher.History(ctx, "user-1", 4)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Newest first: the last switch landed back on the default persona.
	require.Equal(t, first.ID, entries[0].ToPersonaID)
	require.Equal(t, second.ID, entries[1].ToPersonaID)
}
