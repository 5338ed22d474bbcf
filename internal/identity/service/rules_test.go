package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venturemesh/identity/internal/identity/domain"
)

func newRuleFixture(t *testing.T) (*PersonaService, *RuleService) {
	t.Helper()
	personas := newPersonaService(t)
	return personas, &RuleService{Store: personas.Store}
}

func TestCreateRule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects invalid context kind", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		p := seedUser(t, personas, "user-1")

		_, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
			PersonaID: p.ID,
			Kind:      "moon_phase",
			Pattern:   ".*",
		})
		require.ErrorIs(t, err, ErrInvalidContextKind)
	})

	t.Run("rejects patterns that do not compile", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		p := seedUser(t, personas, "user-1")

		_, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
			PersonaID: p.ID,
			Kind:      domain.ContextURLPath,
			Pattern:   "[unclosed",
		})
		require.ErrorIs(t, err, ErrInvalidPattern)
	})

	t.Run("rejects target personas the caller does not own", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		seedUser(t, personas, "user-1")
		other := seedUser(t, personas, "user-2")

		_, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
			PersonaID: other.ID,
			Kind:      domain.ContextURLPath,
			Pattern:   "^/",
		})
		require.ErrorIs(t, err, ErrNotOwner)
	})
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mustRule := func(t *testing.T, rules *RuleService, userID, personaID, pattern string, priority int) domain.ContextRule {
		t.Helper()
		rule, err := rules.CreateRule(ctx, userID, CreateRuleInput{
			PersonaID: personaID,
			Kind:      domain.ContextURLPath,
			Pattern:   pattern,
			Priority:  priority,
		})
		require.NoError(t, err)
		return rule
	}

	t.Run("highest priority match wins", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		seedUser(t, personas, "user-1")
		low := addPersona(t, personas, "user-1", domain.PersonaCommunity)
		high := addPersona(t, personas, "user-1", domain.PersonaFounder)

		mustRule(t, rules, "user-1", low.ID, "/admin", 1)
		mustRule(t, rules, "user-1", high.ID, "/admin", 100)

		target, err := rules.Evaluate(ctx, "user-1", domain.ContextURLPath, "/admin/users")
		require.NoError(t, err)
		require.Equal(t, high.ID, target)
	})

	t.Run("anchored and unanchored patterns both match substrings", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		seedUser(t, personas, "user-1")
		anchored := addPersona(t, personas, "user-1", domain.PersonaFounder)
		loose := addPersona(t, personas, "user-1", domain.PersonaInvestor)

		mustRule(t, rules, "user-1", anchored.ID, "^/admin", 10)
		mustRule(t, rules, "user-1", loose.ID, "/admin", 5)

		// Both patterns match; the anchored one outranks on priority.
		target, err := rules.Evaluate(ctx, "user-1", domain.ContextURLPath, "/admin/users")
		require.NoError(t, err)
		require.Equal(t, anchored.ID, target)

		// A mid-path occurrence only matches the unanchored pattern.
		target, err = rules.Evaluate(ctx, "user-1", domain.ContextURLPath, "/app/admin/panel")
		require.NoError(t, err)
		require.Equal(t, loose.ID, target)
	})

	t.Run("creation order breaks priority ties", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		seedUser(t, personas, "user-1")
		first := addPersona(t, personas, "user-1", domain.PersonaFounder)
		second := addPersona(t, personas, "user-1", domain.PersonaInvestor)

		mustRule(t, rules, "user-1", first.ID, "/x", 5)
		mustRule(t, rules, "user-1", second.ID, "/x", 5)

		target, err := rules.Evaluate(ctx, "user-1", domain.ContextURLPath, "/x")
		require.NoError(t, err)
		require.Equal(t, first.ID, target)
	})

	t.Run("a rule that rotted after creation is skipped, not fatal", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		seedUser(t, personas, "user-1")
		broken := addPersona(t, personas, "user-1", domain.PersonaFounder)
		fallback := addPersona(t, personas, "user-1", domain.PersonaInvestor)

		// Bypass the service validation by writing the row directly.
		require.NoError(t, rules.Store.Rules().Create(ctx, domain.ContextRule{
			ID:        "01ARZ3NDEKTSV4RRFFQ69G5FAA",
			UserID:    "user-1",
			PersonaID: broken.ID,
			Kind:      domain.ContextURLPath,
			Pattern:   "[broken",
			Priority:  100,
		}))
		mustRule(t, rules, "user-1", fallback.ID, "/deals", 1)

		target, err := rules.Evaluate(ctx, "user-1", domain.ContextURLPath, "/deals/42")
		require.NoError(t, err)
		require.Equal(t, fallback.ID, target)
	})

	t.Run("no match returns empty target", func(t *testing.T) {
		personas, rules := newRuleFixture(t)
		p := seedUser(t, personas, "user-1")

		mustRule(t, rules, "user-1", p.ID, "^/deals", 1)

		target, err := rules.Evaluate(ctx, "user-1", domain.ContextURLPath, "/settings")
		require.NoError(t, err)
		require.Empty(t, target)
	})

	t.Run("rejects invalid kind", func(t *testing.T) {
		_, rules := newRuleFixture(t)

		_, err := rules.Evaluate(ctx, "user-1", "moon_phase", "full")
		require.ErrorIs(t, err, ErrInvalidContextKind)
	})
}

func TestUpdateRulePriority(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	personas, rules := newRuleFixture(t)
	p := seedUser(t, personas, "user-1")
	seedUser(t, personas, "user-2")

	rule, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
		PersonaID: p.ID,
		Kind:      domain.ContextURLPath,
		Pattern:   "^/deals",
		Priority:  1,
	})
	require.NoError(t, err)

	t.Run("updates the priority", func(t *testing.T) {
		got, err := rules.UpdateRulePriority(ctx, "user-1", rule.ID, 50)
		require.NoError(t, err)
		require.Equal(t, 50, got.Priority)
	})

	t.Run("enforces ownership", func(t *testing.T) {
		_, err := rules.UpdateRulePriority(ctx, "user-2", rule.ID, 99)
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("unknown rule is not found", func(t *testing.T) {
		_, err := rules.UpdateRulePriority(ctx, "user-1", "01ARZ3NDEKTSV4RRFFQ69G5FAV", 1)
		require.ErrorIs(t, err, ErrRuleNotFound)
	})
}

func TestDeleteRule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	personas, rules := newRuleFixture(t)
	p := seedUser(t, personas, "user-1")

	rule, err := rules.CreateRule(ctx, "user-1", CreateRuleInput{
		PersonaID: p.ID,
		Kind:      domain.ContextCompanyView,
		Pattern:   "acme-.*",
		Priority:  1,
	})
	require.NoError(t, err)

	require.NoError(t, rules.DeleteRule(ctx, "user-1", rule.ID))

	left, err := rules.Rules(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, left)

	require.ErrorIs(t, rules.DeleteRule(ctx, "user-1", rule.ID), ErrRuleNotFound)
}
