package service

import (
	"context"
	"log/slog"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/store"
	"github.com/venturemesh/identity/pkg/idx"
	"github.com/venturemesh/identity/pkg/slogx"
)

// SwitchService is the public entry point for persona switching. It ties
// the persona repository, the rule engine and the audit trail together for
// both manual and rule-triggered switches. It adds no error kinds of its
// own; repository failures propagate unchanged and a failed switch leaves
// the previous persona active.
type SwitchService struct {
	Store    store.Store
	Personas *PersonaService
	Rules    *RuleService
}

// SwitchResult describes the outcome of a switch request.
type SwitchResult struct {
	// Switched is false for no-ops (target already active, or no rule
	// matched). No history entry is written for a no-op.
	Switched bool

	FromPersonaID string
	ToPersonaID   string
	Trigger       domain.SwitchTrigger
}

// SwitchManually activates an explicit target persona. Switching to the
// already-active persona is a no-op that succeeds without a new history
// entry.
func (s *SwitchService) SwitchManually(ctx context.Context, userID, personaID string) (SwitchResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Resolve the current active persona (total for any known user).
	current, err := s.Personas.ActivePersona(ctx, userID)
	if err != nil {
		return SwitchResult{}, err
	}

	// 2. Already active: succeed idempotently.
	if current.ID == personaID {
		return SwitchResult{
			Switched:    false,
			ToPersonaID: personaID,
			Trigger:     domain.TriggerManual,
		}, nil
	}

	// 3. Flip activity, then record the transition.
	if err := s.Personas.SetActivePersona(ctx, userID, personaID); err != nil {
		return SwitchResult{}, err
	}

	entry := domain.SwitchEntry{
		ID:            idx.New().String(),
		UserID:        userID,
		FromPersonaID: current.ID,
		ToPersonaID:   personaID,
		Trigger:       domain.TriggerManual,
	}
	if err := s.Store.History().Append(ctx, entry); err != nil {
		// The switch itself succeeded; a lost audit row is logged, not
		// rolled back.
		log.Error("failed to append switch history",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	log.Info("persona switched",
		slog.String("user_id", userID),
		slog.String("from", current.ID),
		slog.String("to", personaID),
		slog.String("trigger", string(domain.TriggerManual)),
	)
	return SwitchResult{
		Switched:      true,
		FromPersonaID: current.ID,
		ToPersonaID:   personaID,
		Trigger:       domain.TriggerManual,
	}, nil
}

// SwitchByContext evaluates the user's rules against a context signal and
// switches when a rule picks a persona other than the current one. No match
// and match-of-current are both no-ops without history entries.
func (s *SwitchService) SwitchByContext(ctx context.Context, userID string, kind domain.ContextKind, value string) (SwitchResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Ask the rule engine where this signal points.
	targetID, err := s.Rules.Evaluate(ctx, userID, kind, value)
	if err != nil {
		return SwitchResult{}, err
	}
	if targetID == "" {
		return SwitchResult{Switched: false, Trigger: domain.TriggerRule}, nil
	}

	// 2. Compare against the current active persona.
	current, err := s.Personas.ActivePersona(ctx, userID)
	if err != nil {
		return SwitchResult{}, err
	}
	if current.ID == targetID {
		return SwitchResult{
			Switched:    false,
			ToPersonaID: targetID,
			Trigger:     domain.TriggerRule,
		}, nil
	}

	// 3. Switch and record the matched signal as context.
	if err := s.Personas.SetActivePersona(ctx, userID, targetID); err != nil {
		return SwitchResult{}, err
	}

	entry := domain.SwitchEntry{
		ID:            idx.New().String(),
		UserID:        userID,
		FromPersonaID: current.ID,
		ToPersonaID:   targetID,
		Trigger:       domain.TriggerRule,
		Context:       string(kind) + ":" + value,
	}
	if err := s.Store.History().Append(ctx, entry); err != nil {
		// Same policy as the manual path: the switch stands even when the
		// audit row is lost, and the loss is logged instead of rolled back.
		log.Error("failed to append switch history",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	log.Info("persona switched",
		slog.String("user_id", userID),
		slog.String("from", current.ID),
		slog.String("to", targetID),
		slog.String("trigger", string(domain.TriggerRule)),
		slog.String("context_kind", string(kind)),
	)
	return SwitchResult{
		Switched:      true,
		FromPersonaID: current.ID,
		ToPersonaID:   targetID,
		Trigger:       domain.TriggerRule,
	}, nil
}

// History returns the user's most recent switch entries, newest first.
func (s *SwitchService) History(ctx context.Context, userID string, limit int) ([]domain.SwitchEntry, error) {
	return s.Store.History().ListByUser(ctx, userID, limit)
}
