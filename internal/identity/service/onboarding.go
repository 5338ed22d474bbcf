package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/store"
	"github.com/venturemesh/identity/pkg/slogx"
)

var (
	ErrOnboardingComplete = errors.New("onboarding already complete")
	ErrStepNotCurrent     = errors.New("step is not the current onboarding step")
	ErrNotFinalStep       = errors.New("onboarding can only complete from the final step")
)

// OnboardingService drives the per-persona onboarding state machine: an
// ordered sequence of named steps starting at welcome. Steps advance one at
// a time and completion is terminal; there is deliberately no reset, so a
// fresh onboarding flow requires a fresh persona.
type OnboardingService struct {
	Store store.Store
}

// OnboardingCheck is the result of scanning a user's personas for
// outstanding onboarding.
type OnboardingCheck struct {
	Needed    bool
	PersonaID string
}

// State returns the onboarding state for a persona, creating it lazily the
// first time the persona is touched.
func (s *OnboardingService) State(ctx context.Context, userID, personaID string) (domain.OnboardingState, error) {
	log := slogx.FromContext(ctx)

	state, err := s.Store.Onboarding().Get(ctx, userID, personaID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.OnboardingState{}, err
	}

	// 1. Lazy creation path: the persona must exist and be owned.
	persona, err := s.Store.Personas().Get(ctx, personaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OnboardingState{}, ErrPersonaNotFound
		}
		return domain.OnboardingState{}, err
	}
	if persona.UserID != userID {
		return domain.OnboardingState{}, ErrNotOwner
	}

	// The timestamps must be set on the returned struct as well as the row:
	// Advance and Complete derive time spent from UpdatedAt, and a zero value
	// there would count the entire epoch as time on the first step.
	now := time.Now().UTC()
	steps := domain.DefaultSteps(persona.Type)
	state = domain.OnboardingState{
		UserID:      userID,
		PersonaID:   personaID,
		Steps:       steps,
		CurrentStep: steps[0],
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Onboarding().Create(ctx, state); err != nil {
		return domain.OnboardingState{}, err
	}

	log.Debug("onboarding state created lazily",
		slog.String("user_id", userID),
		slog.String("persona_id", personaID),
	)
	return state, nil
}

// Advance completes the current step and moves to the next one in the
// sequence. Steps cannot be skipped: stepName must be the current step.
// The terminal step is not advanced through; it is finished by Complete.
func (s *OnboardingService) Advance(ctx context.Context, userID, personaID, stepName string) (domain.OnboardingState, error) {
	log := slogx.FromContext(ctx)

	state, err := s.State(ctx, userID, personaID)
	if err != nil {
		return domain.OnboardingState{}, err
	}

	// 1. Completed onboarding never moves again.
	if state.IsComplete {
		return domain.OnboardingState{}, ErrOnboardingComplete
	}

	// 2. Only the current step can be advanced; anything else would skip.
	if stepName != state.CurrentStep {
		log.Warn("onboarding advance out of order",
			slog.String("user_id", userID),
			slog.String("persona_id", personaID),
			slog.String("step", stepName),
			slog.String("current_step", state.CurrentStep),
		)
		return domain.OnboardingState{}, ErrStepNotCurrent
	}

	// 3. The terminal step is closed out by Complete, keeping the
	// current-step-not-in-completed invariant intact until then.
	if stepName == state.TerminalStep() {
		return domain.OnboardingState{}, ErrNotFinalStep
	}

	// 4. Record the step and move on.
	now := time.Now().UTC()
	if !state.HasCompleted(stepName) {
		state.CompletedSteps = append(state.CompletedSteps, stepName)
	}
	if state.StepCompletedAt == nil {
		state.StepCompletedAt = make(map[string]time.Time)
	}
	state.StepCompletedAt[stepName] = now
	state.TimeSpent += now.Sub(state.UpdatedAt)
	state.CurrentStep = state.NextStep(stepName)

	if err := s.Store.Onboarding().Update(ctx, state); err != nil {
		return domain.OnboardingState{}, err
	}

	log.Debug("onboarding step completed",
		slog.String("user_id", userID),
		slog.String("persona_id", personaID),
		slog.String("step", stepName),
		slog.String("next_step", state.CurrentStep),
	)
	return state, nil
}

// SaveFormData merges values into the free-form bag collected along the
// flow. It does not move the step machine.
func (s *OnboardingService) SaveFormData(ctx context.Context, userID, personaID string, data map[string]any) (domain.OnboardingState, error) {
	state, err := s.State(ctx, userID, personaID)
	if err != nil {
		return domain.OnboardingState{}, err
	}
	if state.IsComplete {
		return domain.OnboardingState{}, ErrOnboardingComplete
	}

	if state.FormData == nil {
		state.FormData = make(map[string]any, len(data))
	}
	for k, v := range data {
		state.FormData[k] = v
	}

	if err := s.Store.Onboarding().Update(ctx, state); err != nil {
		return domain.OnboardingState{}, err
	}
	return state, nil
}

// Complete finishes onboarding. Only reachable when the current step is the
// last defined step; it marks that step completed, stamps the overall
// completion time and freezes the machine.
func (s *OnboardingService) Complete(ctx context.Context, userID, personaID string) (domain.OnboardingState, error) {
	log := slogx.FromContext(ctx)

	state, err := s.State(ctx, userID, personaID)
	if err != nil {
		return domain.OnboardingState{}, err
	}

	if state.IsComplete {
		return domain.OnboardingState{}, ErrOnboardingComplete
	}
	if state.CurrentStep != state.TerminalStep() {
		log.Warn("onboarding completion before final step",
			slog.String("user_id", userID),
			slog.String("persona_id", personaID),
			slog.String("current_step", state.CurrentStep),
		)
		return domain.OnboardingState{}, ErrNotFinalStep
	}

	now := time.Now().UTC()
	if !state.HasCompleted(state.CurrentStep) {
		state.CompletedSteps = append(state.CompletedSteps, state.CurrentStep)
	}
	if state.StepCompletedAt == nil {
		state.StepCompletedAt = make(map[string]time.Time)
	}
	state.StepCompletedAt[state.CurrentStep] = now
	state.TimeSpent += now.Sub(state.UpdatedAt)
	state.IsComplete = true
	state.CompletedAt = &now

	if err := s.Store.Onboarding().Update(ctx, state); err != nil {
		return domain.OnboardingState{}, err
	}

	log.Info("onboarding completed",
		slog.String("user_id", userID),
		slog.String("persona_id", personaID),
		slog.Duration("time_spent", state.TimeSpent),
	)
	return state, nil
}

// IsComplete reports whether a persona's onboarding has finished.
func (s *OnboardingService) IsComplete(ctx context.Context, userID, personaID string) (bool, error) {
	state, err := s.State(ctx, userID, personaID)
	if err != nil {
		return false, err
	}
	return state.IsComplete, nil
}

// CheckNeeded scans the user's personas in creation order and returns the
// first one with incomplete onboarding. Needed is false only when every
// persona's onboarding is complete.
func (s *OnboardingService) CheckNeeded(ctx context.Context, userID string) (OnboardingCheck, error) {
	personas, err := s.Store.Personas().ListByUser(ctx, userID)
	if err != nil {
		return OnboardingCheck{}, err
	}

	for _, p := range personas {
		complete, err := s.IsComplete(ctx, userID, p.ID)
		if err != nil {
			return OnboardingCheck{}, err
		}
		if !complete {
			return OnboardingCheck{Needed: true, PersonaID: p.ID}, nil
		}
	}
	return OnboardingCheck{Needed: false}, nil
}
