package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/store"
	"github.com/venturemesh/identity/pkg/idx"
	"github.com/venturemesh/identity/pkg/slogx"
)

var (
	ErrInvalidPersonaType = errors.New("invalid persona type")
	ErrPersonaNotFound    = errors.New("persona not found")
	ErrNotOwner           = errors.New("persona not owned by caller")
	ErrLastPersona        = errors.New("cannot delete the last remaining persona")
	ErrImmutableField     = errors.New("attempt to modify immutable persona field")
)

// PersonaService owns the persona lifecycle and the two core invariants:
// every initialized user has at least one persona, and at most one persona
// per user is active.
type PersonaService struct {
	Store store.Store
}

// CreatePersonaInput carries caller-supplied fields for a new persona.
// Anything left zero is filled from type-specific defaults.
type CreatePersonaInput struct {
	Name       string
	Type       domain.PersonaType
	IsPublic   bool
	Visibility *domain.VisibilitySettings
	Payload    *domain.PersonaPayload

	// Steps overrides the default onboarding sequence for the type.
	Steps []string
}

// Personas returns all personas owned by the user in creation order. An
// empty slice signals a not-yet-initialized user; callers should run
// EnsureInitialized first.
func (s *PersonaService) Personas(ctx context.Context, userID string) ([]domain.Persona, error) {
	return s.Store.Personas().ListByUser(ctx, userID)
}

// GetPersona returns one persona after an ownership check.
func (s *PersonaService) GetPersona(ctx context.Context, userID, personaID string) (domain.Persona, error) {
	persona, err := s.Store.Personas().Get(ctx, personaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Persona{}, ErrPersonaNotFound
		}
		return domain.Persona{}, err
	}
	if persona.UserID != userID {
		return domain.Persona{}, ErrNotOwner
	}
	return persona, nil
}

// EnsureInitialized makes sure the user has a profile row and at least one
// persona. It is idempotent and intended to run once at the top of the call
// chain (e.g. on first profile access), keeping the read paths pure for
// initialized users.
func (s *PersonaService) EnsureInitialized(ctx context.Context, userID, email, displayName string) (domain.Persona, error) {
	log := slogx.FromContext(ctx)

	// 1. Create the profile row if this is the first time we see the user.
	profile, err := s.Store.Profiles().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		profile = domain.Profile{
			UserID:      userID,
			Email:       email,
			DisplayName: displayName,
			Status:      domain.StatusActive,
		}
		if err := s.Store.Profiles().Create(ctx, profile); err != nil {
			log.Error("failed to create profile", slog.String("user_id", userID), slog.Any("error", err))
			return domain.Persona{}, err
		}
		log.Info("profile created", slog.String("user_id", userID))
	} else if err != nil {
		return domain.Persona{}, err
	}

	// 2. If the user already owns personas there is nothing left to do;
	// return whichever is active.
	personas, err := s.Store.Personas().ListByUser(ctx, userID)
	if err != nil {
		return domain.Persona{}, err
	}
	if len(personas) > 0 {
		return s.ActivePersona(ctx, userID)
	}

	// 3. Synthesize the default persona and mark it active.
	return s.createDefaultPersona(ctx, userID, displayName)
}

// ActivePersona resolves the user's active persona. Resolution is total for
// any user with a profile row: pointer match first, then the is_active flag,
// then the oldest persona (repairing flags as it goes), and for a user with
// zero personas it synthesizes a default custom persona. The fallbacks are
// read-repair for genuine inconsistency, not routine initialization.
func (s *PersonaService) ActivePersona(ctx context.Context, userID string) (domain.Persona, error) {
	log := slogx.FromContext(ctx)

	// 1. Load everything the user owns.
	personas, err := s.Store.Personas().ListByUser(ctx, userID)
	if err != nil {
		return domain.Persona{}, err
	}

	// 2. Zero personas: synthesize and persist the default.
	if len(personas) == 0 {
		log.Info("user has no personas, creating default", slog.String("user_id", userID))
		return s.EnsureInitialized(ctx, userID, "", "")
	}

	profile, err := s.Store.Profiles().Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.Persona{}, err
		}
		// Personas without a profile row should not happen; repair it.
		log.Warn("profile row missing for user with personas, repairing", slog.String("user_id", userID))
		profile = domain.Profile{UserID: userID, Status: domain.StatusActive}
		if err := s.Store.Profiles().Create(ctx, profile); err != nil {
			return domain.Persona{}, err
		}
	}

	// 3. Happy path: the pointer references an owned persona.
	if profile.ActivePersonaID != nil {
		for _, p := range personas {
			if p.ID == *profile.ActivePersonaID {
				return p, nil
			}
		}
		log.Warn("active persona pointer is stale",
			slog.String("user_id", userID),
			slog.String("active_persona_id", *profile.ActivePersonaID),
		)
	}

	// 4. Stale or missing pointer: trust the is_active flag and repair the
	// pointer.
	for _, p := range personas {
		if p.IsActive {
			if err := s.Store.Profiles().SetActivePersona(ctx, userID, &p.ID); err != nil {
				return domain.Persona{}, err
			}
			log.Info("repaired active persona pointer",
				slog.String("user_id", userID),
				slog.String("persona_id", p.ID),
			)
			return p, nil
		}
	}

	// 5. No persona is flagged active: fall back to the oldest and repair
	// both the flag and the pointer.
	oldest := personas[0]
	if err := s.activate(ctx, userID, oldest.ID); err != nil {
		return domain.Persona{}, err
	}
	log.Info("repaired active persona flags",
		slog.String("user_id", userID),
		slog.String("persona_id", oldest.ID),
	)

	oldest.IsActive = true
	return oldest, nil
}

// CreatePersona merges type-specific defaults with caller-supplied fields
// and creates the persona together with its empty onboarding state. The
// first persona a user creates becomes active.
func (s *PersonaService) CreatePersona(ctx context.Context, userID string, in CreatePersonaInput) (domain.Persona, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the type against the enumeration.
	if !in.Type.Valid() {
		log.Warn("persona creation with invalid type",
			slog.String("user_id", userID),
			slog.String("type", string(in.Type)),
		)
		return domain.Persona{}, ErrInvalidPersonaType
	}

	// 2. Merge defaults derived from the type.
	name := in.Name
	if name == "" {
		name = in.Type.DefaultName()
	}
	visibility := domain.VisibilitySettings{
		DiscoverableAs: []string{string(in.Type)},
		VisibleTo:      "network",
	}
	if in.Visibility != nil {
		visibility = *in.Visibility
	}
	var payload domain.PersonaPayload
	if in.Payload != nil {
		payload = *in.Payload
	}
	steps := in.Steps
	if len(steps) == 0 {
		steps = domain.DefaultSteps(in.Type)
	}

	count, err := s.Store.Personas().CountByUser(ctx, userID)
	if err != nil {
		return domain.Persona{}, err
	}
	firstPersona := count == 0

	now := time.Now().UTC()
	persona := domain.Persona{
		ID:         idx.New().String(),
		UserID:     userID,
		Name:       name,
		Type:       in.Type,
		IsActive:   firstPersona,
		IsPublic:   in.IsPublic,
		Visibility: visibility,
		Payload:    payload,
		CreatedAt:  now,
	}
	if firstPersona {
		persona.LastUsedAt = &now
	}

	// 3. Persist persona plus its empty onboarding state atomically; the
	// first persona also claims the profile pointer.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Personas().Create(ctx, persona); err != nil {
			return err
		}

		onboarding := domain.OnboardingState{
			UserID:      userID,
			PersonaID:   persona.ID,
			Steps:       steps,
			CurrentStep: steps[0],
		}
		if err := tx.Onboarding().Create(ctx, onboarding); err != nil {
			return err
		}

		if firstPersona {
			if err := s.ensureProfileTx(ctx, tx, userID); err != nil {
				return err
			}
			if err := tx.Profiles().SetActivePersona(ctx, userID, &persona.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create persona",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return domain.Persona{}, err
	}

	log.Info("persona created",
		slog.String("user_id", userID),
		slog.String("persona_id", persona.ID),
		slog.String("type", string(persona.Type)),
		slog.Bool("active", persona.IsActive),
	)
	return persona, nil
}

// UpdatePersona applies a partial update. Attempts to touch id, owner,
// creation timestamp or type fail with ErrImmutableField rather than being
// silently ignored.
func (s *PersonaService) UpdatePersona(ctx context.Context, userID, personaID string, patch domain.PersonaPatch) (domain.Persona, error) {
	log := slogx.FromContext(ctx)

	// 1. Reject writes to the immutable fields up front.
	if patch.SetsImmutable() {
		log.Warn("persona update touched immutable field",
			slog.String("user_id", userID),
			slog.String("persona_id", personaID),
		)
		return domain.Persona{}, ErrImmutableField
	}

	// 2. Load and check ownership.
	persona, err := s.GetPersona(ctx, userID, personaID)
	if err != nil {
		return domain.Persona{}, err
	}

	// 3. Nothing to change is a no-op, not an error.
	if patch.Empty() {
		return persona, nil
	}

	// 4. Merge the allow-listed fields.
	if patch.Name != nil {
		persona.Name = *patch.Name
	}
	if patch.IsPublic != nil {
		persona.IsPublic = *patch.IsPublic
	}
	if patch.Visibility != nil {
		persona.Visibility = *patch.Visibility
	}
	if patch.Payload != nil {
		persona.Payload = *patch.Payload
	}

	if err := s.Store.Personas().Update(ctx, persona); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Persona{}, ErrPersonaNotFound
		}
		return domain.Persona{}, err
	}

	log.Debug("persona updated",
		slog.String("user_id", userID),
		slog.String("persona_id", personaID),
	)
	return persona, nil
}

// DeletePersona removes a persona. Deleting the user's only persona fails
// with ErrLastPersona; deleting the active persona first activates the
// oldest remaining one so the one-active invariant survives the delete.
func (s *PersonaService) DeletePersona(ctx context.Context, userID, personaID string) error {
	log := slogx.FromContext(ctx)

	// 1. Load and check ownership.
	target, err := s.GetPersona(ctx, userID, personaID)
	if err != nil {
		return err
	}

	// 2. Refuse to delete the last persona.
	personas, err := s.Store.Personas().ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(personas) <= 1 {
		log.Warn("rejected delete of last persona",
			slog.String("user_id", userID),
			slog.String("persona_id", personaID),
		)
		return ErrLastPersona
	}

	// 3. Pick the successor: lowest creation timestamp among the rest.
	var successor domain.Persona
	for _, p := range personas {
		if p.ID != target.ID {
			successor = p
			break
		}
	}

	profile, err := s.Store.Profiles().Get(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	pointerAtTarget := err == nil && profile.ActivePersonaID != nil && *profile.ActivePersonaID == target.ID
	needsSuccessor := target.IsActive || pointerAtTarget

	// 4. Hand over activity and delete atomically. Onboarding rows and
	// rules are removed explicitly; the schema's cascade is a backstop.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if needsSuccessor {
			now := time.Now().UTC()
			if err := tx.Personas().SetActive(ctx, successor.ID, true, &now); err != nil {
				return err
			}
			if err := tx.Profiles().SetActivePersona(ctx, userID, &successor.ID); err != nil {
				return err
			}
		}
		if err := tx.Onboarding().Delete(ctx, target.ID); err != nil {
			return err
		}
		if err := tx.Rules().DeleteByPersona(ctx, target.ID); err != nil {
			return err
		}
		if err := tx.Personas().Delete(ctx, target.ID); err != nil {
			return err
		}
		if needsSuccessor {
			return tx.History().Append(ctx, domain.SwitchEntry{
				ID:            idx.New().String(),
				UserID:        userID,
				FromPersonaID: target.ID,
				ToPersonaID:   successor.ID,
				Trigger:       domain.TriggerAuto,
				Context:       "active persona deleted",
			})
		}
		return nil
	})
	if err != nil {
		log.Error("failed to delete persona",
			slog.String("user_id", userID),
			slog.String("persona_id", personaID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("persona deleted",
		slog.String("user_id", userID),
		slog.String("persona_id", personaID),
		slog.Bool("handed_over", needsSuccessor),
	)
	return nil
}

// SetActivePersona makes the given persona the user's active one. The
// target flag, the profile pointer and the other personas' flags are all
// written in one transaction, ordered target-true, pointer, others-false so
// a torn sequence can only ever leave an extra active flag, never zero.
func (s *PersonaService) SetActivePersona(ctx context.Context, userID, personaID string) error {
	log := slogx.FromContext(ctx)

	// 1. Verify the persona exists and the caller owns it.
	if _, err := s.GetPersona(ctx, userID, personaID); err != nil {
		return err
	}

	// 2. Flip the flags.
	if err := s.activate(ctx, userID, personaID); err != nil {
		log.Error("failed to activate persona",
			slog.String("user_id", userID),
			slog.String("persona_id", personaID),
			slog.Any("error", err),
		)
		return err
	}

	log.Debug("persona activated",
		slog.String("user_id", userID),
		slog.String("persona_id", personaID),
	)
	return nil
}

// activate performs the three activity writes inside one transaction.
func (s *PersonaService) activate(ctx context.Context, userID, personaID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		if err := tx.Personas().SetActive(ctx, personaID, true, &now); err != nil {
			return err
		}
		if err := s.ensureProfileTx(ctx, tx, userID); err != nil {
			return err
		}
		if err := tx.Profiles().SetActivePersona(ctx, userID, &personaID); err != nil {
			return err
		}
		return tx.Personas().DeactivateOthers(ctx, userID, personaID)
	})
}

// ensureProfileTx creates the profile row inside a transaction when it is
// missing. Repair path only; EnsureInitialized is the normal entry point.
func (s *PersonaService) ensureProfileTx(ctx context.Context, tx store.Tx, userID string) error {
	_, err := tx.Profiles().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return tx.Profiles().Create(ctx, domain.Profile{
			UserID: userID,
			Status: domain.StatusActive,
		})
	}
	return err
}

// createDefaultPersona builds the custom persona a fresh user starts with.
func (s *PersonaService) createDefaultPersona(ctx context.Context, userID, displayName string) (domain.Persona, error) {
	log := slogx.FromContext(ctx)

	name := displayName
	if name == "" {
		name = domain.PersonaCustom.DefaultName()
	}

	persona, err := s.CreatePersona(ctx, userID, CreatePersonaInput{
		Name: name,
		Type: domain.PersonaCustom,
	})
	if err != nil {
		return domain.Persona{}, err
	}

	// First activation: record it with no from-persona.
	err = s.Store.History().Append(ctx, domain.SwitchEntry{
		ID:          idx.New().String(),
		UserID:      userID,
		ToPersonaID: persona.ID,
		Trigger:     domain.TriggerAuto,
		Context:     "default persona created",
	})
	if err != nil {
		log.Error("failed to record initial activation", slog.Any("error", err))
		return domain.Persona{}, err
	}

	return persona, nil
}
