package store

import (
	"context"
	"errors"
	"time"

	"github.com/venturemesh/identity/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories are exposed as methods so
// a Tx-scoped Store can hand out the same repos bound to its transaction.
type Store interface {
	Profiles() Profiles
	Personas() Personas
	Onboarding() Onboarding
	Rules() Rules
	History() History

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn returns an
	// error and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Profiles interface {
	// Get returns the profile for a user.
	Get(ctx context.Context, userID string) (domain.Profile, error)

	// Create inserts a new profile row.
	Create(ctx context.Context, p domain.Profile) error

	// SetActivePersona updates the active-persona pointer. A nil personaID
	// clears it.
	SetActivePersona(ctx context.Context, userID string, personaID *string) error

	// UpdateStatus moves the profile between soft lifecycle states.
	UpdateStatus(ctx context.Context, userID string, status domain.AccountStatus) error

	// Update mutates email, display name and verified flag.
	Update(ctx context.Context, p domain.Profile) error
}

type Personas interface {
	// Get returns a persona by id.
	Get(ctx context.Context, id string) (domain.Persona, error)

	// ListByUser returns all personas owned by a user in creation order.
	ListByUser(ctx context.Context, userID string) ([]domain.Persona, error)

	// CountByUser returns the number of personas a user owns.
	CountByUser(ctx context.Context, userID string) (int, error)

	// Create inserts a new persona (id is provided by the app via ULID).
	Create(ctx context.Context, p domain.Persona) error

	// Update rewrites the mutable columns (name, public flag, visibility,
	// payload) and bumps updated_at.
	Update(ctx context.Context, p domain.Persona) error

	// SetActive flips is_active; when activating, lastUsedAt is stamped too.
	SetActive(ctx context.Context, id string, active bool, lastUsedAt *time.Time) error

	// DeactivateOthers clears is_active on every persona of the user except
	// the given one.
	DeactivateOthers(ctx context.Context, userID, exceptID string) error

	// Delete removes a persona. Onboarding state and rules targeting it go
	// with it (per schema).
	Delete(ctx context.Context, id string) error
}

type Onboarding interface {
	// Get returns the onboarding state for a (user, persona) pair.
	Get(ctx context.Context, userID, personaID string) (domain.OnboardingState, error)

	// Create inserts a fresh onboarding row.
	Create(ctx context.Context, s domain.OnboardingState) error

	// Update rewrites progress columns and bumps updated_at.
	Update(ctx context.Context, s domain.OnboardingState) error

	// Delete removes the row for a persona (used on cascading deletes where
	// the schema cannot).
	Delete(ctx context.Context, personaID string) error
}

type Rules interface {
	// Get returns a rule by id.
	Get(ctx context.Context, id string) (domain.ContextRule, error)

	// ListByUser returns every rule a user owns, priority order.
	ListByUser(ctx context.Context, userID string) ([]domain.ContextRule, error)

	// ListByUserKind returns the rules for one context kind ordered by
	// priority descending, ties broken by creation order (earliest first).
	// This ordering is the rule engine's sole conflict-resolution mechanism.
	ListByUserKind(ctx context.Context, userID string, kind domain.ContextKind) ([]domain.ContextRule, error)

	// Create inserts a new rule.
	Create(ctx context.Context, r domain.ContextRule) error

	// UpdatePriority is the only permitted mutation on an existing rule.
	UpdatePriority(ctx context.Context, id string, priority int) error

	// Delete removes a rule.
	Delete(ctx context.Context, id string) error

	// DeleteByPersona removes every rule targeting a persona (used when the
	// persona itself is deleted).
	DeleteByPersona(ctx context.Context, personaID string) error
}

type History interface {
	// Append writes one audit entry. There is no update or delete.
	Append(ctx context.Context, e domain.SwitchEntry) error

	// ListByUser returns the most recent entries, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.SwitchEntry, error)

	// DeleteOlderThan prunes entries past the retention window
	// (housekeeping only).
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
