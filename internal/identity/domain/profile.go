package domain

import "time"

// AccountStatus is a soft lifecycle marker on the profile row. Profiles are
// never hard-deleted; they move between these states instead.
type AccountStatus string

const (
	StatusActive      AccountStatus = "active"
	StatusSuspended   AccountStatus = "suspended"
	StatusDeactivated AccountStatus = "deactivated"
)

// Profile is the core identity record, one per user. The user id comes from
// the external auth service; we never mint it ourselves.
type Profile struct {
	UserID      string
	Email       string
	DisplayName string
	Verified    bool
	Status      AccountStatus

	// ActivePersonaID points at the persona currently in use. It must
	// reference a persona owned by this user. Nil means the pointer has not
	// been set yet (fresh profile) and resolution falls back to the
	// is_active flag.
	ActivePersonaID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
