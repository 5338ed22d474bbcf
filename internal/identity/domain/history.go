package domain

import "time"

// SwitchTrigger says what caused a persona switch.
type SwitchTrigger string

const (
	// TriggerManual is a user-initiated switch.
	TriggerManual SwitchTrigger = "manual"

	// TriggerAuto is a system-initiated switch without a matched rule
	// (initialization, repair of an inconsistent active flag).
	TriggerAuto SwitchTrigger = "auto"

	// TriggerRule is a switch caused by a matched context rule.
	TriggerRule SwitchTrigger = "rule"
)

// SwitchEntry is one row of the append-only persona transition audit trail.
// Entries are never updated or deleted, apart from retention pruning by the
// housekeeping worker.
type SwitchEntry struct {
	ID     string
	UserID string

	// FromPersonaID is empty on first activation.
	FromPersonaID string
	ToPersonaID   string

	Trigger SwitchTrigger

	// Context is optional free text, e.g. the signal value that matched.
	Context string

	CreatedAt time.Time
}
