package domain

import "time"

// ContextKind is the category of runtime signal a rule matches against.
type ContextKind string

const (
	ContextURLPath       ContextKind = "url_path"
	ContextCompanyView   ContextKind = "company_view"
	ContextFeatureUsage  ContextKind = "feature_usage"
	ContextTimeOfDay     ContextKind = "time_of_day"
	ContextReferringSite ContextKind = "referring_site"
)

// Valid reports whether k is one of the enumerated context kinds.
func (k ContextKind) Valid() bool {
	switch k {
	case ContextURLPath, ContextCompanyView, ContextFeatureUsage,
		ContextTimeOfDay, ContextReferringSite:
		return true
	}
	return false
}

// ContextRule maps a context signal onto a target persona. Rules are
// immutable after creation except for priority edits.
//
// Pattern is stored as a plain regular expression string and compiled lazily
// at evaluation time; a rule whose pattern no longer compiles is skipped,
// never fatal.
type ContextRule struct {
	ID        string
	UserID    string
	PersonaID string
	Kind      ContextKind
	Pattern   string
	Priority  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
