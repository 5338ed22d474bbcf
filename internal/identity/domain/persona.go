package domain

import "time"

// PersonaType enumerates the professional identities a user can hold.
type PersonaType string

const (
	PersonaFounder         PersonaType = "founder"
	PersonaServiceProvider PersonaType = "service_provider"
	PersonaCompanyMember   PersonaType = "company_member"
	PersonaInvestor        PersonaType = "investor"
	PersonaAdvisor         PersonaType = "advisor"
	PersonaCommunity       PersonaType = "community"
	PersonaCustom          PersonaType = "custom"
)

// Valid reports whether t is one of the enumerated persona types.
func (t PersonaType) Valid() bool {
	switch t {
	case PersonaFounder, PersonaServiceProvider, PersonaCompanyMember,
		PersonaInvestor, PersonaAdvisor, PersonaCommunity, PersonaCustom:
		return true
	}
	return false
}

// DefaultName returns the human-readable name used when the caller doesn't
// supply one at creation time.
func (t PersonaType) DefaultName() string {
	switch t {
	case PersonaFounder:
		return "Founder"
	case PersonaServiceProvider:
		return "Service Provider"
	case PersonaCompanyMember:
		return "Company Member"
	case PersonaInvestor:
		return "Investor"
	case PersonaAdvisor:
		return "Advisor"
	case PersonaCommunity:
		return "Community"
	default:
		return "My Profile"
	}
}

// VisibilitySettings controls how a persona surfaces in discovery.
type VisibilitySettings struct {
	// DiscoverableAs are the role tags this persona can be found under.
	DiscoverableAs []string `json:"discoverable_as,omitempty"`

	// VisibleTo is the audience: "everyone", "network" or "nobody".
	VisibleTo string `json:"visible_to,omitempty"`

	// HiddenFields lists payload fields excluded from public views.
	HiddenFields []string `json:"hidden_fields,omitempty"`
}

// ProfessionalBackground captures career history attached to a persona.
type ProfessionalBackground struct {
	Headline   string   `json:"headline,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Industries []string `json:"industries,omitempty"`
	YearsExp   int      `json:"years_exp,omitempty"`
}

// NetworkLinks holds social and professional network references.
type NetworkLinks struct {
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// CompanyAffiliation ties a persona to a company in some role.
type CompanyAffiliation struct {
	CompanyID string `json:"company_id"`
	Role      string `json:"role,omitempty"`
	Current   bool   `json:"current,omitempty"`
}

// ProjectContext records what the persona is actively working on.
type ProjectContext struct {
	ProjectIDs []string `json:"project_ids,omitempty"`
	Focus      string   `json:"focus,omitempty"`
}

// Personalization carries signals used to tune feeds and suggestions.
type Personalization struct {
	Interests    []string `json:"interests,omitempty"`
	TimezoneName string   `json:"timezone,omitempty"`
	Language     string   `json:"language,omitempty"`
}

// BillingInfo is the per-persona billing block. Kept deliberately thin; the
// payments system owns the real records.
type BillingInfo struct {
	CustomerRef string `json:"customer_ref,omitempty"`
	Plan        string `json:"plan,omitempty"`
}

// PersonaPayload groups the optional role-specific blocks. All blocks are
// nullable; most personas only fill one or two.
type PersonaPayload struct {
	Professional    *ProfessionalBackground `json:"professional,omitempty"`
	Network         *NetworkLinks           `json:"network,omitempty"`
	Companies       []CompanyAffiliation    `json:"companies,omitempty"`
	Projects        *ProjectContext         `json:"projects,omitempty"`
	Personalization *Personalization        `json:"personalization,omitempty"`
	Billing         *BillingInfo            `json:"billing,omitempty"`
}

// Persona is one of a user's independent professional identities. At most
// one persona per user has IsActive set; every initialized user owns at
// least one persona.
type Persona struct {
	ID         string
	UserID     string
	Name       string
	Type       PersonaType
	IsActive   bool
	IsPublic   bool
	Visibility VisibilitySettings
	Payload    PersonaPayload
	CreatedAt  time.Time
	LastUsedAt *time.Time
	UpdatedAt  time.Time
}

// PersonaPatch is a partial update with a fixed allow-list of mutable
// fields. Immutable fields (id, owner, creation timestamp, type) are listed
// explicitly so attempts to set them can be rejected rather than silently
// dropped.
type PersonaPatch struct {
	Name       *string             `json:"name,omitempty"`
	IsPublic   *bool               `json:"is_public,omitempty"`
	Visibility *VisibilitySettings `json:"visibility,omitempty"`
	Payload    *PersonaPayload     `json:"payload,omitempty"`

	// Rejected when set.
	ID        *string    `json:"id,omitempty"`
	UserID    *string    `json:"user_id,omitempty"`
	Type      *string    `json:"type,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Empty reports whether the patch carries no mutable fields.
func (p PersonaPatch) Empty() bool {
	return p.Name == nil && p.IsPublic == nil && p.Visibility == nil && p.Payload == nil
}

// SetsImmutable reports whether the patch tries to write a field that never
// changes after creation.
func (p PersonaPatch) SetsImmutable() bool {
	return p.ID != nil || p.UserID != nil || p.Type != nil || p.CreatedAt != nil
}
