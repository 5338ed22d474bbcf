package domain

import "time"

// StepWelcome is the first step of every onboarding sequence.
const StepWelcome = "welcome"

// DefaultSteps returns the ordered onboarding sequence for a persona type.
// Sequences always begin at welcome and end at review; the middle varies by
// role. Callers may override the sequence at persona creation.
func DefaultSteps(t PersonaType) []string {
	switch t {
	case PersonaFounder:
		return []string{StepWelcome, "basic_info", "company_details", "visibility", "review"}
	case PersonaInvestor:
		return []string{StepWelcome, "basic_info", "investment_focus", "visibility", "review"}
	case PersonaServiceProvider:
		return []string{StepWelcome, "basic_info", "services_offered", "visibility", "review"}
	case PersonaCompanyMember:
		return []string{StepWelcome, "basic_info", "company_role", "visibility", "review"}
	case PersonaAdvisor:
		return []string{StepWelcome, "basic_info", "expertise", "visibility", "review"}
	case PersonaCommunity:
		return []string{StepWelcome, "basic_info", "interests", "visibility", "review"}
	default:
		return []string{StepWelcome, "basic_info", "visibility", "review"}
	}
}

// OnboardingState tracks a persona's progress through its step sequence,
// one row per (user, persona) pair.
//
// Invariant: CurrentStep never appears in CompletedSteps until IsComplete is
// set, at which point CurrentStep is the terminal step of the sequence.
type OnboardingState struct {
	UserID    string
	PersonaID string

	// Steps is the ordered sequence this persona walks through.
	Steps []string

	CurrentStep    string
	CompletedSteps []string

	// FormData is the free-form bag of values collected along the way.
	FormData map[string]any

	// StepCompletedAt records when each step was finished.
	StepCompletedAt map[string]time.Time

	IsComplete  bool
	CompletedAt *time.Time

	// TimeSpent accumulates active time across steps.
	TimeSpent time.Duration

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TerminalStep returns the last step of the sequence, or "" for an empty
// sequence (which should never persist).
func (s *OnboardingState) TerminalStep() string {
	if len(s.Steps) == 0 {
		return ""
	}
	return s.Steps[len(s.Steps)-1]
}

// NextStep returns the step following the given one, or "" when step is
// terminal or not part of the sequence.
func (s *OnboardingState) NextStep(step string) string {
	for i, name := range s.Steps {
		if name == step && i+1 < len(s.Steps) {
			return s.Steps[i+1]
		}
	}
	return ""
}

// HasCompleted reports whether the named step is already in CompletedSteps.
func (s *OnboardingState) HasCompleted(step string) bool {
	for _, name := range s.CompletedSteps {
		if name == step {
			return true
		}
	}
	return false
}
