package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/venturemesh/identity/internal/identity/domain"
)

type onboardingRepo struct {
	ext sqlx.ExtContext
}

type onboardingRow struct {
	UserID          string       `db:"user_id"`
	PersonaID       string       `db:"persona_id"`
	Steps           string       `db:"steps"`
	CurrentStep     string       `db:"current_step"`
	CompletedSteps  string       `db:"completed_steps"`
	FormData        string       `db:"form_data"`
	StepCompletedAt string       `db:"step_completed_at"`
	IsComplete      bool         `db:"is_complete"`
	CompletedAt     sql.NullTime `db:"completed_at"`
	TimeSpentSecs   int64        `db:"time_spent_secs"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

func mapOnboarding(row onboardingRow) (domain.OnboardingState, error) {
	s := domain.OnboardingState{
		UserID:      row.UserID,
		PersonaID:   row.PersonaID,
		CurrentStep: row.CurrentStep,
		IsComplete:  row.IsComplete,
		CompletedAt: mapNullTimePtr(row.CompletedAt),
		TimeSpent:   time.Duration(row.TimeSpentSecs) * time.Second,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := decodeJSON(row.Steps, &s.Steps); err != nil {
		return domain.OnboardingState{}, err
	}
	if err := decodeJSON(row.CompletedSteps, &s.CompletedSteps); err != nil {
		return domain.OnboardingState{}, err
	}
	if err := decodeJSON(row.FormData, &s.FormData); err != nil {
		return domain.OnboardingState{}, err
	}
	if err := decodeJSON(row.StepCompletedAt, &s.StepCompletedAt); err != nil {
		return domain.OnboardingState{}, err
	}
	return s, nil
}

const onboardingColumns = `user_id, persona_id, steps, current_step, completed_steps, form_data, step_completed_at, is_complete, completed_at, time_spent_secs, created_at, updated_at`

func (r *onboardingRepo) Get(ctx context.Context, userID, personaID string) (domain.OnboardingState, error) {
	var row onboardingRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT `+onboardingColumns+` FROM onboarding_states WHERE user_id = ? AND persona_id = ?`,
		userID, personaID)
	if err != nil {
		return domain.OnboardingState{}, mapNotFound(err)
	}
	return mapOnboarding(row)
}

func (r *onboardingRepo) Create(ctx context.Context, s domain.OnboardingState) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO onboarding_states (user_id, persona_id, steps, current_step, completed_steps, form_data, step_completed_at, is_complete, completed_at, time_spent_secs, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.PersonaID,
		encodeJSON(s.Steps, "[]"), s.CurrentStep,
		encodeJSON(s.CompletedSteps, "[]"), encodeJSON(s.FormData, "{}"),
		encodeJSON(s.StepCompletedAt, "{}"),
		s.IsComplete, mapOptionalTime(s.CompletedAt),
		int64(s.TimeSpent.Seconds()), createdAt, updatedAt)
	return err
}

func (r *onboardingRepo) Update(ctx context.Context, s domain.OnboardingState) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE onboarding_states
		 SET current_step = ?, completed_steps = ?, form_data = ?, step_completed_at = ?,
		     is_complete = ?, completed_at = ?, time_spent_secs = ?, updated_at = ?
		 WHERE user_id = ? AND persona_id = ?`,
		s.CurrentStep, encodeJSON(s.CompletedSteps, "[]"),
		encodeJSON(s.FormData, "{}"), encodeJSON(s.StepCompletedAt, "{}"),
		s.IsComplete, mapOptionalTime(s.CompletedAt),
		int64(s.TimeSpent.Seconds()), time.Now().UTC(),
		s.UserID, s.PersonaID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *onboardingRepo) Delete(ctx context.Context, personaID string) error {
	_, err := r.ext.ExecContext(ctx,
		`DELETE FROM onboarding_states WHERE persona_id = ?`, personaID)
	return err
}
