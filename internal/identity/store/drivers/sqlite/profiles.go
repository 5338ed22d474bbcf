package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/venturemesh/identity/internal/identity/domain"
)

type profilesRepo struct {
	ext sqlx.ExtContext
}

type profileRow struct {
	UserID          string         `db:"user_id"`
	Email           string         `db:"email"`
	DisplayName     string         `db:"display_name"`
	Verified        bool           `db:"verified"`
	Status          string         `db:"status"`
	ActivePersonaID sql.NullString `db:"active_persona_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func mapProfile(row profileRow) domain.Profile {
	return domain.Profile{
		UserID:          row.UserID,
		Email:           row.Email,
		DisplayName:     row.DisplayName,
		Verified:        row.Verified,
		Status:          domain.AccountStatus(row.Status),
		ActivePersonaID: mapNullString(row.ActivePersonaID),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func (r *profilesRepo) Get(ctx context.Context, userID string) (domain.Profile, error) {
	var row profileRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT user_id, email, display_name, verified, status, active_persona_id, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return mapProfile(row), nil
}

func (r *profilesRepo) Create(ctx context.Context, p domain.Profile) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO profiles (user_id, email, display_name, verified, status, active_persona_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Email, p.DisplayName, p.Verified, string(p.Status),
		mapOptionalString(p.ActivePersonaID), now, now)
	return err
}

func (r *profilesRepo) SetActivePersona(ctx context.Context, userID string, personaID *string) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE profiles SET active_persona_id = ?, updated_at = ? WHERE user_id = ?`,
		mapOptionalString(personaID), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *profilesRepo) UpdateStatus(ctx context.Context, userID string, status domain.AccountStatus) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE profiles SET status = ?, updated_at = ? WHERE user_id = ?`,
		string(status), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *profilesRepo) Update(ctx context.Context, p domain.Profile) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE profiles SET email = ?, display_name = ?, verified = ?, updated_at = ? WHERE user_id = ?`,
		p.Email, p.DisplayName, p.Verified, time.Now().UTC(), p.UserID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
