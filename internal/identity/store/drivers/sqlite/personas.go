package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/venturemesh/identity/internal/identity/domain"
)

type personasRepo struct {
	ext sqlx.ExtContext
}

type personaRow struct {
	ID         string       `db:"id"`
	UserID     string       `db:"user_id"`
	Name       string       `db:"name"`
	Type       string       `db:"type"`
	IsActive   bool         `db:"is_active"`
	IsPublic   bool         `db:"is_public"`
	Visibility string       `db:"visibility"`
	Payload    string       `db:"payload"`
	CreatedAt  time.Time    `db:"created_at"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

func mapPersona(row personaRow) (domain.Persona, error) {
	p := domain.Persona{
		ID:         row.ID,
		UserID:     row.UserID,
		Name:       row.Name,
		Type:       domain.PersonaType(row.Type),
		IsActive:   row.IsActive,
		IsPublic:   row.IsPublic,
		CreatedAt:  row.CreatedAt,
		LastUsedAt: mapNullTimePtr(row.LastUsedAt),
		UpdatedAt:  row.UpdatedAt,
	}
	if err := decodeJSON(row.Visibility, &p.Visibility); err != nil {
		return domain.Persona{}, err
	}
	if err := decodeJSON(row.Payload, &p.Payload); err != nil {
		return domain.Persona{}, err
	}
	return p, nil
}

const personaColumns = `id, user_id, name, type, is_active, is_public, visibility, payload, created_at, last_used_at, updated_at`

func (r *personasRepo) Get(ctx context.Context, id string) (domain.Persona, error) {
	var row personaRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT `+personaColumns+` FROM personas WHERE id = ?`, id)
	if err != nil {
		return domain.Persona{}, mapNotFound(err)
	}
	return mapPersona(row)
}

func (r *personasRepo) ListByUser(ctx context.Context, userID string) ([]domain.Persona, error) {
	var rows []personaRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT `+personaColumns+` FROM personas WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Persona, 0, len(rows))
	for _, row := range rows {
		p, err := mapPersona(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *personasRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.ext, &count,
		`SELECT COUNT(*) FROM personas WHERE user_id = ?`, userID)
	return count, err
}

func (r *personasRepo) Create(ctx context.Context, p domain.Persona) error {
	now := time.Now().UTC()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO personas (id, user_id, name, type, is_active, is_public, visibility, payload, created_at, last_used_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, string(p.Type), p.IsActive, p.IsPublic,
		encodeJSON(p.Visibility, "{}"), encodeJSON(p.Payload, "{}"),
		createdAt, mapOptionalTime(p.LastUsedAt), now)
	return err
}

func (r *personasRepo) Update(ctx context.Context, p domain.Persona) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE personas SET name = ?, is_public = ?, visibility = ?, payload = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.IsPublic, encodeJSON(p.Visibility, "{}"), encodeJSON(p.Payload, "{}"),
		time.Now().UTC(), p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *personasRepo) SetActive(ctx context.Context, id string, active bool, lastUsedAt *time.Time) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE personas SET is_active = ?, last_used_at = COALESCE(?, last_used_at), updated_at = ? WHERE id = ?`,
		active, mapOptionalTime(lastUsedAt), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *personasRepo) DeactivateOthers(ctx context.Context, userID, exceptID string) error {
	_, err := r.ext.ExecContext(ctx,
		`UPDATE personas SET is_active = 0, updated_at = ? WHERE user_id = ? AND id != ? AND is_active = 1`,
		time.Now().UTC(), userID, exceptID)
	return err
}

func (r *personasRepo) Delete(ctx context.Context, id string) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
