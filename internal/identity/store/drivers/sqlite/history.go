package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/venturemesh/identity/internal/identity/domain"
)

type historyRepo struct {
	ext sqlx.ExtContext
}

type historyRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	FromPersonaID sql.NullString `db:"from_persona_id"`
	ToPersonaID   string         `db:"to_persona_id"`
	TriggerKind   string         `db:"trigger_kind"`
	Context       string         `db:"context"`
	CreatedAt     time.Time      `db:"created_at"`
}

func mapHistory(row historyRow) domain.SwitchEntry {
	e := domain.SwitchEntry{
		ID:          row.ID,
		UserID:      row.UserID,
		ToPersonaID: row.ToPersonaID,
		Trigger:     domain.SwitchTrigger(row.TriggerKind),
		Context:     row.Context,
		CreatedAt:   row.CreatedAt,
	}
	if row.FromPersonaID.Valid {
		e.FromPersonaID = row.FromPersonaID.String
	}
	return e
}

func (r *historyRepo) Append(ctx context.Context, e domain.SwitchEntry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var from sql.NullString
	if e.FromPersonaID != "" {
		from = sql.NullString{String: e.FromPersonaID, Valid: true}
	}
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO switch_history (id, user_id, from_persona_id, to_persona_id, trigger_kind, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, from, e.ToPersonaID, string(e.Trigger), e.Context, createdAt)
	return err
}

func (r *historyRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SwitchEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []historyRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT id, user_id, from_persona_id, to_persona_id, trigger_kind, context, created_at
		 FROM switch_history WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SwitchEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapHistory(row))
	}
	return out, nil
}

func (r *historyRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.ext.ExecContext(ctx,
		`DELETE FROM switch_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
