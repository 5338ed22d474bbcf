package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/venturemesh/identity/internal/identity/domain"
)

type rulesRepo struct {
	ext sqlx.ExtContext
}

type ruleRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PersonaID string    `db:"persona_id"`
	Kind      string    `db:"kind"`
	Pattern   string    `db:"pattern"`
	Priority  int       `db:"priority"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func mapRule(row ruleRow) domain.ContextRule {
	return domain.ContextRule{
		ID:        row.ID,
		UserID:    row.UserID,
		PersonaID: row.PersonaID,
		Kind:      domain.ContextKind(row.Kind),
		Pattern:   row.Pattern,
		Priority:  row.Priority,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const ruleColumns = `id, user_id, persona_id, kind, pattern, priority, created_at, updated_at`

func (r *rulesRepo) Get(ctx context.Context, id string) (domain.ContextRule, error) {
	var row ruleRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		`SELECT `+ruleColumns+` FROM context_rules WHERE id = ?`, id)
	if err != nil {
		return domain.ContextRule{}, mapNotFound(err)
	}
	return mapRule(row), nil
}

func (r *rulesRepo) ListByUser(ctx context.Context, userID string) ([]domain.ContextRule, error) {
	var rows []ruleRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT `+ruleColumns+` FROM context_rules WHERE user_id = ?
		 ORDER BY priority DESC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return mapRules(rows), nil
}

// ListByUserKind returns rules in evaluation order: priority descending,
// ties broken by creation order. ULIDs sort lexicographically by creation
// time, so id ASC is the creation-order tiebreak.
func (r *rulesRepo) ListByUserKind(ctx context.Context, userID string, kind domain.ContextKind) ([]domain.ContextRule, error) {
	var rows []ruleRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		`SELECT `+ruleColumns+` FROM context_rules WHERE user_id = ? AND kind = ?
		 ORDER BY priority DESC, id ASC`, userID, string(kind))
	if err != nil {
		return nil, err
	}
	return mapRules(rows), nil
}

func mapRules(rows []ruleRow) []domain.ContextRule {
	out := make([]domain.ContextRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRule(row))
	}
	return out
}

func (r *rulesRepo) Create(ctx context.Context, rule domain.ContextRule) error {
	now := time.Now().UTC()
	_, err := r.ext.ExecContext(ctx,
		`INSERT INTO context_rules (id, user_id, persona_id, kind, pattern, priority, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.UserID, rule.PersonaID, string(rule.Kind), rule.Pattern, rule.Priority, now, now)
	return err
}

func (r *rulesRepo) UpdatePriority(ctx context.Context, id string, priority int) error {
	res, err := r.ext.ExecContext(ctx,
		`UPDATE context_rules SET priority = ?, updated_at = ? WHERE id = ?`,
		priority, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *rulesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM context_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *rulesRepo) DeleteByPersona(ctx context.Context, personaID string) error {
	_, err := r.ext.ExecContext(ctx, `DELETE FROM context_rules WHERE persona_id = ?`, personaID)
	return err
}
