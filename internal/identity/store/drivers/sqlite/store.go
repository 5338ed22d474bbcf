package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/venturemesh/identity/internal/identity/store"
)

// Store is the sqlite-backed implementation of store.Store. Queries are
// hand-written and scanned with sqlx struct tags; free-form bags (visibility,
// payload, form data) live in JSON-encoded TEXT columns.
type Store struct {
	db  *sqlx.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// An in-memory database exists per connection; pin the pool to one so
	// every query and the FK pragma see the same database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs so persona deletes cascade to onboarding rows and rules.
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling
// commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Rollback is safe to call after commit; this covers panics and early
	// error returns.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Profiles() store.Profiles     { return &profilesRepo{ext: s.db} }
func (s *Store) Personas() store.Personas     { return &personasRepo{ext: s.db} }
func (s *Store) Onboarding() store.Onboarding { return &onboardingRepo{ext: s.db} }
func (s *Store) Rules() store.Rules           { return &rulesRepo{ext: s.db} }
func (s *Store) History() store.History       { return &historyRepo{ext: s.db} }

// requireAffected maps a zero-row update or delete to store.ErrNotFound so
// services can distinguish "no such row" from success.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullString(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// encodeJSON marshals v for a TEXT column, falling back to the given zero
// literal for nil-ish values so columns never hold empty strings.
func encodeJSON(v any, zero string) string {
	b, err := json.Marshal(v)
	if err != nil || b == nil {
		return zero
	}
	if s := string(b); s != "null" {
		return s
	}
	return zero
}

func decodeJSON(data string, target any) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), target)
}
