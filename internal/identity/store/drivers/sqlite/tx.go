package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/venturemesh/identity/internal/identity/store"
)

type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rollbacks; outer DB stays open

// Ping is a no-op for transactions; the connection is already established.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Profiles() store.Profiles     { return &profilesRepo{ext: t.tx} }
func (t *txStore) Personas() store.Personas     { return &personasRepo{ext: t.tx} }
func (t *txStore) Onboarding() store.Onboarding { return &onboardingRepo{ext: t.tx} }
func (t *txStore) Rules() store.Rules           { return &rulesRepo{ext: t.tx} }
func (t *txStore) History() store.History       { return &historyRepo{ext: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts
