package sqlite

import (
	"context"
	"database/sql"

	"github.com/lockhaven/identity/internal/identity/store"
)

// txStore scopes a Store to one transaction. sqlite has no nested
// transactions, so Tx and WithTx on a txStore reuse the same one.
type txStore struct {
	Store

	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Tx(_ context.Context) (store.Tx, error) { return t, nil }

func (t *txStore) WithTx(_ context.Context, fn func(tx store.Tx) error) error {
	return fn(t)
}
