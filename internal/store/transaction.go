package store

import (
	"context"
	"database/sql"
	"fmt"
)

type txCtxKeyT int8

const txCtxKey = txCtxKeyT(1)

// conn is satisfied by both *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func txFromContext(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txCtxKey).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// conn returns the transaction carried by ctx, or the pool when there is none.
// Every query in this package goes through it so that work started inside
// TxFn never escapes the transaction.
func (s *Store) conn(ctx context.Context) conn {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// TxFn runs f inside a single transaction. The transaction travels on the
// context passed to f; store methods called with that context join it.
// A nested TxFn joins the outer transaction instead of opening a new one.
// Any error from f rolls everything back.
func (s *Store) TxFn(ctx context.Context, f func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if txFromContext(ctx) != nil {
		return f(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}

	// no-op after a successful commit
	defer func() { _ = tx.Rollback() }()

	if err := f(context.WithValue(ctx, txCtxKey, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit: %w", err)
	}

	return nil
}
