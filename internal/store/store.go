// Package store is the persistent contact table.
//
// It owns every Contact row and keeps ids contiguous: deleting a contact
// shifts every higher id down by one inside the same transaction, so readers
// never observe a gap or a duplicate. PostgreSQL (via pgx) and SQLite (via
// modernc.org/sqlite) are supported; the connection string picks the engine.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const tableName = "contacts"

// Store provides transactional operations on the contact table.
// It is safe for concurrent use; each call acquires a pooled connection (or
// the context's transaction) and releases it before returning.
type Store struct {
	db      *sql.DB
	qb      squirrel.StatementBuilderType
	dialect dialect
}

// Open connects to the database named by databaseURL and verifies the
// connection. It does not create the schema; call Migrate for that.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	d, dsn, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
	}
	if d.maxOpenConns > 0 {
		db.SetMaxOpenConns(d.maxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", d.name, err)
	}

	return &Store{
		db:      db,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(d.placeholder),
		dialect: d,
	}, nil
}

// Migrate creates the contacts table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("unable to create table: %w", err)
	}
	return nil
}

// Dialect names the engine behind this store ("sqlite" or "postgres").
func (s *Store) Dialect() string {
	return s.dialect.name
}

// Ping verifies database connectivity. Useful for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool. Implements io.Closer.
func (s *Store) Close() error {
	return s.db.Close()
}
