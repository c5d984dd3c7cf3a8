// Package storage writes columnar batches into a relational store.
//
// Two backends are provided: PostgreSQL through a pgx connection pool and
// SQLite through database/sql. Both expose the same Store, Tx and Executor
// interfaces so writers never depend on a concrete driver.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// Executor runs statements against a pool or an open transaction.
type Executor interface {
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// QueryIDs runs a statement returning a single integer column, such as
	// INSERT ... RETURNING id, and collects every returned value.
	QueryIDs(ctx context.Context, query string, args ...any) ([]int64, error)
}

// Tx is a transaction-scoped executor.
type Tx interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is a handle to a destination database.
type Store interface {
	Executor
	Begin(ctx context.Context) (Tx, error)
	Dialect() Dialect
	Close() error
}

// Config configures a store connection.
type Config struct {
	Driver         string        // "postgres" | "sqlite"
	URL            string        // connection string or SQLite DSN
	MaxConns       int32         // postgres pool size
	MinConns       int32         // postgres idle pool floor
	ConnectTimeout time.Duration // initial connect + ping
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ConnectTimeout
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return NewPostgresStore(ctx, cfg)
	case DriverSQLite:
		return NewSQLiteStore(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including on panic.
func WithTx(ctx context.Context, s Store, fn func(tx Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			// Rollback must run even when ctx is already cancelled.
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
