package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type sqlExecutor struct {
	q sqlQuerier
}

func (e sqlExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (e sqlExecutor) QueryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := e.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SQLiteStore implements Store on database/sql with the sqlite3 driver.
type SQLiteStore struct {
	sqlExecutor
	db *sql.DB
}

// NewSQLiteStore opens dsn, for example "file:rewards.db" or ":memory:".
//
// The pool is limited to one connection: an in-memory database lives only as
// long as its connection, and SQLite serializes writers anyway.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{sqlExecutor: sqlExecutor{q: db}, db: db}, nil
}

// Begin starts a transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{sqlExecutor: sqlExecutor{q: tx}, tx: tx}, nil
}

func (s *SQLiteStore) Dialect() Dialect { return SQLite }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// DB exposes the underlying handle for inspection queries.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

type sqlTx struct {
	sqlExecutor
	tx *sql.Tx
}

func (t *sqlTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) Rollback(context.Context) error { return t.tx.Rollback() }
