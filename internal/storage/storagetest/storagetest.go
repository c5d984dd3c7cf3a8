// Package storagetest provides SQLite-backed stores and fault injection for
// writer tests.
package storagetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/withObsrvr/oracle-persist/internal/storage"
)

// NewSQLite returns an empty in-memory store closed at test cleanup.
func NewSQLite(t testing.TB) *storage.SQLiteStore {
	t.Helper()

	s, err := storage.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// CountRows returns the number of rows in table.
func CountRows(t testing.TB, s *storage.SQLiteStore, table string) int {
	t.Helper()

	var n int
	err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}

// Int64Column returns every value of an integer column ordered by rowid.
func Int64Column(t testing.TB, s *storage.SQLiteStore, table, column string) []int64 {
	t.Helper()

	rows, err := s.DB().Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", column, table))
	require.NoError(t, err)
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var v int64
		require.NoError(t, rows.Scan(&v))
		out = append(out, v)
	}
	require.NoError(t, rows.Err())
	return out
}

// FaultStore wraps a Store, recording every statement and optionally failing
// or tampering with them. It also wraps transactions opened through it.
type FaultStore struct {
	storage.Store

	// Fail is consulted before each statement; a non-nil error is returned
	// instead of running it.
	Fail func(query string) error

	// MangleIDs may rewrite the ids returned by QueryIDs.
	MangleIDs func(query string, ids []int64) []int64

	mu         sync.Mutex
	statements []string
	commits    int
	rollbacks  int
}

// Statements returns the statements seen so far whose text starts with prefix.
func (f *FaultStore) Statements(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, q := range f.statements {
		if strings.HasPrefix(q, prefix) {
			out = append(out, q)
		}
	}
	return out
}

// Commits returns how many transactions were committed.
func (f *FaultStore) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

// Rollbacks returns how many transactions were rolled back.
func (f *FaultStore) Rollbacks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rollbacks
}

func (f *FaultStore) before(query string) error {
	f.mu.Lock()
	f.statements = append(f.statements, query)
	f.mu.Unlock()

	if f.Fail != nil {
		return f.Fail(query)
	}
	return nil
}

func (f *FaultStore) exec(ctx context.Context, e storage.Executor, query string, args []any) (int64, error) {
	if err := f.before(query); err != nil {
		return 0, err
	}
	return e.Exec(ctx, query, args...)
}

func (f *FaultStore) queryIDs(ctx context.Context, e storage.Executor, query string, args []any) ([]int64, error) {
	if err := f.before(query); err != nil {
		return nil, err
	}
	ids, err := e.QueryIDs(ctx, query, args...)
	if err == nil && f.MangleIDs != nil {
		ids = f.MangleIDs(query, ids)
	}
	return ids, err
}

func (f *FaultStore) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return f.exec(ctx, f.Store, query, args)
}

func (f *FaultStore) QueryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	return f.queryIDs(ctx, f.Store, query, args)
}

func (f *FaultStore) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultTx{Tx: tx, f: f}, nil
}

type faultTx struct {
	storage.Tx
	f *FaultStore
}

func (t *faultTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return t.f.exec(ctx, t.Tx, query, args)
}

func (t *faultTx) QueryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	return t.f.queryIDs(ctx, t.Tx, query, args)
}

func (t *faultTx) Commit(ctx context.Context) error {
	err := t.Tx.Commit(ctx)
	if err == nil {
		t.f.mu.Lock()
		t.f.commits++
		t.f.mu.Unlock()
	}
	return err
}

func (t *faultTx) Rollback(ctx context.Context) error {
	t.f.mu.Lock()
	t.f.rollbacks++
	t.f.mu.Unlock()
	return t.Tx.Rollback(ctx)
}

// FailNth returns a Fail hook that errors on the n-th (1-based) statement
// starting with prefix.
func FailNth(prefix string, n int) func(string) error {
	var mu sync.Mutex
	seen := 0
	return func(query string) error {
		if !strings.HasPrefix(query, prefix) {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		seen++
		if seen == n {
			return fmt.Errorf("injected failure on %q statement %d", prefix, n)
		}
		return nil
	}
}
