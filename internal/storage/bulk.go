package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// Columnar is a struct-of-arrays batch destined for one table.
type Columnar interface {
	Table() string
	Columns() []string
	Len() int

	// AppendRow appends the values of row i to dst in Columns() order.
	AppendRow(dst []any, i int) []any
}

// Result counts the work done by a chunked insert.
type Result struct {
	Statements int
	Rows       int
}

// Results accumulates per-table results.
type Results map[string]Result

// Add merges r into the entry for table.
func (rs Results) Add(table string, r Result) {
	cur := rs[table]
	cur.Statements += r.Statements
	cur.Rows += r.Rows
	rs[table] = cur
}

// Merge adds every entry of other.
func (rs Results) Merge(other Results) {
	for table, r := range other {
		rs.Add(table, r)
	}
}

// InsertChunked writes batch with one multi-row INSERT per chunk of
// maxParams/len(columns) rows, in batch order. A failed chunk stops the
// insert with a *ChunkWriteError. Earlier chunks are not undone unless exec
// is a transaction that the caller rolls back.
func InsertChunked(ctx context.Context, exec Executor, d Dialect, batch Columnar, maxParams int) (Result, error) {
	return insertChunks(ctx, d, batch, maxParams, "", func(chunk int, query string, args []any, rows int) error {
		_, err := exec.Exec(ctx, query, args...)
		return err
	})
}

// InsertChunkedReturning writes batch like InsertChunked and returns the
// generated id of every row, position i belonging to row i. Each chunk must
// return exactly one id per submitted row or a *KeyAssociationError is
// returned.
//
// Ids within a chunk are sorted ascending before they are associated: both
// backends draw sequence values in VALUES order, and RETURNING itself makes
// no ordering promise.
func InsertChunkedReturning(ctx context.Context, exec Executor, d Dialect, batch Columnar, maxParams int) ([]int64, Result, error) {
	ids := make([]int64, 0, batch.Len())

	res, err := insertChunks(ctx, d, batch, maxParams, " RETURNING id", func(chunk int, query string, args []any, rows int) error {
		got, err := exec.QueryIDs(ctx, query, args...)
		if err != nil {
			return err
		}
		if len(got) != rows {
			return &KeyAssociationError{
				Table:     batch.Table(),
				Chunk:     chunk,
				Submitted: rows,
				Returned:  len(got),
			}
		}
		slices.Sort(got)
		ids = append(ids, got...)
		return nil
	})
	if err != nil {
		return nil, res, err
	}
	return ids, res, nil
}

type chunkFunc func(chunk int, query string, args []any, rows int) error

func insertChunks(ctx context.Context, d Dialect, batch Columnar, maxParams int, suffix string, run chunkFunc) (Result, error) {
	var res Result

	n := batch.Len()
	if n == 0 {
		return res, nil
	}

	columns := batch.Columns()
	size := ChunkSize(maxParams, len(columns))
	args := make([]any, 0, min(size, n)*len(columns))

	for chunk, lo := 0, 0; lo < n; chunk, lo = chunk+1, lo+size {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		hi := min(lo+size, n)

		args = args[:0]
		for i := lo; i < hi; i++ {
			args = batch.AppendRow(args, i)
		}
		query := insertStatement(d, batch.Table(), columns, hi-lo) + suffix

		if err := run(chunk, query, args, hi-lo); err != nil {
			var kae *KeyAssociationError
			if errors.As(err, &kae) {
				return res, kae
			}
			return res, &ChunkWriteError{
				Table:  batch.Table(),
				Chunk:  chunk,
				Offset: lo,
				Rows:   hi - lo,
				Err:    err,
			}
		}

		res.Statements++
		res.Rows += hi - lo
	}

	return res, nil
}

// insertStatement renders INSERT INTO t (a, b) VALUES ($1, $2), ($3, $4).
func insertStatement(d Dialect, table string, columns []string, rows int) string {
	var sb strings.Builder
	sb.Grow(32 + len(table) + rows*len(columns)*6)

	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.Placeholder(n))
			n++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
