package storage

import "testing"

func TestChunkSize(t *testing.T) {
	tests := []struct {
		maxParams, columns, want int
	}{
		{65535, 16, 4095},
		{65535, 11, 5957},
		{65535, 5, 13107},
		{65535, 3, 21845},
		{32766, 4, 8191},
		{10, 11, 1}, // never below one row
		{100, 0, 0},
	}

	for _, tt := range tests {
		if got := ChunkSize(tt.maxParams, tt.columns); got != tt.want {
			t.Errorf("ChunkSize(%d, %d) = %d, want %d", tt.maxParams, tt.columns, got, tt.want)
		}
	}
}

func TestInsertStatement(t *testing.T) {
	cols := []string{"a", "b"}

	got := insertStatement(Postgres, "t", cols, 2)
	want := "INSERT INTO t (a, b) VALUES ($1, $2), ($3, $4)"
	if got != want {
		t.Errorf("postgres statement = %q, want %q", got, want)
	}

	got = insertStatement(SQLite, "t", cols, 2)
	want = "INSERT INTO t (a, b) VALUES (?, ?), (?, ?)"
	if got != want {
		t.Errorf("sqlite statement = %q, want %q", got, want)
	}
}

func TestResultsMerge(t *testing.T) {
	rs := Results{}
	rs.Add("a", Result{Statements: 1, Rows: 3})
	rs.Merge(Results{"a": {Statements: 2, Rows: 5}, "b": {Statements: 1, Rows: 1}})

	if rs["a"] != (Result{Statements: 3, Rows: 8}) {
		t.Errorf("a = %+v", rs["a"])
	}
	if rs["b"] != (Result{Statements: 1, Rows: 1}) {
		t.Errorf("b = %+v", rs["b"])
	}
}

func TestParamLimit(t *testing.T) {
	tests := []struct {
		d     Dialect
		limit int
		want  int
	}{
		{Postgres, 0, 65535},
		{Postgres, 1000, 1000},
		{Postgres, 100000, 65535},
		{SQLite, -1, 32766},
		{SQLite, 999, 999},
	}
	for _, tt := range tests {
		if got := tt.d.ParamLimit(tt.limit); got != tt.want {
			t.Errorf("%s.ParamLimit(%d) = %d, want %d", tt.d.Name, tt.limit, got, tt.want)
		}
	}
}
