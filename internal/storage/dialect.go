package storage

import "strconv"

// ColumnType is a driver-neutral column type used when rendering DDL.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeBigInt
	TypeInt
	TypeNumeric
	TypeTimestamp
	TypeBytes
	TypeJSON
)

// Dialect captures the SQL differences between backends that the writers
// and the table provisioner care about.
type Dialect struct {
	Name string

	// MaxParams is the largest number of bound parameters a single
	// statement may carry.
	MaxParams int

	positional  bool
	serialPK    string
	columnTypes map[ColumnType]string
}

// Postgres allows up to 65535 parameters per statement (uint16 count in the
// Bind message).
var Postgres = Dialect{
	Name:       DriverPostgres,
	MaxParams:  65535,
	positional: true,
	serialPK:   "id BIGSERIAL PRIMARY KEY",
	columnTypes: map[ColumnType]string{
		TypeText:      "text",
		TypeBigInt:    "int8",
		TypeInt:       "int4",
		TypeNumeric:   "numeric",
		TypeTimestamp: "timestamptz",
		TypeBytes:     "bytea",
		TypeJSON:      "jsonb",
	},
}

// SQLite uses the SQLITE_MAX_VARIABLE_NUMBER default of 32766. Decimals are
// kept as TEXT so values round-trip exactly.
var SQLite = Dialect{
	Name:       DriverSQLite,
	MaxParams:  32766,
	positional: false,
	serialPK:   "id INTEGER PRIMARY KEY AUTOINCREMENT",
	columnTypes: map[ColumnType]string{
		TypeText:      "TEXT",
		TypeBigInt:    "INTEGER",
		TypeInt:       "INTEGER",
		TypeNumeric:   "TEXT",
		TypeTimestamp: "TIMESTAMP",
		TypeBytes:     "BLOB",
		TypeJSON:      "TEXT",
	},
}

// Placeholder returns the bind marker for the n-th parameter (1-based).
func (d Dialect) Placeholder(n int) string {
	if d.positional {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// ColumnType returns the SQL type name for t.
func (d Dialect) ColumnType(t ColumnType) string {
	return d.columnTypes[t]
}

// SerialPrimaryKey returns the column definition of a generated id.
func (d Dialect) SerialPrimaryKey() string {
	return d.serialPK
}

// ChunkSize returns how many rows of the given width fit in one statement.
// It is never less than one.
func ChunkSize(maxParams, columns int) int {
	if columns <= 0 {
		return 0
	}
	n := maxParams / columns
	if n < 1 {
		return 1
	}
	return n
}

// ParamLimit returns the parameter limit to chunk with: limit itself when it
// is positive and within the dialect maximum, the dialect maximum otherwise.
func (d Dialect) ParamLimit(limit int) int {
	if limit <= 0 || limit > d.MaxParams {
		return d.MaxParams
	}
	return limit
}
