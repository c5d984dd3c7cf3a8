package storage

import (
	"errors"
	"fmt"
)

// ErrKeyAssociation matches any KeyAssociationError via errors.Is.
var ErrKeyAssociation = errors.New("generated id count does not match submitted rows")

// ChunkWriteError reports a failed chunked statement.
type ChunkWriteError struct {
	Table  string
	Chunk  int // zero-based chunk index
	Offset int // index of the chunk's first row in the batch
	Rows   int
	Err    error
}

func (e *ChunkWriteError) Error() string {
	return fmt.Sprintf("insert into %s: chunk %d (rows %d-%d): %v",
		e.Table, e.Chunk, e.Offset, e.Offset+e.Rows-1, e.Err)
}

func (e *ChunkWriteError) Unwrap() error { return e.Err }

// KeyAssociationError is returned when a RETURNING insert yields a different
// number of ids than rows submitted. Ids can no longer be matched to rows by
// position, so the whole batch must be abandoned.
type KeyAssociationError struct {
	Table     string
	Chunk     int
	Submitted int
	Returned  int
}

func (e *KeyAssociationError) Error() string {
	return fmt.Sprintf("insert into %s: chunk %d: submitted %d rows, got %d ids",
		e.Table, e.Chunk, e.Submitted, e.Returned)
}

func (e *KeyAssociationError) Is(target error) bool {
	return target == ErrKeyAssociation
}
