// Package wire decodes and encodes the protobuf reward share records found
// in oracle output files.
//
// Messages are handled field by field with protowire rather than through
// generated code. Unknown fields are skipped; a known field carrying the
// wrong wire type is an error.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// DecodeError reports a malformed record. Record is the zero-based index of
// the record within its file.
type DecodeError struct {
	Record int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record %d: %v", e.Record, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var errInvalidUTF8 = errors.New("string field is not valid UTF-8")

type value struct {
	num protowire.Number
	typ protowire.Type
	u   uint64
	b   []byte
}

func (v value) wireTypeErr(want protowire.Type) error {
	return fmt.Errorf("field %d: wire type %d, want %d", v.num, v.typ, want)
}

func (v value) uint64() (uint64, error) {
	if v.typ != protowire.VarintType {
		return 0, v.wireTypeErr(protowire.VarintType)
	}
	return v.u, nil
}

// uint32 truncates like protobuf does for 32-bit varint fields.
func (v value) uint32() (uint32, error) {
	u, err := v.uint64()
	return uint32(u), err
}

func (v value) enum() (int32, error) {
	u, err := v.uint64()
	return int32(u), err
}

func (v value) bytes() ([]byte, error) {
	if v.typ != protowire.BytesType {
		return nil, v.wireTypeErr(protowire.BytesType)
	}
	return bytes.Clone(v.b), nil
}

func (v value) string() (string, error) {
	if v.typ != protowire.BytesType {
		return "", v.wireTypeErr(protowire.BytesType)
	}
	if !utf8.Valid(v.b) {
		return "", fmt.Errorf("field %d: %w", v.num, errInvalidUTF8)
	}
	return string(v.b), nil
}

// message returns the raw bytes of an embedded message.
func (v value) message() ([]byte, error) {
	if v.typ != protowire.BytesType {
		return nil, v.wireTypeErr(protowire.BytesType)
	}
	return v.b, nil
}

// decodeFields walks every field of a message. fn returning an error stops
// the walk.
func decodeFields(b []byte, fn func(v value) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		v := value{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v.u, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			v.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// decodeEmbedded decodes an embedded message field into a new T.
func decodeEmbedded[T any, P interface {
	*T
	Unmarshal([]byte) error
}](v value) (*T, error) {
	raw, err := v.message()
	if err != nil {
		return nil, err
	}
	m := P(new(T))
	if err := m.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("field %d: %w", v.num, err)
	}
	return (*T)(m), nil
}

// Encoding helpers follow proto3 rules: zero scalars are omitted, embedded
// messages are always written when present.

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

type marshaler interface {
	Marshal() []byte
}

func appendMessage(b []byte, num protowire.Number, m marshaler) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.Marshal())
}
