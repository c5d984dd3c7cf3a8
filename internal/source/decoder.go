package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrTruncatedFrame is returned when a stream ends inside a frame.
var ErrTruncatedFrame = errors.New("truncated frame")

// MaxFrameSize bounds a single record. Larger length prefixes are treated as
// corruption rather than allocated.
const MaxFrameSize = 64 << 20

// FrameReader splits a decompressed stream into length-delimited records:
// a 4-byte big-endian length followed by that many bytes.
type FrameReader struct {
	r       io.Reader
	closers []io.Closer
	header  [4]byte
}

// NewFrameReader wraps r, decompressing it according to c. Closing the
// FrameReader closes r when it is an io.Closer.
func NewFrameReader(r io.Reader, c Compression) (*FrameReader, error) {
	fr := &FrameReader{}
	if closer, ok := r.(io.Closer); ok {
		fr.closers = append(fr.closers, closer)
	}

	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			fr.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		fr.closers = append(fr.closers, gz)
		fr.r = gz
	case CompressionZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			fr.Close()
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		fr.closers = append(fr.closers, dec.IOReadCloser())
		fr.r = dec
	default:
		fr.r = r
	}
	return fr, nil
}

// Next returns the next record. It returns io.EOF when the stream ends
// cleanly between records and ErrTruncatedFrame when it ends inside one.
func (fr *FrameReader) Next() ([]byte, error) {
	n, err := io.ReadFull(fr.r, fr.header[:])
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: read %d of 4 bytes: %v", ErrTruncatedFrame, n, err)
	}

	size := binary.BigEndian.Uint32(fr.header[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit of %d", size, MaxFrameSize)
	}

	frame := make([]byte, size)
	if n, err := io.ReadFull(fr.r, frame); err != nil {
		return nil, fmt.Errorf("%w: body: read %d of %d bytes: %v", ErrTruncatedFrame, n, size, err)
	}
	return frame, nil
}

// Close releases the decompressor and the underlying reader, innermost
// first.
func (fr *FrameReader) Close() error {
	var errs []error
	for i := len(fr.closers) - 1; i >= 0; i-- {
		if err := fr.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	fr.closers = nil
	return errors.Join(errs...)
}

// AppendFrame appends record to b with its length prefix.
func AppendFrame(b, record []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(record)))
	return append(b, record...)
}
