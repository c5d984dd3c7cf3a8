// Package rewards turns decoded reward share records into columnar batches
// and writes them to the destination tables.
//
// Every record carries a reward window and at most one reward variant. The
// router appends each record to the accumulator for its variant; at the end
// of a file the accumulators are drained by their writers. Radio reward v2
// rows fan out into child tables keyed by the generated parent id and are
// written in a single transaction.
package rewards

import (
	"errors"
	"io"
	"time"

	"github.com/withObsrvr/oracle-persist/internal/wire"
)

// Frames yields the raw records of one file. Next returns io.EOF after the
// last record.
type Frames interface {
	Next() ([]byte, error)
}

// MobileShare is one decoded mobile reward share.
type MobileShare struct {
	StartPeriod time.Time
	EndPeriod   time.Time

	// Reward is nil when the record has no variant set.
	Reward wire.MobileReward
}

// MobileDecoder reads MobileShares from a frame stream. It is single-use:
// once Next has returned an error every later call returns it again.
type MobileDecoder struct {
	frames Frames
	index  int
	err    error
}

func NewMobileDecoder(frames Frames) *MobileDecoder {
	return &MobileDecoder{frames: frames}
}

// Next returns the next share, io.EOF at the end of the stream, or a
// *wire.DecodeError for the first malformed record.
func (d *MobileDecoder) Next() (MobileShare, error) {
	if d.err != nil {
		return MobileShare{}, d.err
	}

	raw, err := nextFrame(d.frames, d.index)
	if err != nil {
		d.err = err
		return MobileShare{}, err
	}

	var m wire.MobileRewardShare
	if err := m.Unmarshal(raw); err != nil {
		d.err = &wire.DecodeError{Record: d.index, Err: err}
		return MobileShare{}, d.err
	}
	d.index++

	return MobileShare{
		StartPeriod: toTime(m.StartPeriod),
		EndPeriod:   toTime(m.EndPeriod),
		Reward:      m.Reward,
	}, nil
}

// nextFrame reads one frame. Framing failures count as a malformed record
// at position index.
func nextFrame(frames Frames, index int) ([]byte, error) {
	raw, err := frames.Next()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &wire.DecodeError{Record: index, Err: err}
	}
	return raw, nil
}

// toTime converts epoch seconds to UTC.
func toTime(secs uint64) time.Time {
	return time.Unix(int64(secs), 0).UTC()
}
