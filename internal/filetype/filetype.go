// Package filetype maps oracle file prefixes to their decoders and tables.
package filetype

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/withObsrvr/oracle-persist/internal/rewards"
	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/tables"
)

// Known file types.
const (
	MobileRewardShare = "mobile_reward_share"
	IotRewardShare    = "iot_reward_share"
)

// ErrUnknownFileType is returned by Lookup for an unregistered prefix.
var ErrUnknownFileType = errors.New("unknown file type")

// Batch is the decoded content of one file, ready to persist.
type Batch interface {
	Records() int
	Dropped() int
	Counts() rewards.Counts
	Persist(ctx context.Context, s storage.Store, maxParams int) (storage.Results, error)
}

// Handler describes how one file type is decoded and where it lands.
type Handler struct {
	Name   string // file name prefix
	Tables []tables.Table
	Decode func(frames rewards.Frames, log *slog.Logger) (Batch, error)
}

var registry = map[string]Handler{
	MobileRewardShare: {
		Name:   MobileRewardShare,
		Tables: rewards.MobileTables(),
		Decode: func(frames rewards.Frames, log *slog.Logger) (Batch, error) {
			b, err := rewards.DecodeMobile(frames, log)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	},
	IotRewardShare: {
		Name:   IotRewardShare,
		Tables: rewards.IotTables(),
		Decode: func(frames rewards.Frames, log *slog.Logger) (Batch, error) {
			b, err := rewards.DecodeIot(frames, log)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	},
}

// Lookup returns the handler registered for name.
func Lookup(name string) (Handler, error) {
	h, ok := registry[name]
	if !ok {
		return Handler{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownFileType, name, Names())
	}
	return h, nil
}

// Names lists the registered file types in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
