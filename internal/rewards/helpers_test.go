package rewards_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/withObsrvr/oracle-persist/internal/rewards"
	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/storage/storagetest"
	"github.com/withObsrvr/oracle-persist/internal/tables"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

const (
	periodStart = 1_717_200_000
	periodEnd   = 1_717_286_400
)

// hotspotKey returns a mainnet ed25519 public key filled with b.
func hotspotKey(b byte) []byte {
	key := bytes.Repeat([]byte{b}, 33)
	key[0] = 0x01
	return key
}

// frameList replays encoded records, then returns err (io.EOF by default).
type frameList struct {
	frames [][]byte
	err    error
}

func (f *frameList) Next() ([]byte, error) {
	if len(f.frames) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	next := f.frames[0]
	f.frames = f.frames[1:]
	return next, nil
}

func mobileFrames(shares ...*wire.MobileRewardShare) *frameList {
	f := &frameList{}
	for _, s := range shares {
		f.frames = append(f.frames, s.Marshal())
	}
	return f
}

func share(r wire.MobileReward) *wire.MobileRewardShare {
	return &wire.MobileRewardShare{StartPeriod: periodStart, EndPeriod: periodEnd, Reward: r}
}

func v2Reward(cbsd string, trust, speedtests, hexes int) *wire.RadioRewardV2 {
	r := &wire.RadioRewardV2{
		HotspotKey:            hotspotKey(0xaa),
		CbsdID:                cbsd,
		BaseCoveragePointsSum: wire.MustDecimal("160.25"),
		BaseRewardShares:      wire.MustDecimal("1.5"),
		BasePocReward:         4200,
		SeniorityTimestamp:    periodStart - 3600,
		SpeedtestMultiplier:   wire.MustDecimal("1"),
	}
	for i := 0; i < trust; i++ {
		r.LocationTrustScores = append(r.LocationTrustScores, wire.LocationTrustScore{
			MetersToAsserted: uint64(10 * (i + 1)),
			TrustScore:       wire.MustDecimal("0.25"),
		})
	}
	for i := 0; i < speedtests; i++ {
		r.Speedtests = append(r.Speedtests, wire.Speedtest{
			UploadSpeedBps:   uint64(1000 + i),
			DownloadSpeedBps: uint64(9000 + i),
			LatencyMs:        uint32(20 + i),
			Timestamp:        periodStart + uint64(i),
		})
	}
	for i := 0; i < hexes; i++ {
		r.CoveredHexes = append(r.CoveredHexes, wire.CoveredHex{
			Location:           uint64(631_711_281_856_187_903 + i),
			BaseCoveragePoints: wire.MustDecimal("16"),
			Rank:               uint32(i + 1),
			BoostedMultiplier:  1,
		})
	}
	return r
}

// newMobileStore returns a provisioned SQLite store and a fault-injecting
// wrapper around it.
func newMobileStore(t *testing.T) (*storage.SQLiteStore, *storagetest.FaultStore) {
	t.Helper()

	s := storagetest.NewSQLite(t)
	defs := append(rewards.MobileTables(), rewards.IotTables()...)
	require.NoError(t, tables.NewProvisioner(s, defs...).EnsureTablesExist(context.Background()))
	return s, &storagetest.FaultStore{Store: s}
}

// requireEmpty asserts that no mobile table holds a row.
func requireEmpty(t *testing.T, s *storage.SQLiteStore) {
	t.Helper()
	for _, def := range rewards.MobileTables() {
		require.Zero(t, storagetest.CountRows(t, s, def.Name), "table %s", def.Name)
	}
}

func insertPrefix(table string) string {
	return fmt.Sprintf("INSERT INTO %s (", table)
}
