package importer_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"

	"github.com/withObsrvr/oracle-persist/internal/checkpoint"
	"github.com/withObsrvr/oracle-persist/internal/filetype"
	"github.com/withObsrvr/oracle-persist/internal/importer"
	"github.com/withObsrvr/oracle-persist/internal/metrics"
	"github.com/withObsrvr/oracle-persist/internal/retry"
	"github.com/withObsrvr/oracle-persist/internal/rewards"
	"github.com/withObsrvr/oracle-persist/internal/source"
	"github.com/withObsrvr/oracle-persist/internal/storage/storagetest"
	"github.com/withObsrvr/oracle-persist/internal/tables"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

var t0 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func hours(n int) time.Time { return t0.Add(time.Duration(n) * time.Hour) }

// hotspotKey returns a mainnet ed25519 public key filled with b.
func hotspotKey(b byte) []byte {
	key := bytes.Repeat([]byte{b}, 33)
	key[0] = 0x01
	return key
}

func gateway(b byte) *wire.MobileRewardShare {
	return &wire.MobileRewardShare{
		StartPeriod: uint64(t0.Unix()),
		EndPeriod:   uint64(t0.Add(24 * time.Hour).Unix()),
		Reward:      &wire.GatewayReward{HotspotKey: hotspotKey(b), DcTransferReward: uint64(b)},
	}
}

func radioV2(speedtests int) *wire.MobileRewardShare {
	r := &wire.RadioRewardV2{
		HotspotKey: hotspotKey(0x42),
		CbsdID:     "cbsd-1",
	}
	for i := 0; i < speedtests; i++ {
		r.Speedtests = append(r.Speedtests, wire.Speedtest{UploadSpeedBps: uint64(i), Timestamp: uint64(t0.Unix())})
	}
	s := gateway(0)
	s.Reward = r
	return s
}

type fixture struct {
	bucket *blob.Bucket
	src    *source.BucketSource
	reg    *prometheus.Registry
	m      *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	src := source.NewBucketSource(bucket, "rewards")
	t.Cleanup(func() { src.Close() })

	reg := prometheus.NewRegistry()
	return &fixture{bucket: bucket, src: src, reg: reg, m: metrics.New("test", reg)}
}

// put stores a gzip file of framed records named for at.
func (f *fixture) put(t *testing.T, prefix string, at time.Time, records ...[]byte) string {
	t.Helper()
	var raw []byte
	for _, r := range records {
		raw = source.AppendFrame(raw, r)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	key := fmt.Sprintf("rewards/%s.%d.gz", prefix, at.UnixMilli())
	require.NoError(t, f.bucket.WriteAll(context.Background(), key, buf.Bytes(), nil))
	return key
}

func marshal(shares ...*wire.MobileRewardShare) [][]byte {
	out := make([][]byte, len(shares))
	for i, s := range shares {
		out[i] = s.Marshal()
	}
	return out
}

func fastRetry(attempts int) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestRunImportsWindowOldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := storagetest.NewSQLite(t)

	second := f.put(t, filetype.MobileRewardShare, hours(1), marshal(gateway(2))...)
	first := f.put(t, filetype.MobileRewardShare, hours(0), marshal(radioV2(2), gateway(1))...)
	f.put(t, filetype.MobileRewardShare, hours(2), marshal(gateway(3))...)
	f.put(t, filetype.IotRewardShare, hours(1), (&wire.IotRewardShare{Reward: &wire.IotOperationalReward{Amount: 1}}).Marshal())

	im, err := importer.New(importer.Config{
		FileType: filetype.MobileRewardShare,
		After:    hours(0),
		Before:   hours(2),
	}, f.src, s, f.m)
	require.NoError(t, err)

	summary, err := im.Run(ctx)
	require.NoError(t, err)

	require.Len(t, summary.Files, 2)
	assert.Equal(t, first, summary.Files[0].File.Key)
	assert.Equal(t, second, summary.Files[1].File.Key)
	assert.Equal(t, 3, summary.Records)
	assert.Zero(t, summary.Dropped)
	assert.Equal(t, 2, summary.Rows[rewards.GatewayRewardsTable.Name].Rows)
	assert.Equal(t, 2, summary.Rows[rewards.SpeedtestsTable.Name].Rows)

	assert.Equal(t, 2, storagetest.CountRows(t, s, rewards.GatewayRewardsTable.Name))
	assert.Equal(t, 1, storagetest.CountRows(t, s, rewards.RadioRewardsV2Table.Name))
	assert.Equal(t, 2, storagetest.CountRows(t, s, rewards.SpeedtestsTable.Name))

	assert.Equal(t, 2.0, testutil.ToFloat64(f.m.FilesProcessed.WithLabelValues(filetype.MobileRewardShare, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.RecordsRouted.WithLabelValues(filetype.MobileRewardShare, "radio_reward_v2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.m.RowsWritten.WithLabelValues(rewards.GatewayRewardsTable.Name)))
	assert.Equal(t, float64(hours(1).Unix()),
		testutil.ToFloat64(f.m.LastFileTimestamp.WithLabelValues(filetype.MobileRewardShare)))
}

func TestRunIotFiles(t *testing.T) {
	f := newFixture(t)
	s := storagetest.NewSQLite(t)

	f.put(t, filetype.IotRewardShare, hours(0),
		(&wire.IotRewardShare{Reward: &wire.IotGatewayReward{HotspotKey: hotspotKey(0x01), BeaconAmount: 4}}).Marshal(),
		(&wire.IotRewardShare{Reward: &wire.IotUnallocatedReward{Amount: 9}}).Marshal(),
	)

	im, err := importer.New(importer.Config{FileType: filetype.IotRewardShare}, f.src, s, nil)
	require.NoError(t, err)

	summary, err := im.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Records)
	assert.Equal(t, 1, storagetest.CountRows(t, s, rewards.IotGatewayRewardsTable.Name))
	assert.Equal(t, 1, storagetest.CountRows(t, s, rewards.IotOtherRewardsTable.Name))
}

func TestRunStopsAtFirstFailedFile(t *testing.T) {
	f := newFixture(t)
	s := storagetest.NewSQLite(t)

	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)
	bad := f.put(t, filetype.MobileRewardShare, hours(1), append(marshal(gateway(2)), []byte{0x0a, 0xff})...)
	f.put(t, filetype.MobileRewardShare, hours(2), marshal(gateway(3))...)

	im, err := importer.New(importer.Config{
		FileType: filetype.MobileRewardShare,
		Retry:    fastRetry(3),
	}, f.src, s, f.m)
	require.NoError(t, err)

	summary, err := im.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	var de *wire.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Record)

	// The first file stays committed; the malformed file writes nothing and
	// is not retried.
	assert.Len(t, summary.Files, 1)
	assert.Equal(t, 1, storagetest.CountRows(t, s, rewards.GatewayRewardsTable.Name))
	assert.Zero(t, testutil.ToFloat64(f.m.RetryAttempts.WithLabelValues("import_file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.FilesProcessed.WithLabelValues(filetype.MobileRewardShare, "failed")))
}

func TestRunRetriesTransientWriteFailure(t *testing.T) {
	f := newFixture(t)
	s := storagetest.NewSQLite(t)
	fs := &storagetest.FaultStore{
		Store: s,
		Fail:  storagetest.FailNth("INSERT INTO "+rewards.GatewayRewardsTable.Name+" (", 1),
	}

	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1), gateway(2))...)

	im, err := importer.New(importer.Config{
		FileType: filetype.MobileRewardShare,
		Retry:    fastRetry(2),
	}, f.src, fs, f.m)
	require.NoError(t, err)

	summary, err := im.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Records)
	assert.Equal(t, 2, storagetest.CountRows(t, s, rewards.GatewayRewardsTable.Name))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.RetryAttempts.WithLabelValues("import_file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.StorageErrors.WithLabelValues("sqlite")))
}

func TestRunWithoutRetryFailsOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	s := storagetest.NewSQLite(t)
	fs := &storagetest.FaultStore{
		Store: s,
		Fail:  storagetest.FailNth("INSERT INTO "+rewards.GatewayRewardsTable.Name+" (", 1),
	}
	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)

	im, err := importer.New(importer.Config{FileType: filetype.MobileRewardShare}, f.src, fs, nil)
	require.NoError(t, err)

	_, err = im.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "injected failure"))
	assert.Zero(t, storagetest.CountRows(t, s, rewards.GatewayRewardsTable.Name))
}

func TestRunProvisioningFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	fs := &storagetest.FaultStore{
		Store: storagetest.NewSQLite(t),
		Fail: func(q string) error {
			if strings.HasPrefix(q, "CREATE TABLE") {
				return errors.New("read-only database")
			}
			return nil
		},
	}
	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)

	im, err := importer.New(importer.Config{FileType: filetype.MobileRewardShare}, f.src, fs, nil)
	require.NoError(t, err)

	summary, err := im.Run(context.Background())
	assert.ErrorIs(t, err, tables.ErrProvisioning)
	assert.Empty(t, summary.Files)
	assert.Empty(t, fs.Statements("INSERT"))
}

func TestRunProvisionsOnce(t *testing.T) {
	f := newFixture(t)
	fs := &storagetest.FaultStore{Store: storagetest.NewSQLite(t)}
	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)

	im, err := importer.New(importer.Config{FileType: filetype.MobileRewardShare}, f.src, fs, nil)
	require.NoError(t, err)

	_, err = im.Run(context.Background())
	require.NoError(t, err)
	created := len(fs.Statements("CREATE TABLE"))
	require.NotZero(t, created)

	f.put(t, filetype.MobileRewardShare, hours(1), marshal(gateway(2))...)
	summary, err := im.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Files, 1)
	assert.Len(t, fs.Statements("CREATE TABLE"), created)
}

func TestRunEmptyWindow(t *testing.T) {
	f := newFixture(t)
	s := storagetest.NewSQLite(t)
	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)

	im, err := importer.New(importer.Config{
		FileType: filetype.MobileRewardShare,
		After:    hours(1),
	}, f.src, s, nil)
	require.NoError(t, err)

	summary, err := im.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Files)

	// Tables are provisioned even when no file matches.
	assert.Zero(t, storagetest.CountRows(t, s, rewards.GatewayRewardsTable.Name))
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	s := storagetest.NewSQLite(t)
	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)

	im, err := importer.New(importer.Config{FileType: filetype.MobileRewardShare}, f.src, s, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = im.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsUnknownFileType(t *testing.T) {
	_, err := importer.New(importer.Config{FileType: "price_report"}, nil, nil, nil)
	assert.ErrorIs(t, err, filetype.ErrUnknownFileType)
}

func TestRunAgainStartsAfterLastFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := storagetest.NewSQLite(t)
	f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)

	im, err := importer.New(importer.Config{FileType: filetype.MobileRewardShare}, f.src, s, nil)
	require.NoError(t, err)

	_, err = im.Run(ctx)
	require.NoError(t, err)

	latest := f.put(t, filetype.MobileRewardShare, hours(1), marshal(gateway(2))...)
	summary, err := im.Run(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, latest, summary.Files[0].File.Key)
	assert.Equal(t, 2, storagetest.CountRows(t, s, rewards.GatewayRewardsTable.Name))
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := storagetest.NewSQLite(t)
	cp, err := checkpoint.NewManager(checkpoint.Config{Enabled: true, Dir: t.TempDir()})
	require.NoError(t, err)

	first := f.put(t, filetype.MobileRewardShare, hours(0), marshal(gateway(1))...)
	cfg := importer.Config{FileType: filetype.MobileRewardShare, Checkpoint: cp}

	im, err := importer.New(cfg, f.src, s, nil)
	require.NoError(t, err)
	_, err = im.Run(ctx)
	require.NoError(t, err)

	saved, err := cp.Load(ctx, filetype.MobileRewardShare)
	require.NoError(t, err)
	assert.Equal(t, first, saved.LastFileKey)
	assert.True(t, saved.LastFileTime.Equal(hours(0)))

	// A fresh importer skips the checkpointed file.
	f.put(t, filetype.MobileRewardShare, hours(1), marshal(gateway(2))...)
	im, err = importer.New(cfg, f.src, s, nil)
	require.NoError(t, err)
	summary, err := im.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, summary.Files, 1)
	assert.Equal(t, 2, storagetest.CountRows(t, s, rewards.GatewayRewardsTable.Name))
}
