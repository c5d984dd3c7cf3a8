package rewards_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/withObsrvr/oracle-persist/internal/rewards"
	"github.com/withObsrvr/oracle-persist/internal/storage/storagetest"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

func iotFrames(rs ...wire.IotReward) *frameList {
	f := &frameList{}
	for _, r := range rs {
		s := &wire.IotRewardShare{StartPeriod: periodStart, EndPeriod: periodEnd, Reward: r}
		f.frames = append(f.frames, s.Marshal())
	}
	return f
}

func TestIotBatch(t *testing.T) {
	ctx := context.Background()
	s, fs := newMobileStore(t)

	b, err := rewards.DecodeIot(iotFrames(
		&wire.IotGatewayReward{HotspotKey: hotspotKey(0x09), BeaconAmount: 1, WitnessAmount: 2, DcTransferAmount: 3},
		&wire.IotOperationalReward{Amount: 40},
		&wire.IotUnallocatedReward{RewardType: 2, Amount: 5},
		nil,
	), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Records())
	assert.Equal(t, 1, b.Dropped())
	assert.Equal(t, 1, b.Counts()[rewards.KindIotOperationalReward])

	res, err := b.Persist(ctx, fs, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res[rewards.IotGatewayRewardsTable.Name].Rows)
	assert.Equal(t, 2, res[rewards.IotOtherRewardsTable.Name].Rows)
	assert.Equal(t, 2, fs.Commits())

	assert.Equal(t, []int64{2}, storagetest.Int64Column(t, s, rewards.IotGatewayRewardsTable.Name, "witness_amount"))
	assert.Equal(t, []int64{40, 5}, storagetest.Int64Column(t, s, rewards.IotOtherRewardsTable.Name, "amount"))

	rows, err := s.DB().Query("SELECT reward_type FROM iot_other_rewards ORDER BY rowid")
	require.NoError(t, err)
	defer rows.Close()
	var types []string
	for rows.Next() {
		var v string
		require.NoError(t, rows.Scan(&v))
		types = append(types, v)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"operational", "data"}, types)
}

func TestDecodeIotAbortsOnMalformedRecord(t *testing.T) {
	f := iotFrames(&wire.IotOperationalReward{Amount: 1})
	f.frames = append([][]byte{{0x1a, 0x05, 0x01}}, f.frames...)

	_, err := rewards.DecodeIot(f, nil)
	require.Error(t, err)

	var de *wire.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 0, de.Record)
}
