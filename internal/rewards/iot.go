package rewards

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/withObsrvr/oracle-persist/internal/logging"
	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

// operationalRewardType labels operational rewards in iot_other_rewards.
const operationalRewardType = "operational"

// IotShare is one decoded IoT reward share.
type IotShare struct {
	StartPeriod time.Time
	EndPeriod   time.Time
	Reward      wire.IotReward
}

// IotBatch holds every accumulator for one iot_reward_share file.
type IotBatch struct {
	Gateway IotGatewayRewardColumns
	Other   LabeledAmountColumns

	counts Counts
	log    *slog.Logger
}

func NewIotBatch(log *slog.Logger) *IotBatch {
	if log == nil {
		log = logging.Component("rewards")
	}
	return &IotBatch{
		Other:  NewLabeledAmountColumns(IotOtherRewardsTable),
		counts: Counts{},
		log:    log,
	}
}

// Route appends s to the accumulator of its variant.
func (b *IotBatch) Route(s IotShare) Kind {
	start, end := s.StartPeriod, s.EndPeriod

	var k Kind
	switch r := s.Reward.(type) {
	case *wire.IotGatewayReward:
		b.Gateway.Add(start, end, r)
		k = KindIotGatewayReward
	case *wire.IotOperationalReward:
		b.Other.Add(start, end, operationalRewardType, r.Amount)
		k = KindIotOperationalReward
	case *wire.IotUnallocatedReward:
		b.Other.Add(start, end, r.RewardType.String(), r.Amount)
		k = KindIotUnallocatedReward
	default:
		k = KindNone
		b.log.Debug("dropping iot reward share without a reward",
			"start_period", start, "end_period", end)
	}

	b.counts[k]++
	return k
}

func (b *IotBatch) Records() int   { return b.counts.Total() }
func (b *IotBatch) Dropped() int   { return b.counts[KindNone] }
func (b *IotBatch) Counts() Counts { return b.counts }

// Persist writes each IoT table in its own transaction.
func (b *IotBatch) Persist(ctx context.Context, s storage.Store, maxParams int) (storage.Results, error) {
	results := storage.Results{}
	err := writeTables(ctx, s, maxParams, results, &b.Gateway, &b.Other)
	return results, err
}

// DecodeIot reads every share from frames into a new batch.
func DecodeIot(frames Frames, log *slog.Logger) (*IotBatch, error) {
	batch := NewIotBatch(log)
	for i := 0; ; i++ {
		raw, err := nextFrame(frames, i)
		if errors.Is(err, io.EOF) {
			return batch, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode iot reward shares: %w", err)
		}

		var m wire.IotRewardShare
		if err := m.Unmarshal(raw); err != nil {
			return nil, fmt.Errorf("decode iot reward shares: %w", &wire.DecodeError{Record: i, Err: err})
		}
		batch.Route(IotShare{
			StartPeriod: toTime(m.StartPeriod),
			EndPeriod:   toTime(m.EndPeriod),
			Reward:      m.Reward,
		})
	}
}
