package rewards

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/withObsrvr/oracle-persist/internal/logging"
	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

// MobileBatch holds every accumulator for one mobile_reward_share file.
type MobileBatch struct {
	Radio           RadioRewardColumns
	RadioV2         RadioRewardV2Batch
	Gateway         GatewayRewardColumns
	Subscriber      SubscriberRewardColumns
	ServiceProvider LabeledAmountColumns
	Promotion       PromotionRewardColumns
	Unallocated     LabeledAmountColumns

	counts Counts
	log    *slog.Logger
}

// NewMobileBatch returns an empty batch. A nil logger uses the default.
func NewMobileBatch(log *slog.Logger) *MobileBatch {
	if log == nil {
		log = logging.Component("rewards")
	}
	return &MobileBatch{
		RadioV2:         NewRadioRewardV2Batch(log),
		ServiceProvider: NewLabeledAmountColumns(ServiceProviderRewardsTable),
		Unallocated:     NewLabeledAmountColumns(UnallocatedRewardsTable),
		counts:          Counts{},
		log:             log,
	}
}

// Route appends s to the accumulator of its variant and reports which one.
// A record without a variant is dropped and counted as KindNone.
func (b *MobileBatch) Route(s MobileShare) Kind {
	start, end := s.StartPeriod, s.EndPeriod

	var k Kind
	switch r := s.Reward.(type) {
	case *wire.RadioReward:
		b.Radio.Add(start, end, r)
		k = KindRadioReward
	case *wire.RadioRewardV2:
		b.RadioV2.Add(start, end, r)
		k = KindRadioRewardV2
	case *wire.GatewayReward:
		b.Gateway.Add(start, end, r)
		k = KindGatewayReward
	case *wire.SubscriberReward:
		b.Subscriber.Add(start, end, r)
		k = KindSubscriberReward
	case *wire.ServiceProviderReward:
		b.ServiceProvider.Add(start, end, r.ServiceProviderID.String(), r.Amount)
		k = KindServiceProviderReward
	case *wire.PromotionReward:
		b.Promotion.Add(start, end, r)
		k = KindPromotionReward
	case *wire.UnallocatedReward:
		b.Unallocated.Add(start, end, r.RewardType.String(), r.Amount)
		k = KindUnallocatedReward
	default:
		k = KindNone
		b.log.Debug("dropping reward share without a reward",
			"start_period", start, "end_period", end)
	}

	b.counts[k]++
	return k
}

// Records returns how many records were routed, dropped ones included.
func (b *MobileBatch) Records() int { return b.counts.Total() }

// Dropped returns how many records had no variant.
func (b *MobileBatch) Dropped() int { return b.counts[KindNone] }

// Counts returns the routed record count of every kind seen.
func (b *MobileBatch) Counts() Counts { return b.counts }

// Persist drains the batch. The radio reward v2 family goes first in its own
// transaction; every other table is then written in a transaction of its
// own. On error the returned results cover the writes that committed.
func (b *MobileBatch) Persist(ctx context.Context, s storage.Store, maxParams int) (storage.Results, error) {
	results := storage.Results{}

	v2, err := b.RadioV2.Write(ctx, s, maxParams)
	if err != nil {
		return results, err
	}
	results.Merge(v2)

	err = writeTables(ctx, s, maxParams, results,
		&b.Radio,
		&b.Gateway,
		&b.Subscriber,
		&b.ServiceProvider,
		&b.Promotion,
		&b.Unallocated,
	)
	return results, err
}

// DecodeMobile reads every share from frames into a new batch. The first
// malformed record aborts decoding with a *wire.DecodeError and no batch.
func DecodeMobile(frames Frames, log *slog.Logger) (*MobileBatch, error) {
	dec := NewMobileDecoder(frames)
	batch := NewMobileBatch(log)
	for {
		share, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return batch, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode mobile reward shares: %w", err)
		}
		batch.Route(share)
	}
}
