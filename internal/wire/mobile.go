package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// MobileRewardShare is one record of a mobile_reward_share file.
type MobileRewardShare struct {
	StartPeriod uint64 // epoch seconds
	EndPeriod   uint64 // epoch seconds

	// Reward holds the active oneof member, or nil when none is set.
	Reward MobileReward
}

// MobileReward is the reward oneof of a MobileRewardShare. It is implemented
// by *RadioReward, *RadioRewardV2, *GatewayReward, *SubscriberReward,
// *ServiceProviderReward, *PromotionReward and *UnallocatedReward.
type MobileReward interface {
	marshaler
	isMobileReward()
}

func (*RadioReward) isMobileReward()           {}
func (*RadioRewardV2) isMobileReward()         {}
func (*GatewayReward) isMobileReward()         {}
func (*SubscriberReward) isMobileReward()      {}
func (*ServiceProviderReward) isMobileReward() {}
func (*PromotionReward) isMobileReward()       {}
func (*UnallocatedReward) isMobileReward()     {}

// Field numbers of mobile_reward_share.
const (
	mobileStartPeriod           protowire.Number = 1
	mobileEndPeriod             protowire.Number = 2
	mobileRadioReward           protowire.Number = 3
	mobileGatewayReward         protowire.Number = 4
	mobileSubscriberReward      protowire.Number = 5
	mobileServiceProviderReward protowire.Number = 6
	mobileUnallocatedReward     protowire.Number = 7
	mobileRadioRewardV2         protowire.Number = 8
	mobilePromotionReward       protowire.Number = 9
)

func (m *MobileRewardShare) Unmarshal(b []byte) error {
	*m = MobileRewardShare{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case mobileStartPeriod:
			m.StartPeriod, err = v.uint64()
		case mobileEndPeriod:
			m.EndPeriod, err = v.uint64()
		case mobileRadioReward:
			m.Reward, err = decodeEmbedded[RadioReward](v)
		case mobileGatewayReward:
			m.Reward, err = decodeEmbedded[GatewayReward](v)
		case mobileSubscriberReward:
			m.Reward, err = decodeEmbedded[SubscriberReward](v)
		case mobileServiceProviderReward:
			m.Reward, err = decodeEmbedded[ServiceProviderReward](v)
		case mobileUnallocatedReward:
			m.Reward, err = decodeEmbedded[UnallocatedReward](v)
		case mobileRadioRewardV2:
			m.Reward, err = decodeEmbedded[RadioRewardV2](v)
		case mobilePromotionReward:
			m.Reward, err = decodeEmbedded[PromotionReward](v)
		}
		return err
	})
}

func (m *MobileRewardShare) Marshal() []byte {
	var b []byte
	b = appendVarint(b, mobileStartPeriod, m.StartPeriod)
	b = appendVarint(b, mobileEndPeriod, m.EndPeriod)

	switch r := m.Reward.(type) {
	case *RadioReward:
		b = appendMessage(b, mobileRadioReward, r)
	case *GatewayReward:
		b = appendMessage(b, mobileGatewayReward, r)
	case *SubscriberReward:
		b = appendMessage(b, mobileSubscriberReward, r)
	case *ServiceProviderReward:
		b = appendMessage(b, mobileServiceProviderReward, r)
	case *UnallocatedReward:
		b = appendMessage(b, mobileUnallocatedReward, r)
	case *RadioRewardV2:
		b = appendMessage(b, mobileRadioRewardV2, r)
	case *PromotionReward:
		b = appendMessage(b, mobilePromotionReward, r)
	}
	return b
}

// RadioReward is the original per-radio reward.
type RadioReward struct {
	HotspotKey                   []byte
	CbsdID                       string
	PocReward                    uint64
	CoveragePoints               uint64
	LocationTrustScoreMultiplier uint32
	SpeedtestMultiplier          uint32
	BoostedHexes                 []BoostedHex
	DcTransferReward             uint64
}

func (r *RadioReward) Unmarshal(b []byte) error {
	*r = RadioReward{}
	if err := decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			r.HotspotKey, err = v.bytes()
		case 2:
			r.CbsdID, err = v.string()
		case 3:
			r.PocReward, err = v.uint64()
		case 4:
			r.CoveragePoints, err = v.uint64()
		case 7:
			r.LocationTrustScoreMultiplier, err = v.uint32()
		case 8:
			r.SpeedtestMultiplier, err = v.uint32()
		case 9:
			var h *BoostedHex
			if h, err = decodeEmbedded[BoostedHex](v); err == nil {
				r.BoostedHexes = append(r.BoostedHexes, *h)
			}
		case 10:
			r.DcTransferReward, err = v.uint64()
		}
		return err
	}); err != nil {
		return err
	}
	return checkKey(r.HotspotKey)
}

func (r *RadioReward) Marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, r.HotspotKey)
	b = appendString(b, 2, r.CbsdID)
	b = appendVarint(b, 3, r.PocReward)
	b = appendVarint(b, 4, r.CoveragePoints)
	b = appendVarint(b, 7, uint64(r.LocationTrustScoreMultiplier))
	b = appendVarint(b, 8, uint64(r.SpeedtestMultiplier))
	for i := range r.BoostedHexes {
		b = appendMessage(b, 9, &r.BoostedHexes[i])
	}
	b = appendVarint(b, 10, r.DcTransferReward)
	return b
}

// BoostedHex is a hex with a boost multiplier applied to a radio reward.
type BoostedHex struct {
	Location   uint64
	Multiplier uint32
}

func (h *BoostedHex) Unmarshal(b []byte) error {
	*h = BoostedHex{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			h.Location, err = v.uint64()
		case 2:
			h.Multiplier, err = v.uint32()
		}
		return err
	})
}

func (h *BoostedHex) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, h.Location)
	b = appendVarint(b, 2, uint64(h.Multiplier))
	return b
}

// RadioRewardV2 is the per-radio reward summary with its contributing
// trust scores, speedtests and covered hexes.
type RadioRewardV2 struct {
	HotspotKey                   []byte
	CbsdID                       string
	BaseCoveragePointsSum        *Decimal
	BoostedCoveragePointsSum     *Decimal
	BaseRewardShares             *Decimal
	BoostedRewardShares          *Decimal
	BasePocReward                uint64
	BoostedPocReward             uint64
	SeniorityTimestamp           uint64 // epoch seconds
	CoverageObject               []byte // 16-byte UUID
	LocationTrustScoreMultiplier *Decimal
	LocationTrustScores          []LocationTrustScore
	SpeedtestMultiplier          *Decimal
	Speedtests                   []Speedtest
	SpeedtestAverage             *Speedtest
	CoveredHexes                 []CoveredHex
	SpBoostedHexStatus           SpBoostedHexStatus
	OracleBoostedHexStatus       OracleBoostingStatus
}

func (r *RadioRewardV2) Unmarshal(b []byte) error {
	*r = RadioRewardV2{}
	if err := decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			r.HotspotKey, err = v.bytes()
		case 2:
			r.CbsdID, err = v.string()
		case 3:
			r.BaseCoveragePointsSum, err = decodeEmbedded[Decimal](v)
		case 4:
			r.BoostedCoveragePointsSum, err = decodeEmbedded[Decimal](v)
		case 5:
			r.BaseRewardShares, err = decodeEmbedded[Decimal](v)
		case 6:
			r.BoostedRewardShares, err = decodeEmbedded[Decimal](v)
		case 7:
			r.BasePocReward, err = v.uint64()
		case 8:
			r.BoostedPocReward, err = v.uint64()
		case 9:
			r.SeniorityTimestamp, err = v.uint64()
		case 10:
			if r.CoverageObject, err = v.bytes(); err == nil {
				err = checkCoverageObject(r.CoverageObject)
			}
		case 11:
			r.LocationTrustScoreMultiplier, err = decodeEmbedded[Decimal](v)
		case 12:
			var s *LocationTrustScore
			if s, err = decodeEmbedded[LocationTrustScore](v); err == nil {
				r.LocationTrustScores = append(r.LocationTrustScores, *s)
			}
		case 13:
			r.SpeedtestMultiplier, err = decodeEmbedded[Decimal](v)
		case 14:
			var s *Speedtest
			if s, err = decodeEmbedded[Speedtest](v); err == nil {
				r.Speedtests = append(r.Speedtests, *s)
			}
		case 15:
			r.SpeedtestAverage, err = decodeEmbedded[Speedtest](v)
		case 16:
			var h *CoveredHex
			if h, err = decodeEmbedded[CoveredHex](v); err == nil {
				r.CoveredHexes = append(r.CoveredHexes, *h)
			}
		case 17:
			var e int32
			e, err = v.enum()
			r.SpBoostedHexStatus = SpBoostedHexStatus(e)
		case 18:
			var e int32
			e, err = v.enum()
			r.OracleBoostedHexStatus = OracleBoostingStatus(e)
		}
		return err
	}); err != nil {
		return err
	}
	return checkKey(r.HotspotKey)
}

func (r *RadioRewardV2) Marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, r.HotspotKey)
	b = appendString(b, 2, r.CbsdID)
	b = appendDecimal(b, 3, r.BaseCoveragePointsSum)
	b = appendDecimal(b, 4, r.BoostedCoveragePointsSum)
	b = appendDecimal(b, 5, r.BaseRewardShares)
	b = appendDecimal(b, 6, r.BoostedRewardShares)
	b = appendVarint(b, 7, r.BasePocReward)
	b = appendVarint(b, 8, r.BoostedPocReward)
	b = appendVarint(b, 9, r.SeniorityTimestamp)
	b = appendBytes(b, 10, r.CoverageObject)
	b = appendDecimal(b, 11, r.LocationTrustScoreMultiplier)
	for i := range r.LocationTrustScores {
		b = appendMessage(b, 12, &r.LocationTrustScores[i])
	}
	b = appendDecimal(b, 13, r.SpeedtestMultiplier)
	for i := range r.Speedtests {
		b = appendMessage(b, 14, &r.Speedtests[i])
	}
	if r.SpeedtestAverage != nil {
		b = appendMessage(b, 15, r.SpeedtestAverage)
	}
	for i := range r.CoveredHexes {
		b = appendMessage(b, 16, &r.CoveredHexes[i])
	}
	b = appendVarint(b, 17, uint64(r.SpBoostedHexStatus))
	b = appendVarint(b, 18, uint64(r.OracleBoostedHexStatus))
	return b
}

func appendDecimal(b []byte, num protowire.Number, d *Decimal) []byte {
	if d == nil {
		return b
	}
	return appendMessage(b, num, d)
}

// LocationTrustScore is one asserted-location trust sample.
type LocationTrustScore struct {
	MetersToAsserted uint64
	TrustScore       *Decimal
}

func (s *LocationTrustScore) Unmarshal(b []byte) error {
	*s = LocationTrustScore{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			s.MetersToAsserted, err = v.uint64()
		case 2:
			s.TrustScore, err = decodeEmbedded[Decimal](v)
		}
		return err
	})
}

func (s *LocationTrustScore) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, s.MetersToAsserted)
	b = appendDecimal(b, 2, s.TrustScore)
	return b
}

// Speedtest is one speed test sample, also used for the average.
type Speedtest struct {
	UploadSpeedBps   uint64
	DownloadSpeedBps uint64
	LatencyMs        uint32
	Timestamp        uint64 // epoch seconds
}

func (s *Speedtest) Unmarshal(b []byte) error {
	*s = Speedtest{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			s.UploadSpeedBps, err = v.uint64()
		case 2:
			s.DownloadSpeedBps, err = v.uint64()
		case 3:
			s.LatencyMs, err = v.uint32()
		case 4:
			s.Timestamp, err = v.uint64()
		}
		return err
	})
}

func (s *Speedtest) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, s.UploadSpeedBps)
	b = appendVarint(b, 2, s.DownloadSpeedBps)
	b = appendVarint(b, 3, uint64(s.LatencyMs))
	b = appendVarint(b, 4, s.Timestamp)
	return b
}

// CoveredHex is one hex covered by a radio with its scoring inputs.
type CoveredHex struct {
	Location              uint64
	BaseCoveragePoints    *Decimal
	BoostedCoveragePoints *Decimal
	Urbanized             Assignment
	Footfall              Assignment
	Landtype              Assignment
	AssignmentMultiplier  *Decimal
	Rank                  uint32
	RankMultiplier        *Decimal
	BoostedMultiplier     uint32
}

func (h *CoveredHex) Unmarshal(b []byte) error {
	*h = CoveredHex{}
	return decodeFields(b, func(v value) error {
		var (
			err error
			e   int32
		)
		switch v.num {
		case 1:
			h.Location, err = v.uint64()
		case 2:
			h.BaseCoveragePoints, err = decodeEmbedded[Decimal](v)
		case 3:
			h.BoostedCoveragePoints, err = decodeEmbedded[Decimal](v)
		case 4:
			e, err = v.enum()
			h.Urbanized = Assignment(e)
		case 5:
			e, err = v.enum()
			h.Footfall = Assignment(e)
		case 6:
			e, err = v.enum()
			h.Landtype = Assignment(e)
		case 7:
			h.AssignmentMultiplier, err = decodeEmbedded[Decimal](v)
		case 8:
			h.Rank, err = v.uint32()
		case 9:
			h.RankMultiplier, err = decodeEmbedded[Decimal](v)
		case 10:
			h.BoostedMultiplier, err = v.uint32()
		}
		return err
	})
}

func (h *CoveredHex) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, h.Location)
	b = appendDecimal(b, 2, h.BaseCoveragePoints)
	b = appendDecimal(b, 3, h.BoostedCoveragePoints)
	b = appendVarint(b, 4, uint64(h.Urbanized))
	b = appendVarint(b, 5, uint64(h.Footfall))
	b = appendVarint(b, 6, uint64(h.Landtype))
	b = appendDecimal(b, 7, h.AssignmentMultiplier)
	b = appendVarint(b, 8, uint64(h.Rank))
	b = appendDecimal(b, 9, h.RankMultiplier)
	b = appendVarint(b, 10, uint64(h.BoostedMultiplier))
	return b
}

// GatewayReward is the data transfer reward paid to a gateway.
type GatewayReward struct {
	HotspotKey       []byte
	DcTransferReward uint64
	RewardableBytes  uint64
	Price            uint64
}

func (r *GatewayReward) Unmarshal(b []byte) error {
	*r = GatewayReward{}
	if err := decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			r.HotspotKey, err = v.bytes()
		case 2:
			r.DcTransferReward, err = v.uint64()
		case 3:
			r.RewardableBytes, err = v.uint64()
		case 4:
			r.Price, err = v.uint64()
		}
		return err
	}); err != nil {
		return err
	}
	return checkKey(r.HotspotKey)
}

func (r *GatewayReward) Marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, r.HotspotKey)
	b = appendVarint(b, 2, r.DcTransferReward)
	b = appendVarint(b, 3, r.RewardableBytes)
	b = appendVarint(b, 4, r.Price)
	return b
}

// SubscriberReward is paid to a subscriber for discovery and mapping.
type SubscriberReward struct {
	SubscriberID              []byte
	DiscoveryLocationAmount   uint64
	VerificationMappingAmount uint64
}

func (r *SubscriberReward) Unmarshal(b []byte) error {
	*r = SubscriberReward{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			r.SubscriberID, err = v.bytes()
		case 2:
			r.DiscoveryLocationAmount, err = v.uint64()
		case 3:
			r.VerificationMappingAmount, err = v.uint64()
		}
		return err
	})
}

func (r *SubscriberReward) Marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, r.SubscriberID)
	b = appendVarint(b, 2, r.DiscoveryLocationAmount)
	b = appendVarint(b, 3, r.VerificationMappingAmount)
	return b
}

// ServiceProviderReward is paid to a service provider.
type ServiceProviderReward struct {
	ServiceProviderID ServiceProvider
	Amount            uint64
}

func (r *ServiceProviderReward) Unmarshal(b []byte) error {
	*r = ServiceProviderReward{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			var e int32
			e, err = v.enum()
			r.ServiceProviderID = ServiceProvider(e)
		case 2:
			r.Amount, err = v.uint64()
		}
		return err
	})
}

func (r *ServiceProviderReward) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(r.ServiceProviderID))
	b = appendVarint(b, 2, r.Amount)
	return b
}

// PromotionReward is paid to a promotion entity, split between the service
// provider and the matching pool.
type PromotionReward struct {
	Entity                string
	ServiceProviderAmount uint64
	MatchedAmount         uint64
}

func (r *PromotionReward) Unmarshal(b []byte) error {
	*r = PromotionReward{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			r.Entity, err = v.string()
		case 2:
			r.ServiceProviderAmount, err = v.uint64()
		case 3:
			r.MatchedAmount, err = v.uint64()
		}
		return err
	})
}

func (r *PromotionReward) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.Entity)
	b = appendVarint(b, 2, r.ServiceProviderAmount)
	b = appendVarint(b, 3, r.MatchedAmount)
	return b
}

// UnallocatedReward is the remainder of a reward pool nobody earned.
type UnallocatedReward struct {
	RewardType UnallocatedRewardType
	Amount     uint64
}

func (r *UnallocatedReward) Unmarshal(b []byte) error {
	*r = UnallocatedReward{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			var e int32
			e, err = v.enum()
			r.RewardType = UnallocatedRewardType(e)
		case 2:
			r.Amount, err = v.uint64()
		}
		return err
	})
}

func (r *UnallocatedReward) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(r.RewardType))
	b = appendVarint(b, 2, r.Amount)
	return b
}
