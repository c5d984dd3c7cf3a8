package wire

import "google.golang.org/protobuf/encoding/protowire"

// IotRewardShare is one record of an iot_reward_share file.
type IotRewardShare struct {
	StartPeriod uint64
	EndPeriod   uint64
	Reward      IotReward
}

// IotReward is the reward oneof of an IotRewardShare: *IotGatewayReward,
// *IotOperationalReward or *IotUnallocatedReward.
type IotReward interface {
	marshaler
	isIotReward()
}

func (*IotGatewayReward) isIotReward()     {}
func (*IotOperationalReward) isIotReward() {}
func (*IotUnallocatedReward) isIotReward() {}

const (
	iotStartPeriod       protowire.Number = 1
	iotEndPeriod         protowire.Number = 2
	iotGatewayReward     protowire.Number = 3
	iotOperationalReward protowire.Number = 4
	iotUnallocatedReward protowire.Number = 5
)

func (m *IotRewardShare) Unmarshal(b []byte) error {
	*m = IotRewardShare{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case iotStartPeriod:
			m.StartPeriod, err = v.uint64()
		case iotEndPeriod:
			m.EndPeriod, err = v.uint64()
		case iotGatewayReward:
			m.Reward, err = decodeEmbedded[IotGatewayReward](v)
		case iotOperationalReward:
			m.Reward, err = decodeEmbedded[IotOperationalReward](v)
		case iotUnallocatedReward:
			m.Reward, err = decodeEmbedded[IotUnallocatedReward](v)
		}
		return err
	})
}

func (m *IotRewardShare) Marshal() []byte {
	var b []byte
	b = appendVarint(b, iotStartPeriod, m.StartPeriod)
	b = appendVarint(b, iotEndPeriod, m.EndPeriod)
	switch r := m.Reward.(type) {
	case *IotGatewayReward:
		b = appendMessage(b, iotGatewayReward, r)
	case *IotOperationalReward:
		b = appendMessage(b, iotOperationalReward, r)
	case *IotUnallocatedReward:
		b = appendMessage(b, iotUnallocatedReward, r)
	}
	return b
}

// IotGatewayReward is paid to a LoRa gateway for beacons, witnesses and
// data transfer.
type IotGatewayReward struct {
	HotspotKey       []byte
	BeaconAmount     uint64
	WitnessAmount    uint64
	DcTransferAmount uint64
}

func (r *IotGatewayReward) Unmarshal(b []byte) error {
	*r = IotGatewayReward{}
	if err := decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			r.HotspotKey, err = v.bytes()
		case 2:
			r.BeaconAmount, err = v.uint64()
		case 3:
			r.WitnessAmount, err = v.uint64()
		case 4:
			r.DcTransferAmount, err = v.uint64()
		}
		return err
	}); err != nil {
		return err
	}
	return checkKey(r.HotspotKey)
}

func (r *IotGatewayReward) Marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, r.HotspotKey)
	b = appendVarint(b, 2, r.BeaconAmount)
	b = appendVarint(b, 3, r.WitnessAmount)
	b = appendVarint(b, 4, r.DcTransferAmount)
	return b
}

type IotOperationalReward struct {
	Amount uint64
}

func (r *IotOperationalReward) Unmarshal(b []byte) error {
	*r = IotOperationalReward{}
	return decodeFields(b, func(v value) error {
		if v.num != 1 {
			return nil
		}
		var err error
		r.Amount, err = v.uint64()
		return err
	})
}

func (r *IotOperationalReward) Marshal() []byte {
	return appendVarint(nil, 1, r.Amount)
}

type IotUnallocatedReward struct {
	RewardType IotUnallocatedRewardType
	Amount     uint64
}

func (r *IotUnallocatedReward) Unmarshal(b []byte) error {
	*r = IotUnallocatedReward{}
	return decodeFields(b, func(v value) error {
		var err error
		switch v.num {
		case 1:
			var e int32
			e, err = v.enum()
			r.RewardType = IotUnallocatedRewardType(e)
		case 2:
			r.Amount, err = v.uint64()
		}
		return err
	})
}

func (r *IotUnallocatedReward) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(r.RewardType))
	b = appendVarint(b, 2, r.Amount)
	return b
}
