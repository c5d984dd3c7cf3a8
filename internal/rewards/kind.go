package rewards

// Kind identifies the reward variant a record was routed as.
type Kind int

const (
	KindNone Kind = iota
	KindRadioReward
	KindRadioRewardV2
	KindGatewayReward
	KindSubscriberReward
	KindServiceProviderReward
	KindPromotionReward
	KindUnallocatedReward

	KindIotGatewayReward
	KindIotOperationalReward
	KindIotUnallocatedReward
)

var kindNames = [...]string{
	KindNone:                  "none",
	KindRadioReward:           "radio_reward",
	KindRadioRewardV2:         "radio_reward_v2",
	KindGatewayReward:         "gateway_reward",
	KindSubscriberReward:      "subscriber_reward",
	KindServiceProviderReward: "service_provider_reward",
	KindPromotionReward:       "promotion_reward",
	KindUnallocatedReward:     "unallocated_reward",
	KindIotGatewayReward:      "iot_gateway_reward",
	KindIotOperationalReward:  "iot_operational_reward",
	KindIotUnallocatedReward:  "iot_unallocated_reward",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Counts tallies routed records by kind.
type Counts map[Kind]int

// Total returns the number of records counted, dropped ones included.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
