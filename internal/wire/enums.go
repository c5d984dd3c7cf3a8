package wire

// Enum values render by their protobuf name. A number outside the known
// range renders as the zero value's name, matching what a generated accessor
// returns for an unrecognized value.

func enumName(names []string, v int32) string {
	if v < 0 || int(v) >= len(names) {
		return names[0]
	}
	return names[v]
}

// SpBoostedHexStatus is the service-provider boosting eligibility of a radio.
type SpBoostedHexStatus int32

var spBoostedHexStatusNames = []string{
	"eligible",
	"location_score_below_threshold",
	"radio_threshold_not_met",
}

func (s SpBoostedHexStatus) String() string { return enumName(spBoostedHexStatusNames, int32(s)) }

// OracleBoostingStatus is the oracle boosting eligibility of a radio.
type OracleBoostingStatus int32

var oracleBoostingStatusNames = []string{
	"eligible",
	"banned",
	"qualified",
}

func (s OracleBoostingStatus) String() string { return enumName(oracleBoostingStatusNames, int32(s)) }

// Assignment is an oracle boosting hex assignment (urbanized, footfall,
// landtype).
type Assignment int32

var assignmentNames = []string{"a", "b", "c"}

func (a Assignment) String() string { return enumName(assignmentNames, int32(a)) }

// ServiceProvider identifies a mobile service provider.
type ServiceProvider int32

var serviceProviderNames = []string{"helium_mobile"}

func (s ServiceProvider) String() string { return enumName(serviceProviderNames, int32(s)) }

// UnallocatedRewardType classifies mobile rewards left unallocated.
type UnallocatedRewardType int32

var unallocatedRewardTypeNames = []string{
	"unallocated_reward_type_poc",
	"unallocated_reward_type_discovery_location",
	"unallocated_reward_type_mapper",
	"unallocated_reward_type_service_provider",
	"unallocated_reward_type_oracle",
	"unallocated_reward_type_data",
}

func (u UnallocatedRewardType) String() string {
	return enumName(unallocatedRewardTypeNames, int32(u))
}

// IotUnallocatedRewardType classifies IoT rewards left unallocated.
type IotUnallocatedRewardType int32

var iotUnallocatedRewardTypeNames = []string{"poc", "operation", "data"}

func (u IotUnallocatedRewardType) String() string {
	return enumName(iotUnallocatedRewardTypeNames, int32(u))
}
