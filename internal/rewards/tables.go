package rewards

import (
	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/tables"
)

// Destination tables of the mobile reward share family.
var (
	RadioRewardsTable = tables.Table{
		Name: "mobile_radio_rewards",
		Columns: []tables.Column{
			tables.Col("hotspot_key", storage.TypeText),
			tables.NullCol("cbsd_id", storage.TypeText),
			tables.Col("coverage_points", storage.TypeBigInt),
			tables.Col("amount", storage.TypeBigInt),
			tables.Col("start_period", storage.TypeTimestamp),
			tables.NullCol("end_period", storage.TypeTimestamp),
			tables.NullCol("transfer_amount", storage.TypeBigInt),
			tables.Col("boosted_hexes", storage.TypeJSON),
			tables.Col("location_trust_score_multiplier", storage.TypeInt),
			tables.Col("speedtest_multiplier", storage.TypeInt),
		},
	}

	RadioRewardsV2Table = tables.Table{
		Name:   "mobile_radio_rewards_v2",
		Serial: true,
		Columns: []tables.Column{
			tables.Col("start_period", storage.TypeTimestamp),
			tables.NullCol("end_period", storage.TypeTimestamp),
			tables.Col("hotspot_key", storage.TypeText),
			tables.NullCol("cbsd_id", storage.TypeText),
			tables.Col("base_coverage_points_sum", storage.TypeNumeric),
			tables.Col("boosted_coverage_points_sum", storage.TypeNumeric),
			tables.Col("base_reward_shares", storage.TypeNumeric),
			tables.Col("boosted_reward_shares", storage.TypeNumeric),
			tables.Col("base_poc_reward", storage.TypeBigInt),
			tables.Col("boosted_poc_reward", storage.TypeBigInt),
			tables.Col("seniority_ts", storage.TypeTimestamp),
			tables.Col("coverage_object", storage.TypeText),
			tables.Col("location_trust_score_multiplier", storage.TypeNumeric),
			tables.Col("speedtest_multiplier", storage.TypeNumeric),
			tables.Col("sp_boosted_hex_status", storage.TypeText),
			tables.Col("oracle_boosted_hex_status", storage.TypeText),
		},
	}

	LocationTrustScoresTable = tables.Table{
		Name: "location_trust_scores",
		Columns: []tables.Column{
			tables.Col("id", storage.TypeBigInt),
			tables.Col("meters_to_asserted", storage.TypeBigInt),
			tables.Col("trust_score", storage.TypeNumeric),
		},
	}

	SpeedtestsTable       = speedtestTable("speedtests")
	SpeedtestAverageTable = speedtestTable("speedtest_average")

	CoveredHexesTable = tables.Table{
		Name: "covered_hexes",
		Columns: []tables.Column{
			tables.Col("id", storage.TypeBigInt),
			tables.Col("location", storage.TypeBigInt),
			tables.Col("base_coverage_points", storage.TypeNumeric),
			tables.Col("boosted_coverage_points", storage.TypeNumeric),
			tables.Col("urbanized", storage.TypeText),
			tables.Col("footfall", storage.TypeText),
			tables.Col("landtype", storage.TypeText),
			tables.Col("assignment_multiplier", storage.TypeNumeric),
			tables.Col("rank", storage.TypeInt),
			tables.Col("rank_multiplier", storage.TypeNumeric),
			tables.Col("boosted_multiplier", storage.TypeInt),
		},
	}

	GatewayRewardsTable = tables.Table{
		Name: "mobile_gateway_rewards",
		Columns: []tables.Column{
			tables.Col("hotspot_key", storage.TypeText),
			tables.Col("amount", storage.TypeBigInt),
			tables.Col("start_period", storage.TypeTimestamp),
			tables.Col("end_period", storage.TypeTimestamp),
		},
	}

	SubscriberRewardsTable = tables.Table{
		Name: "mobile_subscriber_rewards",
		Columns: []tables.Column{
			tables.Col("subscriber_id", storage.TypeBytes),
			tables.Col("amount", storage.TypeBigInt),
			tables.Col("start_period", storage.TypeTimestamp),
			tables.Col("end_period", storage.TypeTimestamp),
		},
	}

	ServiceProviderRewardsTable = labeledTable("mobile_service_provider_rewards", "service_provider")

	PromotionRewardsTable = tables.Table{
		Name: "mobile_promotion_rewards",
		Columns: []tables.Column{
			tables.Col("entity", storage.TypeText),
			tables.Col("service_provider_amount", storage.TypeBigInt),
			tables.Col("matched_amount", storage.TypeBigInt),
			tables.Col("start_period", storage.TypeTimestamp),
			tables.Col("end_period", storage.TypeTimestamp),
		},
	}

	UnallocatedRewardsTable = labeledTable("mobile_unallocated_rewards", "reward_type")
)

// Destination tables of the IoT reward share family.
var (
	IotGatewayRewardsTable = tables.Table{
		Name: "iot_gateway_rewards",
		Columns: []tables.Column{
			tables.Col("hotspot_key", storage.TypeText),
			tables.Col("beacon_amount", storage.TypeBigInt),
			tables.Col("witness_amount", storage.TypeBigInt),
			tables.Col("dc_transfer_amount", storage.TypeBigInt),
			tables.Col("start_period", storage.TypeTimestamp),
			tables.Col("end_period", storage.TypeTimestamp),
		},
	}

	IotOtherRewardsTable = labeledTable("iot_other_rewards", "reward_type")
)

// MobileTables lists every mobile table in provisioning order.
func MobileTables() []tables.Table {
	return []tables.Table{
		RadioRewardsTable,
		RadioRewardsV2Table,
		LocationTrustScoresTable,
		SpeedtestsTable,
		SpeedtestAverageTable,
		CoveredHexesTable,
		GatewayRewardsTable,
		SubscriberRewardsTable,
		ServiceProviderRewardsTable,
		PromotionRewardsTable,
		UnallocatedRewardsTable,
	}
}

// IotTables lists every IoT table in provisioning order.
func IotTables() []tables.Table {
	return []tables.Table{IotGatewayRewardsTable, IotOtherRewardsTable}
}

func speedtestTable(name string) tables.Table {
	return tables.Table{
		Name: name,
		Columns: []tables.Column{
			tables.Col("id", storage.TypeBigInt),
			tables.Col("upload", storage.TypeBigInt),
			tables.Col("download", storage.TypeBigInt),
			tables.Col("latency", storage.TypeInt),
			tables.Col("timestamp", storage.TypeTimestamp),
		},
	}
}

// labeledTable is the shape shared by rewards that carry only a label, an
// amount and the reward window.
func labeledTable(name, label string) tables.Table {
	return tables.Table{
		Name: name,
		Columns: []tables.Column{
			tables.Col(label, storage.TypeText),
			tables.Col("amount", storage.TypeBigInt),
			tables.Col("start_period", storage.TypeTimestamp),
			tables.Col("end_period", storage.TypeTimestamp),
		},
	}
}
