package rewards

import (
	"encoding/json"
	"time"

	"github.com/withObsrvr/oracle-persist/internal/tables"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

// Every accumulator below is a struct of arrays: one slice per destination
// column, all of equal length, row i spread across index i of each slice.
// They implement storage.Columnar. Unsigned source values are narrowed with
// a plain conversion.

// window holds the reward window columns shared by most tables.
type window struct {
	StartPeriod []time.Time
	EndPeriod   []time.Time
}

func (w *window) add(start, end time.Time) {
	w.StartPeriod = append(w.StartPeriod, start)
	w.EndPeriod = append(w.EndPeriod, end)
}

var (
	radioRewardColumns      = RadioRewardsTable.ColumnNames()
	radioRewardV2Columns    = RadioRewardsV2Table.ColumnNames()
	locationTrustColumns    = LocationTrustScoresTable.ColumnNames()
	speedtestColumns        = SpeedtestsTable.ColumnNames()
	coveredHexColumns       = CoveredHexesTable.ColumnNames()
	gatewayRewardColumns    = GatewayRewardsTable.ColumnNames()
	subscriberRewardColumns = SubscriberRewardsTable.ColumnNames()
	promotionRewardColumns  = PromotionRewardsTable.ColumnNames()
	iotGatewayRewardColumns = IotGatewayRewardsTable.ColumnNames()
)

// RadioRewardColumns accumulates mobile_radio_rewards rows.
type RadioRewardColumns struct {
	window
	HotspotKey                   []string
	CbsdID                       []string
	CoveragePoints               []int64
	Amount                       []int64
	TransferAmount               []int64
	BoostedHexes                 []string
	LocationTrustScoreMultiplier []int32
	SpeedtestMultiplier          []int32
}

type boostedHexJSON struct {
	Location   int64 `json:"location"`
	Multiplier int32 `json:"multiplier"`
}

func (c *RadioRewardColumns) Add(start, end time.Time, r *wire.RadioReward) {
	hexes := make([]boostedHexJSON, len(r.BoostedHexes))
	for i, h := range r.BoostedHexes {
		hexes[i] = boostedHexJSON{Location: int64(h.Location), Multiplier: int32(h.Multiplier)}
	}
	// Marshalling a slice of plain structs cannot fail.
	encoded, _ := json.Marshal(hexes)

	c.HotspotKey = append(c.HotspotKey, wire.KeyText(r.HotspotKey))
	c.CbsdID = append(c.CbsdID, r.CbsdID)
	c.CoveragePoints = append(c.CoveragePoints, int64(r.CoveragePoints))
	c.Amount = append(c.Amount, int64(r.PocReward))
	c.window.add(start, end)
	c.TransferAmount = append(c.TransferAmount, int64(r.DcTransferReward))
	c.BoostedHexes = append(c.BoostedHexes, string(encoded))
	c.LocationTrustScoreMultiplier = append(c.LocationTrustScoreMultiplier, int32(r.LocationTrustScoreMultiplier))
	c.SpeedtestMultiplier = append(c.SpeedtestMultiplier, int32(r.SpeedtestMultiplier))
}

func (c *RadioRewardColumns) Table() string     { return RadioRewardsTable.Name }
func (c *RadioRewardColumns) Columns() []string { return radioRewardColumns }
func (c *RadioRewardColumns) Len() int          { return len(c.HotspotKey) }

func (c *RadioRewardColumns) AppendRow(dst []any, i int) []any {
	return append(dst,
		c.HotspotKey[i], c.CbsdID[i], c.CoveragePoints[i], c.Amount[i],
		c.StartPeriod[i], c.EndPeriod[i], c.TransferAmount[i], c.BoostedHexes[i],
		c.LocationTrustScoreMultiplier[i], c.SpeedtestMultiplier[i])
}

// RadioRewardV2Columns accumulates the parent rows of the radio reward v2
// family. The generated id is not a column here; it comes back from the
// insert.
type RadioRewardV2Columns struct {
	window
	HotspotKey                   []string
	CbsdID                       []string
	BaseCoveragePointsSum        []string
	BoostedCoveragePointsSum     []string
	BaseRewardShares             []string
	BoostedRewardShares          []string
	BasePocReward                []int64
	BoostedPocReward             []int64
	SeniorityTS                  []time.Time
	CoverageObject               []string
	LocationTrustScoreMultiplier []string
	SpeedtestMultiplier          []string
	SpBoostedHexStatus           []string
	OracleBoostedHexStatus       []string
}

func (c *RadioRewardV2Columns) Add(start, end time.Time, r *wire.RadioRewardV2) {
	c.window.add(start, end)
	c.HotspotKey = append(c.HotspotKey, wire.KeyText(r.HotspotKey))
	c.CbsdID = append(c.CbsdID, r.CbsdID)
	c.BaseCoveragePointsSum = append(c.BaseCoveragePointsSum, r.BaseCoveragePointsSum.Text())
	c.BoostedCoveragePointsSum = append(c.BoostedCoveragePointsSum, r.BoostedCoveragePointsSum.Text())
	c.BaseRewardShares = append(c.BaseRewardShares, r.BaseRewardShares.Text())
	c.BoostedRewardShares = append(c.BoostedRewardShares, r.BoostedRewardShares.Text())
	c.BasePocReward = append(c.BasePocReward, int64(r.BasePocReward))
	c.BoostedPocReward = append(c.BoostedPocReward, int64(r.BoostedPocReward))
	c.SeniorityTS = append(c.SeniorityTS, toTime(r.SeniorityTimestamp))
	c.CoverageObject = append(c.CoverageObject, r.CoverageObjectID().String())
	c.LocationTrustScoreMultiplier = append(c.LocationTrustScoreMultiplier, r.LocationTrustScoreMultiplier.Text())
	c.SpeedtestMultiplier = append(c.SpeedtestMultiplier, r.SpeedtestMultiplier.Text())
	c.SpBoostedHexStatus = append(c.SpBoostedHexStatus, r.SpBoostedHexStatus.String())
	c.OracleBoostedHexStatus = append(c.OracleBoostedHexStatus, r.OracleBoostedHexStatus.String())
}

func (c *RadioRewardV2Columns) Table() string     { return RadioRewardsV2Table.Name }
func (c *RadioRewardV2Columns) Columns() []string { return radioRewardV2Columns }
func (c *RadioRewardV2Columns) Len() int          { return len(c.HotspotKey) }

func (c *RadioRewardV2Columns) AppendRow(dst []any, i int) []any {
	return append(dst,
		c.StartPeriod[i], c.EndPeriod[i], c.HotspotKey[i], c.CbsdID[i],
		c.BaseCoveragePointsSum[i], c.BoostedCoveragePointsSum[i],
		c.BaseRewardShares[i], c.BoostedRewardShares[i],
		c.BasePocReward[i], c.BoostedPocReward[i], c.SeniorityTS[i], c.CoverageObject[i],
		c.LocationTrustScoreMultiplier[i], c.SpeedtestMultiplier[i],
		c.SpBoostedHexStatus[i], c.OracleBoostedHexStatus[i])
}

// LocationTrustScoreColumns accumulates location_trust_scores rows.
type LocationTrustScoreColumns struct {
	ID               []int64
	MetersToAsserted []int64
	TrustScore       []string
}

func (c *LocationTrustScoreColumns) Add(id int64, s *wire.LocationTrustScore) {
	c.ID = append(c.ID, id)
	c.MetersToAsserted = append(c.MetersToAsserted, int64(s.MetersToAsserted))
	c.TrustScore = append(c.TrustScore, s.TrustScore.Text())
}

func (c *LocationTrustScoreColumns) Table() string     { return LocationTrustScoresTable.Name }
func (c *LocationTrustScoreColumns) Columns() []string { return locationTrustColumns }
func (c *LocationTrustScoreColumns) Len() int          { return len(c.ID) }

func (c *LocationTrustScoreColumns) AppendRow(dst []any, i int) []any {
	return append(dst, c.ID[i], c.MetersToAsserted[i], c.TrustScore[i])
}

// SpeedtestColumns accumulates speed test rows. The same shape backs the
// speedtests and speedtest_average tables.
type SpeedtestColumns struct {
	table tables.Table

	ID        []int64
	Upload    []int64
	Download  []int64
	Latency   []int32
	Timestamp []time.Time
}

func NewSpeedtestColumns(t tables.Table) SpeedtestColumns {
	return SpeedtestColumns{table: t}
}

func (c *SpeedtestColumns) Add(id int64, s *wire.Speedtest) {
	c.ID = append(c.ID, id)
	c.Upload = append(c.Upload, int64(s.UploadSpeedBps))
	c.Download = append(c.Download, int64(s.DownloadSpeedBps))
	c.Latency = append(c.Latency, int32(s.LatencyMs))
	c.Timestamp = append(c.Timestamp, toTime(s.Timestamp))
}

func (c *SpeedtestColumns) Table() string     { return c.table.Name }
func (c *SpeedtestColumns) Columns() []string { return speedtestColumns }
func (c *SpeedtestColumns) Len() int          { return len(c.ID) }

func (c *SpeedtestColumns) AppendRow(dst []any, i int) []any {
	return append(dst, c.ID[i], c.Upload[i], c.Download[i], c.Latency[i], c.Timestamp[i])
}

// CoveredHexColumns accumulates covered_hexes rows.
type CoveredHexColumns struct {
	ID                    []int64
	Location              []int64
	BaseCoveragePoints    []string
	BoostedCoveragePoints []string
	Urbanized             []string
	Footfall              []string
	Landtype              []string
	AssignmentMultiplier  []string
	Rank                  []int32
	RankMultiplier        []string
	BoostedMultiplier     []int32
}

func (c *CoveredHexColumns) Add(id int64, h *wire.CoveredHex) {
	c.ID = append(c.ID, id)
	c.Location = append(c.Location, int64(h.Location))
	c.BaseCoveragePoints = append(c.BaseCoveragePoints, h.BaseCoveragePoints.Text())
	c.BoostedCoveragePoints = append(c.BoostedCoveragePoints, h.BoostedCoveragePoints.Text())
	c.Urbanized = append(c.Urbanized, h.Urbanized.String())
	c.Footfall = append(c.Footfall, h.Footfall.String())
	c.Landtype = append(c.Landtype, h.Landtype.String())
	c.AssignmentMultiplier = append(c.AssignmentMultiplier, h.AssignmentMultiplier.Text())
	c.Rank = append(c.Rank, int32(h.Rank))
	c.RankMultiplier = append(c.RankMultiplier, h.RankMultiplier.Text())
	c.BoostedMultiplier = append(c.BoostedMultiplier, int32(h.BoostedMultiplier))
}

func (c *CoveredHexColumns) Table() string     { return CoveredHexesTable.Name }
func (c *CoveredHexColumns) Columns() []string { return coveredHexColumns }
func (c *CoveredHexColumns) Len() int          { return len(c.ID) }

func (c *CoveredHexColumns) AppendRow(dst []any, i int) []any {
	return append(dst,
		c.ID[i], c.Location[i], c.BaseCoveragePoints[i], c.BoostedCoveragePoints[i],
		c.Urbanized[i], c.Footfall[i], c.Landtype[i], c.AssignmentMultiplier[i],
		c.Rank[i], c.RankMultiplier[i], c.BoostedMultiplier[i])
}

// GatewayRewardColumns accumulates mobile_gateway_rewards rows.
type GatewayRewardColumns struct {
	HotspotKey []string
	Amount     []int64
	window
}

func (c *GatewayRewardColumns) Add(start, end time.Time, r *wire.GatewayReward) {
	c.HotspotKey = append(c.HotspotKey, wire.KeyText(r.HotspotKey))
	c.Amount = append(c.Amount, int64(r.DcTransferReward))
	c.window.add(start, end)
}

func (c *GatewayRewardColumns) Table() string     { return GatewayRewardsTable.Name }
func (c *GatewayRewardColumns) Columns() []string { return gatewayRewardColumns }
func (c *GatewayRewardColumns) Len() int          { return len(c.HotspotKey) }

func (c *GatewayRewardColumns) AppendRow(dst []any, i int) []any {
	return append(dst, c.HotspotKey[i], c.Amount[i], c.StartPeriod[i], c.EndPeriod[i])
}

// SubscriberRewardColumns accumulates mobile_subscriber_rewards rows. The
// amount is the discovery location amount.
type SubscriberRewardColumns struct {
	SubscriberID [][]byte
	Amount       []int64
	window
}

func (c *SubscriberRewardColumns) Add(start, end time.Time, r *wire.SubscriberReward) {
	c.SubscriberID = append(c.SubscriberID, r.SubscriberID)
	c.Amount = append(c.Amount, int64(r.DiscoveryLocationAmount))
	c.window.add(start, end)
}

func (c *SubscriberRewardColumns) Table() string     { return SubscriberRewardsTable.Name }
func (c *SubscriberRewardColumns) Columns() []string { return subscriberRewardColumns }
func (c *SubscriberRewardColumns) Len() int          { return len(c.SubscriberID) }

func (c *SubscriberRewardColumns) AppendRow(dst []any, i int) []any {
	return append(dst, c.SubscriberID[i], c.Amount[i], c.StartPeriod[i], c.EndPeriod[i])
}

// PromotionRewardColumns accumulates mobile_promotion_rewards rows.
type PromotionRewardColumns struct {
	Entity                []string
	ServiceProviderAmount []int64
	MatchedAmount         []int64
	window
}

func (c *PromotionRewardColumns) Add(start, end time.Time, r *wire.PromotionReward) {
	c.Entity = append(c.Entity, r.Entity)
	c.ServiceProviderAmount = append(c.ServiceProviderAmount, int64(r.ServiceProviderAmount))
	c.MatchedAmount = append(c.MatchedAmount, int64(r.MatchedAmount))
	c.window.add(start, end)
}

func (c *PromotionRewardColumns) Table() string     { return PromotionRewardsTable.Name }
func (c *PromotionRewardColumns) Columns() []string { return promotionRewardColumns }
func (c *PromotionRewardColumns) Len() int          { return len(c.Entity) }

func (c *PromotionRewardColumns) AppendRow(dst []any, i int) []any {
	return append(dst, c.Entity[i], c.ServiceProviderAmount[i], c.MatchedAmount[i], c.StartPeriod[i], c.EndPeriod[i])
}

// LabeledAmountColumns accumulates rows of a label, an amount and the reward
// window: service provider, unallocated and IoT other rewards.
type LabeledAmountColumns struct {
	table   tables.Table
	columns []string

	Label  []string
	Amount []int64
	window
}

func NewLabeledAmountColumns(t tables.Table) LabeledAmountColumns {
	return LabeledAmountColumns{table: t, columns: t.ColumnNames()}
}

func (c *LabeledAmountColumns) Add(start, end time.Time, label string, amount uint64) {
	c.Label = append(c.Label, label)
	c.Amount = append(c.Amount, int64(amount))
	c.window.add(start, end)
}

func (c *LabeledAmountColumns) Table() string     { return c.table.Name }
func (c *LabeledAmountColumns) Columns() []string { return c.columns }
func (c *LabeledAmountColumns) Len() int          { return len(c.Label) }

func (c *LabeledAmountColumns) AppendRow(dst []any, i int) []any {
	return append(dst, c.Label[i], c.Amount[i], c.StartPeriod[i], c.EndPeriod[i])
}

// IotGatewayRewardColumns accumulates iot_gateway_rewards rows.
type IotGatewayRewardColumns struct {
	HotspotKey       []string
	BeaconAmount     []int64
	WitnessAmount    []int64
	DcTransferAmount []int64
	window
}

func (c *IotGatewayRewardColumns) Add(start, end time.Time, r *wire.IotGatewayReward) {
	c.HotspotKey = append(c.HotspotKey, wire.KeyText(r.HotspotKey))
	c.BeaconAmount = append(c.BeaconAmount, int64(r.BeaconAmount))
	c.WitnessAmount = append(c.WitnessAmount, int64(r.WitnessAmount))
	c.DcTransferAmount = append(c.DcTransferAmount, int64(r.DcTransferAmount))
	c.window.add(start, end)
}

func (c *IotGatewayRewardColumns) Table() string     { return IotGatewayRewardsTable.Name }
func (c *IotGatewayRewardColumns) Columns() []string { return iotGatewayRewardColumns }
func (c *IotGatewayRewardColumns) Len() int          { return len(c.HotspotKey) }

func (c *IotGatewayRewardColumns) AppendRow(dst []any, i int) []any {
	return append(dst,
		c.HotspotKey[i], c.BeaconAmount[i], c.WitnessAmount[i], c.DcTransferAmount[i],
		c.StartPeriod[i], c.EndPeriod[i])
}
