package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// testKey returns a mainnet ed25519 key filled with b.
func testKey(b byte) []byte {
	key := bytes.Repeat([]byte{b}, 33)
	key[0] = keyTypeEd25519
	return key
}

func sampleRadioRewardV2() *RadioRewardV2 {
	return &RadioRewardV2{
		HotspotKey:                   testKey(0x01),
		CbsdID:                       "P27-SCE4255W2107CW5000014",
		BaseCoveragePointsSum:        MustDecimal("160.25"),
		BoostedCoveragePointsSum:     MustDecimal("0"),
		BaseRewardShares:             MustDecimal("1.5"),
		BoostedRewardShares:          MustDecimal("0.000001"),
		BasePocReward:                4200,
		BoostedPocReward:             17,
		SeniorityTimestamp:           1_700_000_000,
		LocationTrustScoreMultiplier: MustDecimal("0.25"),
		LocationTrustScores: []LocationTrustScore{
			{MetersToAsserted: 12, TrustScore: MustDecimal("1")},
			{MetersToAsserted: 300, TrustScore: MustDecimal("0.25")},
		},
		SpeedtestMultiplier: MustDecimal("1"),
		Speedtests: []Speedtest{
			{UploadSpeedBps: 1000, DownloadSpeedBps: 9000, LatencyMs: 25, Timestamp: 1_700_000_100},
			{UploadSpeedBps: 2000, DownloadSpeedBps: 8000, LatencyMs: 30, Timestamp: 1_700_000_200},
		},
		SpeedtestAverage: &Speedtest{UploadSpeedBps: 1500, DownloadSpeedBps: 8500, LatencyMs: 27, Timestamp: 1_700_000_300},
		CoveredHexes: []CoveredHex{{
			Location:              631_711_281_856_187_903,
			BaseCoveragePoints:    MustDecimal("16"),
			BoostedCoveragePoints: MustDecimal("0"),
			Urbanized:             1,
			Footfall:              0,
			Landtype:              2,
			AssignmentMultiplier:  MustDecimal("0.4"),
			Rank:                  1,
			RankMultiplier:        MustDecimal("1"),
			BoostedMultiplier:     3,
		}},
		SpBoostedHexStatus:     2,
		OracleBoostedHexStatus: 1,
	}
}

func TestMobileRewardShareRoundTrip(t *testing.T) {
	coverage := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	v2 := sampleRadioRewardV2()
	v2.CoverageObject = coverage[:]

	tests := []struct {
		name   string
		reward MobileReward
	}{
		{"radio reward v2", v2},
		{"radio reward", &RadioReward{
			HotspotKey:     testKey(9),
			CbsdID:         "cbsd",
			PocReward:      10,
			CoveragePoints: 20,
			BoostedHexes:   []BoostedHex{{Location: 1, Multiplier: 2}, {Location: 3, Multiplier: 4}},
		}},
		{"gateway", &GatewayReward{HotspotKey: testKey(1), DcTransferReward: 5, RewardableBytes: 100, Price: 7}},
		{"subscriber", &SubscriberReward{SubscriberID: []byte("sub"), DiscoveryLocationAmount: 3, VerificationMappingAmount: 4}},
		{"service provider", &ServiceProviderReward{Amount: 99}},
		{"promotion", &PromotionReward{Entity: "acme", ServiceProviderAmount: 1, MatchedAmount: 2}},
		{"unallocated", &UnallocatedReward{RewardType: 3, Amount: 12}},
		{"no variant", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &MobileRewardShare{StartPeriod: 1_700_000_000, EndPeriod: 1_700_086_400, Reward: tt.reward}

			var out MobileRewardShare
			if err := out.Unmarshal(in.Marshal()); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if out.StartPeriod != in.StartPeriod || out.EndPeriod != in.EndPeriod {
				t.Errorf("period = (%d, %d), want (%d, %d)", out.StartPeriod, out.EndPeriod, in.StartPeriod, in.EndPeriod)
			}
			if tt.reward == nil {
				if out.Reward != nil {
					t.Fatalf("Reward = %T, want nil", out.Reward)
				}
				return
			}
			// Compare by re-encoding.
			if !bytes.Equal(out.Reward.Marshal(), tt.reward.Marshal()) {
				t.Errorf("reward %T did not survive a round trip", tt.reward)
			}
		})
	}
}

func TestRadioRewardV2Fields(t *testing.T) {
	coverage := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	in := sampleRadioRewardV2()
	in.CoverageObject = coverage[:]

	var out RadioRewardV2
	if err := out.Unmarshal(in.Marshal()); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got := out.CoverageObjectID(); got != coverage {
		t.Errorf("CoverageObjectID() = %s, want %s", got, coverage)
	}
	if got := out.BaseCoveragePointsSum.Text(); got != "160.25" {
		t.Errorf("BaseCoveragePointsSum = %s, want 160.25", got)
	}
	if got := out.BoostedRewardShares.Text(); got != "0.000001" {
		t.Errorf("BoostedRewardShares = %s, want 0.000001", got)
	}
	if len(out.LocationTrustScores) != 2 || len(out.Speedtests) != 2 || len(out.CoveredHexes) != 1 {
		t.Fatalf("children = (%d, %d, %d), want (2, 2, 1)",
			len(out.LocationTrustScores), len(out.Speedtests), len(out.CoveredHexes))
	}
	if out.SpeedtestAverage == nil || out.SpeedtestAverage.LatencyMs != 27 {
		t.Errorf("SpeedtestAverage = %+v", out.SpeedtestAverage)
	}
	if got := out.SpBoostedHexStatus.String(); got != "radio_threshold_not_met" {
		t.Errorf("SpBoostedHexStatus = %s", got)
	}
	if got := out.OracleBoostedHexStatus.String(); got != "banned" {
		t.Errorf("OracleBoostedHexStatus = %s", got)
	}
	if got := out.CoveredHexes[0].Landtype.String(); got != "c" {
		t.Errorf("Landtype = %s, want c", got)
	}
}

func TestRadioRewardV2AbsentFields(t *testing.T) {
	var out RadioRewardV2
	if err := out.Unmarshal((&RadioRewardV2{}).Marshal()); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.CoverageObjectID() != uuid.Nil {
		t.Errorf("CoverageObjectID() = %s, want nil UUID", out.CoverageObjectID())
	}
	if out.SpeedtestAverage != nil {
		t.Errorf("SpeedtestAverage = %+v, want nil", out.SpeedtestAverage)
	}
	if got := out.BaseRewardShares.Text(); got != "0" {
		t.Errorf("absent decimal = %q, want 0", got)
	}
}

func TestUnmarshalRejectsMalformedInput(t *testing.T) {
	valid := (&MobileRewardShare{StartPeriod: 1, Reward: &GatewayReward{HotspotKey: testKey(1)}}).Marshal()

	wrongType := protowire.AppendTag(nil, mobileStartPeriod, protowire.BytesType)
	wrongType = protowire.AppendString(wrongType, "x")

	badCoverage := (&MobileRewardShare{Reward: &RadioRewardV2{HotspotKey: testKey(2), CoverageObject: []byte{1, 2, 3}}}).Marshal()

	badDecimal := protowire.AppendTag(nil, 3, protowire.BytesType)
	badDecimal = protowire.AppendBytes(badDecimal, appendString(nil, 1, "not-a-number"))
	badDecimalShare := protowire.AppendTag(nil, mobileRadioRewardV2, protowire.BytesType)
	badDecimalShare = protowire.AppendBytes(badDecimalShare, badDecimal)

	badUTF8 := protowire.AppendTag(nil, mobilePromotionReward, protowire.BytesType)
	badUTF8 = protowire.AppendBytes(badUTF8, appendBytes(nil, 1, []byte{0xff, 0xfe}))

	tests := []struct {
		name  string
		input []byte
	}{
		{"truncated", valid[:len(valid)-1]},
		{"wrong wire type", wrongType},
		{"coverage object length", badCoverage},
		{"invalid decimal", badDecimalShare},
		{"invalid utf8", badUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m MobileRewardShare
			if err := m.Unmarshal(tt.input); err == nil {
				t.Fatal("Unmarshal() error = nil, want error")
			}
		})
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	b := (&MobileRewardShare{StartPeriod: 5}).Marshal()
	b = protowire.AppendTag(b, 99, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 42)
	b = protowire.AppendTag(b, 100, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	var m MobileRewardShare
	if err := m.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m.StartPeriod != 5 || m.Reward != nil {
		t.Errorf("got %+v", m)
	}
}

func TestIotRewardShareRoundTrip(t *testing.T) {
	rewards := []IotReward{
		&IotGatewayReward{HotspotKey: testKey(7), BeaconAmount: 1, WitnessAmount: 2, DcTransferAmount: 3},
		&IotOperationalReward{Amount: 50},
		&IotUnallocatedReward{RewardType: 2, Amount: 8},
	}
	for _, r := range rewards {
		in := &IotRewardShare{StartPeriod: 10, EndPeriod: 20, Reward: r}
		var out IotRewardShare
		if err := out.Unmarshal(in.Marshal()); err != nil {
			t.Fatalf("%T: Unmarshal() error = %v", r, err)
		}
		if !bytes.Equal(out.Marshal(), in.Marshal()) {
			t.Errorf("%T did not survive a round trip", r)
		}
	}
}

func TestEnumNames(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{UnallocatedRewardType(5).String(), "unallocated_reward_type_data"},
		{UnallocatedRewardType(42).String(), "unallocated_reward_type_poc"},
		{ServiceProvider(0).String(), "helium_mobile"},
		{IotUnallocatedRewardType(1).String(), "operation"},
		{Assignment(-1).String(), "a"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestKeyText(t *testing.T) {
	key := []byte{0x00, 0x11, 0x22, 0x33, 0x44}
	text := KeyText(key)

	decoded, version, err := base58.CheckDecode(text)
	if err != nil {
		t.Fatalf("CheckDecode(%q) error = %v", text, err)
	}
	if version != 0 || !bytes.Equal(decoded, key) {
		t.Errorf("CheckDecode = (%x, %d), want (%x, 0)", decoded, version, key)
	}
}

func TestCheckKey(t *testing.T) {
	secp := bytes.Repeat([]byte{0xab}, 34)
	secp[0] = keyTypeSecp256k1
	testnet := testKey(0x05)
	testnet[0] = networkTestnet | keyTypeEd25519

	tests := []struct {
		name string
		key  []byte
		ok   bool
	}{
		{"ed25519", testKey(0x05), true},
		{"ecc compact", append([]byte{keyTypeEccCompact}, bytes.Repeat([]byte{1}, 32)...), true},
		{"secp256k1", secp, true},
		{"testnet", testnet, true},
		{"empty", nil, false},
		{"short", []byte{keyTypeEd25519, 1, 2}, false},
		{"long", append(testKey(0x05), 0), false},
		{"unknown type", append([]byte{0x02}, bytes.Repeat([]byte{1}, 32)...), false},
		{"unknown network", append([]byte{0x21}, bytes.Repeat([]byte{1}, 32)...), false},
	}
	for _, tt := range tests {
		err := checkKey(tt.key)
		if tt.ok && err != nil {
			t.Errorf("%s: checkKey() error = %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidKey) {
			t.Errorf("%s: checkKey() error = %v, want ErrInvalidKey", tt.name, err)
		}
	}
}

func TestUnmarshalRejectsInvalidHotspotKey(t *testing.T) {
	tests := []struct {
		name   string
		reward interface{ Marshal() []byte }
		target interface{ Unmarshal([]byte) error }
	}{
		{"radio reward", &RadioReward{HotspotKey: []byte{9, 9}}, &RadioReward{}},
		{"radio reward v2", &RadioRewardV2{HotspotKey: []byte{0x00, 0x01}}, &RadioRewardV2{}},
		{"gateway", &GatewayReward{DcTransferReward: 5}, &GatewayReward{}},
		{"iot gateway", &IotGatewayReward{HotspotKey: []byte{7, 7}}, &IotGatewayReward{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Unmarshal(tt.reward.Marshal())
			if !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("Unmarshal() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := error(&DecodeError{Record: 3, Err: inner})
	if !errors.Is(err, inner) {
		t.Error("DecodeError does not unwrap")
	}
	if got := err.Error(); got != "decode record 3: boom" {
		t.Errorf("Error() = %q", got)
	}
}
