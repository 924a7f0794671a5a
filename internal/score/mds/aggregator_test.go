package mds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainmagnet/chainmagnet/internal/signals"
)

func TestWeights_SumToOne(t *testing.T) {
	sum := 0.0
	for _, k := range signals.AllKinds() {
		sum += Weight(k)
	}
	assert.Equal(t, 1.0, sum, "static weights must sum to exactly 1.0")
}

func fullSet() signals.Set {
	tvl := 2.5e9
	return signals.Set{
		Bridge:        &signals.Bridge{Volume7d: 1_750_000},                      // 50
		Search:        &signals.Search{DexVolume24h: 500_000, ListedOnTarget: true}, // 17.5
		Social:        &signals.Social{Followers: 250_000, SentimentPct: 50},     // 18
		ChainHealth:   &signals.ChainHealth{MarketCap: 2.5e9, TVL: &tvl},         // 27.5
		WalletOverlap: &signals.WalletOverlap{OverlapPct: 20, ActiveOverlapPct: 40}, // 50
	}
}

func TestCompute_FullSetNoRescale(t *testing.T) {
	set := fullSet()
	got := Compute("arbitrum", set)

	expected := set.Bridge.Normalize()*WeightBridge +
		set.Search.Normalize()*WeightSearch +
		set.Social.Normalize()*WeightSocial +
		set.ChainHealth.Normalize()*WeightChainHealth +
		set.WalletOverlap.Normalize()*WeightWalletOverlap

	assert.InDelta(t, expected, got.TotalScore, 1e-9, "all signals present means no rescale")
	assert.Equal(t, 1.0, got.Confidence)
	assert.Len(t, got.Breakdown, 5)
	assert.False(t, got.CalculatedAt.IsZero())
}

func TestCompute_ConfidenceIsCountBased(t *testing.T) {
	tests := []struct {
		name string
		set  signals.Set
		want float64
	}{
		{"one of five", signals.Set{WalletOverlap: &signals.WalletOverlap{}}, 0.2},
		{"two of five", signals.Set{Bridge: &signals.Bridge{}, Social: &signals.Social{}}, 0.4},
		{"three of five", signals.Set{
			Bridge: &signals.Bridge{}, Search: &signals.Search{}, Social: &signals.Social{},
		}, 0.6},
		{"all five", fullSet(), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Compute("t", tt.set).Confidence, 1e-9)
		})
	}
}

func TestCompute_AbsentSignalsRedistributeWeight(t *testing.T) {
	// Only bridge, search, social present: available weight 0.75, so the
	// composite is the weighted sum rescaled by 1/0.75 and invariant to
	// whatever the absent signals would have been.
	set := signals.Set{
		Bridge: &signals.Bridge{Volume7d: 3_500_000},                       // 100
		Search: &signals.Search{DexVolume24h: 1_000_000, ListedOnTarget: true}, // 35
		Social: &signals.Social{SentimentScore: 1.0},                        // 25
	}
	got := Compute("t", set)

	weighted := 100*WeightBridge + 35*WeightSearch + 25*WeightSocial
	assert.InDelta(t, weighted/0.75, got.TotalScore, 1e-9)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)

	_, hasChain := got.Breakdown[signals.KindChainHealth]
	assert.False(t, hasChain, "absent signal must not appear in the breakdown")
}

func TestCompute_EstimatedBridgeHalvesWeight(t *testing.T) {
	// Normalized 80 with estimated data contributes 80*0.15 to the numerator
	// and 0.15 (not 0.30) to the available weight.
	bridge := &signals.Bridge{Volume7d: 2_800_000, Estimated: true} // normalizes to 80
	require.InDelta(t, 80, bridge.Normalize(), 1e-9)

	got := Compute("t", signals.Set{
		Bridge:        bridge,
		Search:        &signals.Search{DexVolume24h: 1_000_000, ListedOnTarget: true}, // 35
		Social:        &signals.Social{},                                              // 0
		ChainHealth:   &signals.ChainHealth{},                                         // 0
		WalletOverlap: &signals.WalletOverlap{},                                       // 0
	})

	availableWeight := 0.15 + WeightSearch + WeightSocial + WeightChainHealth + WeightWalletOverlap
	expected := (80*0.15 + 35*WeightSearch) / availableWeight
	assert.InDelta(t, expected, got.TotalScore, 1e-9)

	bd := got.Breakdown[signals.KindBridge]
	assert.Equal(t, 0.15, bd.Weight)
	assert.True(t, bd.Estimated)
	assert.InDelta(t, 80*0.15, bd.Weighted, 1e-9)
}

func TestCompute_EmptySetGuard(t *testing.T) {
	got := Compute("ghost", signals.Set{})
	assert.Equal(t, 0.0, got.TotalScore)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, TrendStable, got.Trend)
	assert.Empty(t, got.Breakdown)
}

func TestCompute_TrendBlend(t *testing.T) {
	rising := signals.Set{
		Bridge: &signals.Bridge{TrendPct: 30}, // 30*.30 = 9
		Search: &signals.Search{TrendPct: 0},
		Social: &signals.Social{TrendPct: 0},
	}
	assert.Equal(t, TrendRising, Compute("t", rising).Trend)

	falling := signals.Set{
		Bridge:      &signals.Bridge{TrendPct: -20},      // -6
		ChainHealth: &signals.ChainHealth{TrendPct: -10}, // -1.5
	}
	assert.Equal(t, TrendFalling, Compute("t", falling).Trend)

	stable := signals.Set{Bridge: &signals.Bridge{TrendPct: 10}} // blend 3
	assert.Equal(t, TrendStable, Compute("t", stable).Trend)
}

func TestCompute_WalletOverlapContributesNoTrend(t *testing.T) {
	// The trend blend has no wallet term: a huge overlap trend in the raw
	// data cannot move the bucket.
	set := signals.Set{
		WalletOverlap: &signals.WalletOverlap{OverlapPct: 40, ActiveOverlapPct: 80},
	}
	got := Compute("t", set)
	assert.Equal(t, TrendStable, got.Trend)
	assert.Equal(t, 100.0, got.TotalScore, "single wallet signal rescales to its own normalized value")
}

func TestBucketTrend(t *testing.T) {
	assert.Equal(t, TrendRising, BucketTrend(5.1))
	assert.Equal(t, TrendStable, BucketTrend(5.0))
	assert.Equal(t, TrendStable, BucketTrend(-5.0))
	assert.Equal(t, TrendFalling, BucketTrend(-5.1))
	assert.Equal(t, TrendStable, BucketTrend(0))
}

func TestCompute_SaturatedEndToEnd(t *testing.T) {
	tvl := 6e9
	set := signals.Set{
		Bridge: &signals.Bridge{Volume7d: 3_500_000, TrendPct: 40},
		Search: &signals.Search{
			DexVolume24h: 2_000_000,
			TxCount24h:   20_000,
			LiquidityUSD: 10_000_000,
			BoostScore:   5_000,
		}, // unlisted on target: +15
		Social: &signals.Social{
			Followers:      600_000,
			Subscribers:    200_000,
			ActiveUsers48:  10_000,
			SentimentScore: 0.9,
			SentimentPct:   95,
		},
		ChainHealth:   &signals.ChainHealth{MarketCap: 6e9, Volume24h: 6e8, TVL: &tvl, Holders: 600_000},
		WalletOverlap: &signals.WalletOverlap{OverlapPct: 45, ActiveOverlapPct: 85},
	}
	got := Compute("moonshot", set)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Greater(t, got.TotalScore, 95.0, "saturating normalizers should push the composite near 100")
	assert.LessOrEqual(t, got.TotalScore, 100.0)
	assert.Equal(t, TrendRising, got.Trend)
}
