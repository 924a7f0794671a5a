package signals

import "math"

// Normalization ceilings. All fixed constants, never derived from the data
// set, so scores stay comparable across runs.
const (
	bridgeDailyCeiling = 500_000 // USD/day of bridge outflow saturates the signal

	searchDexVolumeCeiling = 1_000_000
	searchTxCountCeiling   = 10_000
	searchLiquidityCeiling = 5_000_000

	socialFollowersCeiling = 500_000
	socialSubsCeiling      = 100_000
	socialActiveCeiling    = 5_000

	chainMarketCapCeiling = 5e9
	chainVolumeCeiling    = 5e8
	chainTVLCeiling       = 5e9
	chainHoldersCeiling   = 500_000

	overlapPctCeiling       = 40
	activeOverlapPctCeiling = 80
)

// Scale maps x from [min, max] onto [0, 100], clamping outside the range.
func Scale(x, min, max float64) float64 {
	if max == min {
		return 0
	}
	return Clamp((x-min)/(max-min)*100, 0, 100)
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}

// Normalize maps bridge outflow onto 0-100. A rising trend adds up to 30
// points on top of the volume component.
func (s Bridge) Normalize() float64 {
	score := Scale(s.Volume7d, 0, bridgeDailyCeiling*7) + math.Max(0, s.TrendPct)*0.3
	return Clamp(score, 0, 100)
}

// Normalize maps DEX intent onto 0-100. Not being listed on the target chain
// yet is worth a flat 15 points: unmet demand is the point of the score.
func (s Search) Normalize() float64 {
	score := 0.35*Scale(s.DexVolume24h, 0, searchDexVolumeCeiling) +
		0.25*Scale(s.TxCount24h, 0, searchTxCountCeiling) +
		0.15*Scale(s.LiquidityUSD, 0, searchLiquidityCeiling) +
		math.Min(10, s.BoostScore/50)
	if !s.ListedOnTarget {
		score += 15
	}
	return Clamp(score, 0, 100)
}

// Normalize maps community demand onto 0-100.
func (s Social) Normalize() float64 {
	community := 0.4*Scale(s.Followers, 0, socialFollowersCeiling) +
		0.2*Scale(s.Subscribers, 0, socialSubsCeiling) +
		0.2*Scale(s.ActiveUsers48, 0, socialActiveCeiling) +
		0.2*s.SentimentPct

	engagement := 0.0
	if s.Subscribers > 0 {
		engagement = Scale(s.ActiveUsers48/s.Subscribers*1000, 0, 100)
	}

	score := 0.6*community + 0.25*math.Max(0, s.SentimentScore)*100 + 0.15*engagement
	return Clamp(score, 0, 100)
}

// Normalize maps origin-chain health onto 0-100. A missing TVL contributes
// zero instead of being imputed.
func (s ChainHealth) Normalize() float64 {
	tvlTerm := 0.0
	if s.TVL != nil {
		tvlTerm = 0.25 * Scale(*s.TVL, 0, chainTVLCeiling)
	}
	score := 0.3*Scale(s.MarketCap, 0, chainMarketCapCeiling) +
		0.25*Scale(s.Volume24h, 0, chainVolumeCeiling) +
		tvlTerm +
		0.2*Scale(s.Holders, 0, chainHoldersCeiling)
	return Clamp(score, 0, 100)
}

// Normalize maps holder overlap onto 0-100.
func (s WalletOverlap) Normalize() float64 {
	score := 0.6*Scale(s.OverlapPct, 0, overlapPctCeiling) +
		0.4*Scale(s.ActiveOverlapPct, 0, activeOverlapPctCeiling)
	return Clamp(score, 0, 100)
}
