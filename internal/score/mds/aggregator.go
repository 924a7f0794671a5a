// Package mds computes the Migration Demand Score: a weighted composite of
// the five normalized demand signals with confidence and trend classification.
// All I/O happens upstream; everything here is a pure function of its inputs
// plus a wall-clock timestamp.
package mds

import (
	"time"

	"github.com/chainmagnet/chainmagnet/internal/signals"
)

// Static signal weights. They sum to exactly 1.0; the aggregator tests pin
// that down.
const (
	WeightBridge        = 0.30
	WeightSearch        = 0.25
	WeightSocial        = 0.20
	WeightChainHealth   = 0.15
	WeightWalletOverlap = 0.10
)

// Weight returns the static weight for a signal kind.
func Weight(kind signals.Kind) float64 {
	switch kind {
	case signals.KindBridge:
		return WeightBridge
	case signals.KindSearch:
		return WeightSearch
	case signals.KindSocial:
		return WeightSocial
	case signals.KindChainHealth:
		return WeightChainHealth
	case signals.KindWalletOverlap:
		return WeightWalletOverlap
	default:
		return 0
	}
}

// Trend classifies score momentum.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// trendThreshold separates stable from rising/falling blends.
const trendThreshold = 5.0

// BucketTrend maps a trend percentage onto a bucket.
func BucketTrend(pct float64) Trend {
	switch {
	case pct > trendThreshold:
		return TrendRising
	case pct < -trendThreshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

// SignalScore is one signal's contribution to the composite.
type SignalScore struct {
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"` // effective weight, halved when estimated
	Weighted   float64 `json:"weighted"`
	Estimated  bool    `json:"estimated,omitempty"`
	Trend      Trend   `json:"trend"`
}

// Score is the composite result for one token. Recomputed fresh per request,
// never mutated after construction.
type Score struct {
	TokenID      string                         `json:"token_id"`
	TotalScore   float64                        `json:"total_score"`
	Confidence   float64                        `json:"confidence"`
	Trend        Trend                          `json:"trend"`
	Breakdown    map[signals.Kind]SignalScore   `json:"breakdown"`
	CalculatedAt time.Time                      `json:"calculated_at"`
}

// Compute aggregates whatever subset of the five signals is present into a
// composite score. Absent signals are excluded from both numerator and weight
// denominator; an estimated bridge signal keeps only half its static weight.
func Compute(tokenID string, set signals.Set) Score {
	breakdown := make(map[signals.Kind]SignalScore)
	numerator := 0.0
	availableWeight := 0.0
	trendBlend := 0.0

	if s := set.Bridge; s != nil {
		w := WeightBridge
		if s.Estimated {
			w = WeightBridge / 2
		}
		normalized := s.Normalize()
		breakdown[signals.KindBridge] = SignalScore{
			Raw:        s.Volume7d,
			Normalized: normalized,
			Weight:     w,
			Weighted:   normalized * w,
			Estimated:  s.Estimated,
			Trend:      BucketTrend(s.TrendPct),
		}
		numerator += normalized * w
		availableWeight += w
		trendBlend += s.TrendPct * WeightBridge
	}
	if s := set.Search; s != nil {
		normalized := s.Normalize()
		breakdown[signals.KindSearch] = SignalScore{
			Raw:        s.DexVolume24h,
			Normalized: normalized,
			Weight:     WeightSearch,
			Weighted:   normalized * WeightSearch,
			Trend:      BucketTrend(s.TrendPct),
		}
		numerator += normalized * WeightSearch
		availableWeight += WeightSearch
		trendBlend += s.TrendPct * WeightSearch
	}
	if s := set.Social; s != nil {
		normalized := s.Normalize()
		breakdown[signals.KindSocial] = SignalScore{
			Raw:        s.Followers,
			Normalized: normalized,
			Weight:     WeightSocial,
			Weighted:   normalized * WeightSocial,
			Trend:      BucketTrend(s.TrendPct),
		}
		numerator += normalized * WeightSocial
		availableWeight += WeightSocial
		trendBlend += s.TrendPct * WeightSocial
	}
	if s := set.ChainHealth; s != nil {
		normalized := s.Normalize()
		breakdown[signals.KindChainHealth] = SignalScore{
			Raw:        s.MarketCap,
			Normalized: normalized,
			Weight:     WeightChainHealth,
			Weighted:   normalized * WeightChainHealth,
			Trend:      BucketTrend(s.TrendPct),
		}
		numerator += normalized * WeightChainHealth
		availableWeight += WeightChainHealth
		trendBlend += s.TrendPct * WeightChainHealth
	}
	if s := set.WalletOverlap; s != nil {
		normalized := s.Normalize()
		breakdown[signals.KindWalletOverlap] = SignalScore{
			Raw:        s.OverlapPct,
			Normalized: normalized,
			Weight:     WeightWalletOverlap,
			Weighted:   normalized * WeightWalletOverlap,
			Trend:      TrendStable,
		}
		numerator += normalized * WeightWalletOverlap
		availableWeight += WeightWalletOverlap
		// Wallet overlap deliberately contributes no trend term; the blend
		// coefficients sum to 0.90 and that asymmetry is part of the model.
	}

	score := Score{
		TokenID:      tokenID,
		Breakdown:    breakdown,
		Confidence:   float64(set.Present()) / 5,
		Trend:        BucketTrend(trendBlend),
		CalculatedAt: time.Now().UTC(),
	}
	if availableWeight == 0 {
		// Explicit guard: nothing to score, not a division by zero.
		score.Confidence = 0
		score.Trend = TrendStable
		return score
	}
	score.TotalScore = signals.Clamp(numerator/availableWeight, 0, 100)
	return score
}
