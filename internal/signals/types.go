// Package signals defines the five demand-signal records and the pure
// normalizers that map each onto a comparable 0-100 scale.
package signals

// Kind names one of the five demand signals.
type Kind string

const (
	KindBridge        Kind = "bridge"
	KindSearch        Kind = "search"
	KindSocial        Kind = "social"
	KindChainHealth   Kind = "chainHealth"
	KindWalletOverlap Kind = "walletOverlap"
)

// AllKinds returns the fixed signal set in weight order.
func AllKinds() []Kind {
	return []Kind{KindBridge, KindSearch, KindSocial, KindChainHealth, KindWalletOverlap}
}

// Bridge is the bridge-outflow signal: how much value already leaves the
// asset's origin chains over bridges. Estimated marks values reconstructed
// from market-volume heuristics when no direct bridge coverage exists; the
// aggregator halves the signal's effective weight in that case.
type Bridge struct {
	Volume7d  float64 `json:"volume_7d"`
	TrendPct  float64 `json:"trend_pct"`
	Estimated bool    `json:"estimated"`
}

// Search is the search/DEX-intent signal from aggregator listings and DEX
// activity on the target chain.
type Search struct {
	DexVolume24h   float64 `json:"dex_volume_24h"`
	TxCount24h     float64 `json:"tx_count_24h"`
	LiquidityUSD   float64 `json:"liquidity_usd"`
	ListedOnTarget bool    `json:"listed_on_target"`
	BoostScore     float64 `json:"boost_score"`
	TrendPct       float64 `json:"trend_pct"`
}

// Social is the community-demand signal. SentimentScore is in [-1, 1],
// SentimentPct is the bullish share of recent posts in [0, 100].
type Social struct {
	Followers      float64 `json:"followers"`
	Subscribers    float64 `json:"subscribers"`
	ActiveUsers48  float64 `json:"active_users_48h"`
	SentimentScore float64 `json:"sentiment_score"`
	SentimentPct   float64 `json:"sentiment_pct"`
	TrendPct       float64 `json:"trend_pct"`
}

// ChainHealth is the origin-chain market-health signal. TVL is optional:
// several providers have no TVL coverage for small assets, and a missing
// value contributes zero rather than being guessed.
type ChainHealth struct {
	MarketCap float64  `json:"market_cap"`
	Volume24h float64  `json:"volume_24h"`
	TVL       *float64 `json:"tvl,omitempty"`
	Holders   float64  `json:"holders"`
	TrendPct  float64  `json:"trend_pct"`
}

// WalletOverlap measures how much of the asset's holder base already holds
// assets on the target chain. It carries no trend component.
type WalletOverlap struct {
	OverlapPct       float64 `json:"overlap_pct"`
	ActiveOverlapPct float64 `json:"active_overlap_pct"`
}

// Set carries whatever subset of the five signals a scoring request managed
// to obtain. A nil field is an absent signal.
type Set struct {
	Bridge        *Bridge
	Search        *Search
	Social        *Social
	ChainHealth   *ChainHealth
	WalletOverlap *WalletOverlap
}

// Present counts the signals available in the set.
func (s Set) Present() int {
	n := 0
	if s.Bridge != nil {
		n++
	}
	if s.Search != nil {
		n++
	}
	if s.Social != nil {
		n++
	}
	if s.ChainHealth != nil {
		n++
	}
	if s.WalletOverlap != nil {
		n++
	}
	return n
}
