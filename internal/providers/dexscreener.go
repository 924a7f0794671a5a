package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/chainmagnet/chainmagnet/internal/config"
	"github.com/chainmagnet/chainmagnet/internal/health"
	"github.com/chainmagnet/chainmagnet/internal/metrics"
	"github.com/chainmagnet/chainmagnet/internal/signals"
)

// DexScreener produces the search/DEX-intent signal and the aggregator-listed
// name index used by the discovery wrapped-presence pass.
type DexScreener struct {
	base
	targetChain string
}

// NewDexScreener builds the DexScreener client for targetChain.
func NewDexScreener(cfg config.ProviderConfig, targetChain string, tracker *health.Tracker, reg *metrics.Registry) *DexScreener {
	return &DexScreener{
		base:        newBase(health.ProviderDexScreener, cfg, tracker, reg),
		targetChain: targetChain,
	}
}

type dexPair struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Txns struct {
		H24 struct {
			Buys  float64 `json:"buys"`
			Sells float64 `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Boosts struct {
		Active float64 `json:"active"`
	} `json:"boosts"`
}

type dexSearchResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// Search aggregates DEX activity for a token symbol across all listed pairs
// into one intent signal.
func (d *DexScreener) Search(ctx context.Context, symbol string) (*signals.Search, error) {
	u := fmt.Sprintf("%s/latest/dex/search?q=%s", d.baseURL, url.QueryEscape(symbol))

	var resp dexSearchResponse
	if err := d.getJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, fmt.Errorf("no dex pairs for %q", symbol)
	}

	sig := &signals.Search{}
	trendSum := 0.0
	for _, pair := range resp.Pairs {
		sig.DexVolume24h += pair.Volume.H24
		sig.TxCount24h += pair.Txns.H24.Buys + pair.Txns.H24.Sells
		sig.LiquidityUSD += pair.Liquidity.USD
		if pair.Boosts.Active > sig.BoostScore {
			sig.BoostScore = pair.Boosts.Active
		}
		if strings.EqualFold(pair.ChainID, d.targetChain) {
			sig.ListedOnTarget = true
		}
		trendSum += pair.PriceChange.H24
	}
	sig.TrendPct = trendSum / float64(len(resp.Pairs))
	return sig, nil
}

// ListedIndex returns the names of tokens trading on the target chain, the
// fuzzy cross-match input for discovery.
func (d *DexScreener) ListedIndex(ctx context.Context) ([]string, error) {
	u := fmt.Sprintf("%s/token-profiles/latest/v1?chainId=%s", d.baseURL, url.QueryEscape(d.targetChain))

	var rows []struct {
		ChainID string `json:"chainId"`
		Name    string `json:"name"`
	}
	if err := d.getJSON(ctx, u, nil, &rows); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		if row.ChainID != "" && !strings.EqualFold(row.ChainID, d.targetChain) {
			continue
		}
		names = append(names, row.Name)
	}
	return names, nil
}
