package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chainmagnet/chainmagnet/internal/config"
	"github.com/chainmagnet/chainmagnet/internal/discovery"
	"github.com/chainmagnet/chainmagnet/internal/health"
	"github.com/chainmagnet/chainmagnet/internal/metrics"
	"github.com/chainmagnet/chainmagnet/internal/signals"
)

// CoinGecko serves three data classes: the ranked market universe for
// discovery, the chain-presence registry, and the per-token origin-chain
// health signal.
type CoinGecko struct {
	base
}

// NewCoinGecko builds the CoinGecko client.
func NewCoinGecko(cfg config.ProviderConfig, tracker *health.Tracker, reg *metrics.Registry) *CoinGecko {
	return &CoinGecko{base: newBase(health.ProviderCoinGecko, cfg, tracker, reg)}
}

func (c *CoinGecko) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}

type marketRow struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	MarketCap *float64 `json:"market_cap"`
	Volume    *float64 `json:"total_volume"`
	Change7d  *float64 `json:"price_change_percentage_7d_in_currency"`
}

// Markets fetches one page of the market-cap-ranked universe.
func (c *CoinGecko) Markets(ctx context.Context, page, perPage int) ([]discovery.RankedAsset, error) {
	u := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=%d&price_change_percentage=7d",
		c.baseURL, perPage, page)

	var rows []marketRow
	if err := c.getJSON(ctx, u, c.headers(), &rows); err != nil {
		return nil, err
	}

	assets := make([]discovery.RankedAsset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, discovery.RankedAsset{
			ID:        row.ID,
			Symbol:    row.Symbol,
			Name:      row.Name,
			MarketCap: deref(row.MarketCap),
			Volume24h: deref(row.Volume),
			Change7d:  deref(row.Change7d),
		})
	}
	return assets, nil
}

type listRow struct {
	ID        string            `json:"id"`
	Platforms map[string]string `json:"platforms"`
}

// PresenceRegistry fetches the full asset-to-chain contract address map. The
// payload is large; callers cache it with the registry TTL.
func (c *CoinGecko) PresenceRegistry(ctx context.Context) (discovery.Registry, error) {
	u := c.baseURL + "/coins/list?include_platform=true"

	var rows []listRow
	if err := c.getJSON(ctx, u, c.headers(), &rows); err != nil {
		return nil, err
	}

	registry := make(discovery.Registry, len(rows))
	for _, row := range rows {
		if len(row.Platforms) == 0 {
			continue
		}
		registry[row.ID] = row.Platforms
	}
	return registry, nil
}

type coinDetail struct {
	MarketData struct {
		MarketCap struct {
			USD float64 `json:"usd"`
		} `json:"market_cap"`
		TotalVolume struct {
			USD float64 `json:"usd"`
		} `json:"total_volume"`
		TotalValueLocked *struct {
			USD float64 `json:"usd"`
		} `json:"total_value_locked"`
		Change7d float64 `json:"price_change_percentage_7d"`
	} `json:"market_data"`
	// CoinGecko has no holder counts; watchlist users are the closest
	// population proxy it exposes.
	WatchlistUsers float64 `json:"watchlist_portfolio_users"`
}

// ChainHealth fetches the origin-chain market-health signal for one token.
func (c *CoinGecko) ChainHealth(ctx context.Context, tokenID string) (*signals.ChainHealth, error) {
	u := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		c.baseURL, url.PathEscape(tokenID))

	var detail coinDetail
	if err := c.getJSON(ctx, u, c.headers(), &detail); err != nil {
		return nil, err
	}

	sig := &signals.ChainHealth{
		MarketCap: detail.MarketData.MarketCap.USD,
		Volume24h: detail.MarketData.TotalVolume.USD,
		Holders:   detail.WatchlistUsers,
		TrendPct:  detail.MarketData.Change7d,
	}
	if detail.MarketData.TotalValueLocked != nil {
		tvl := detail.MarketData.TotalValueLocked.USD
		sig.TVL = &tvl
	}
	return sig, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
