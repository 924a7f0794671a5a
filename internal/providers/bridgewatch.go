package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chainmagnet/chainmagnet/internal/config"
	"github.com/chainmagnet/chainmagnet/internal/health"
	"github.com/chainmagnet/chainmagnet/internal/metrics"
	"github.com/chainmagnet/chainmagnet/internal/signals"
)

// bridgeShareEstimate is the fraction of generic transfer volume assumed to
// be bridge-bound when a token has no direct bridge coverage. Heuristic
// calibrated against tokens that have both feeds.
const bridgeShareEstimate = 0.15

// BridgeWatch produces the bridge-outflow signal. Tokens outside direct
// bridge coverage fall back to a transfer-volume heuristic flagged as
// estimated, which the aggregator penalizes with half weight.
type BridgeWatch struct {
	base
}

// NewBridgeWatch builds the BridgeWatch client.
func NewBridgeWatch(cfg config.ProviderConfig, tracker *health.Tracker, reg *metrics.Registry) *BridgeWatch {
	return &BridgeWatch{base: newBase(health.ProviderBridgeWatch, cfg, tracker, reg)}
}

type bridgeFlows struct {
	Volume7d float64 `json:"volume_7d"`
	TrendPct float64 `json:"trend_pct"`
}

type transferVolume struct {
	Volume7d float64 `json:"volume_7d"`
	TrendPct float64 `json:"trend_pct"`
}

// Flows fetches measured bridge outflow for a token, falling back to the
// estimate path when the token is not covered.
func (b *BridgeWatch) Flows(ctx context.Context, tokenID string) (*signals.Bridge, error) {
	u := fmt.Sprintf("%s/tokens/%s/bridge-volume", b.baseURL, url.PathEscape(tokenID))

	var flows bridgeFlows
	err := b.getJSON(ctx, u, nil, &flows)
	if err == nil {
		return &signals.Bridge{
			Volume7d: flows.Volume7d,
			TrendPct: flows.TrendPct,
		}, nil
	}

	// Any failure on the direct feed, coverage gap or outage alike, tries
	// the heuristic path before giving up on the signal.
	return b.estimate(ctx, tokenID)
}

// estimate reconstructs bridge outflow from generic on-chain transfer volume.
func (b *BridgeWatch) estimate(ctx context.Context, tokenID string) (*signals.Bridge, error) {
	u := fmt.Sprintf("%s/tokens/%s/transfer-volume", b.baseURL, url.PathEscape(tokenID))

	var transfers transferVolume
	if err := b.getJSON(ctx, u, nil, &transfers); err != nil {
		return nil, err
	}
	return &signals.Bridge{
		Volume7d:  transfers.Volume7d * bridgeShareEstimate,
		TrendPct:  transfers.TrendPct,
		Estimated: true,
	}, nil
}
