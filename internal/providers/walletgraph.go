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

// WalletGraph produces the holder-overlap signal: how much of a token's
// holder base already transacts on the target chain.
type WalletGraph struct {
	base
	targetChain string
}

// NewWalletGraph builds the WalletGraph client for targetChain.
func NewWalletGraph(cfg config.ProviderConfig, targetChain string, tracker *health.Tracker, reg *metrics.Registry) *WalletGraph {
	return &WalletGraph{
		base:        newBase(health.ProviderWalletGraph, cfg, tracker, reg),
		targetChain: targetChain,
	}
}

type overlapPayload struct {
	OverlapPct       float64 `json:"overlap_pct"`
	ActiveOverlapPct float64 `json:"active_overlap_pct"`
}

// Overlap fetches the wallet-overlap signal for one token.
func (w *WalletGraph) Overlap(ctx context.Context, tokenID string) (*signals.WalletOverlap, error) {
	u := fmt.Sprintf("%s/overlap?token=%s&chain=%s",
		w.baseURL, url.QueryEscape(tokenID), url.QueryEscape(w.targetChain))

	var payload overlapPayload
	if err := w.getJSON(ctx, u, nil, &payload); err != nil {
		return nil, err
	}
	return &signals.WalletOverlap{
		OverlapPct:       payload.OverlapPct,
		ActiveOverlapPct: payload.ActiveOverlapPct,
	}, nil
}
