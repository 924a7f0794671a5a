// Package providers implements the five upstream signal fetchers. Every call
// goes through the resilient fetch client and the health tracker; expected
// failures come back as errors for the caller to treat as an absent signal,
// never as a panic or an aborted request.
package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chainmagnet/chainmagnet/internal/config"
	"github.com/chainmagnet/chainmagnet/internal/health"
	"github.com/chainmagnet/chainmagnet/internal/metrics"
	"github.com/chainmagnet/chainmagnet/internal/net/fetch"
)

// base carries the plumbing every provider client shares.
type base struct {
	name    health.Provider
	baseURL string
	apiKey  string
	client  *fetch.Client
	tracker *health.Tracker
	metrics *metrics.Registry
	log     zerolog.Logger
}

func newBase(name health.Provider, cfg config.ProviderConfig, tracker *health.Tracker, reg *metrics.Registry) base {
	return base{
		name:    name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: fetch.NewClient(fetch.Config{
			Timeout:   cfg.Timeout(),
			Retries:   cfg.Retries,
			RPS:       cfg.RPS,
			Burst:     cfg.Burst,
			UserAgent: "ChainMagnet/1.0",
		}),
		tracker: tracker,
		metrics: reg,
		log:     log.With().Str("provider", string(name)).Logger(),
	}
}

// getJSON fetches url and decodes it into out under health tracking and
// metrics. A malformed payload counts as a provider failure: from the
// pipeline's point of view it is indistinguishable from absence.
func (b base) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	start := time.Now()
	err := b.tracker.TrackedCall(ctx, b.name, func(ctx context.Context) error {
		res := b.client.FetchJSON(ctx, url, fetch.Options{Headers: headers})
		if res.Err != nil {
			return res.Err
		}
		return res.Decode(out)
	})
	if b.metrics != nil {
		b.metrics.ObserveProvider(string(b.name), time.Since(start), err)
	}
	if err != nil {
		b.log.Warn().Err(err).Str("url", url).Msg("provider call failed")
	}
	return err
}

// Set bundles one client per provider, wired to shared tracker and metrics.
type Set struct {
	CoinGecko   *CoinGecko
	DexScreener *DexScreener
	BridgeWatch *BridgeWatch
	SocialStats *SocialStats
	WalletGraph *WalletGraph
}

// NewSet builds all five provider clients from config.
func NewSet(cfg config.ProvidersConfig, targetChain string, tracker *health.Tracker, reg *metrics.Registry) *Set {
	return &Set{
		CoinGecko:   NewCoinGecko(cfg.CoinGecko, tracker, reg),
		DexScreener: NewDexScreener(cfg.DexScreener, targetChain, tracker, reg),
		BridgeWatch: NewBridgeWatch(cfg.BridgeWatch, tracker, reg),
		SocialStats: NewSocialStats(cfg.SocialStats, tracker, reg),
		WalletGraph: NewWalletGraph(cfg.WalletGraph, targetChain, tracker, reg),
	}
}
