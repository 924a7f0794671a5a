// Package app wires cache, health tracking, providers and the aggregator into
// the three public operations: scoring, discovery and the health snapshot.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/chainmagnet/chainmagnet/internal/cache"
	"github.com/chainmagnet/chainmagnet/internal/config"
	"github.com/chainmagnet/chainmagnet/internal/discovery"
	"github.com/chainmagnet/chainmagnet/internal/health"
	"github.com/chainmagnet/chainmagnet/internal/metrics"
	"github.com/chainmagnet/chainmagnet/internal/persistence"
	"github.com/chainmagnet/chainmagnet/internal/providers"
	"github.com/chainmagnet/chainmagnet/internal/score/mds"
	"github.com/chainmagnet/chainmagnet/internal/signals"
	"github.com/chainmagnet/chainmagnet/internal/votes"
)

// Source interfaces decouple the service from the concrete provider clients
// so tests can substitute stubs per signal.
type (
	// BridgeSource serves the bridge-outflow signal.
	BridgeSource interface {
		Flows(ctx context.Context, tokenID string) (*signals.Bridge, error)
	}
	// SearchSource serves the DEX-intent signal and the listed-name index.
	SearchSource interface {
		Search(ctx context.Context, symbol string) (*signals.Search, error)
		ListedIndex(ctx context.Context) ([]string, error)
	}
	// SocialSource serves the community signal.
	SocialSource interface {
		Community(ctx context.Context, tokenID string) (*signals.Social, error)
	}
	// MarketSource serves chain health, the ranked universe and the
	// chain-presence registry.
	MarketSource interface {
		ChainHealth(ctx context.Context, tokenID string) (*signals.ChainHealth, error)
		Markets(ctx context.Context, page, perPage int) ([]discovery.RankedAsset, error)
		PresenceRegistry(ctx context.Context) (discovery.Registry, error)
	}
	// OverlapSource serves the wallet-overlap signal.
	OverlapSource interface {
		Overlap(ctx context.Context, tokenID string) (*signals.WalletOverlap, error)
	}
)

// Sources bundles the five signal backends.
type Sources struct {
	Bridge  BridgeSource
	Search  SearchSource
	Social  SocialSource
	Market  MarketSource
	Overlap OverlapSource
}

// Archiver persists discovery runs. Failures are logged, never propagated.
type Archiver interface {
	SaveDiscoveryRun(ctx context.Context, runAt time.Time, tokens []discovery.Token) error
}

// Service owns all process-wide state: caches, health tracker, metrics and
// provider clients. No package-level singletons; tests instantiate isolated
// services freely.
type Service struct {
	cfg     *config.Config
	tracker *health.Tracker
	metrics *metrics.Registry
	sources Sources
	votes   *votes.Store
	archive Archiver
	log     zerolog.Logger

	bridgeCache    *cache.TTL[signals.Bridge]
	searchCache    *cache.TTL[signals.Search]
	socialCache    *cache.TTL[signals.Social]
	chainCache     *cache.TTL[signals.ChainHealth]
	overlapCache   *cache.TTL[signals.WalletOverlap]
	scoreCache     *cache.TTL[mds.Score]
	marketsCache   *cache.TTL[[]discovery.RankedAsset]
	registryCache  *cache.TTL[discovery.Registry]
	indexCache     *cache.TTL[[]string]
	discoveryCache *cache.TTL[[]discovery.Token]
}

// Options configures a Service. Zero fields get working defaults; Sources is
// required.
type Options struct {
	Config  *config.Config
	Tracker *health.Tracker
	Metrics *metrics.Registry
	Sources Sources
	Votes   *votes.Store
	Archive Archiver
}

// New builds a Service from explicit options.
func New(opts Options) *Service {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = health.NewTracker()
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	max := cfg.Cache.MaxEntries
	return &Service{
		cfg:     cfg,
		tracker: tracker,
		metrics: reg,
		sources: opts.Sources,
		votes:   opts.Votes,
		archive: opts.Archive,
		log:     log.With().Str("component", "service").Logger(),

		bridgeCache:    cache.NewTTL[signals.Bridge](max),
		searchCache:    cache.NewTTL[signals.Search](max),
		socialCache:    cache.NewTTL[signals.Social](max),
		chainCache:     cache.NewTTL[signals.ChainHealth](max),
		overlapCache:   cache.NewTTL[signals.WalletOverlap](max),
		scoreCache:     cache.NewTTL[mds.Score](max),
		marketsCache:   cache.NewTTL[[]discovery.RankedAsset](max),
		registryCache:  cache.NewTTL[discovery.Registry](max),
		indexCache:     cache.NewTTL[[]string](max),
		discoveryCache: cache.NewTTL[[]discovery.Token](max),
	}
}

// NewFromConfig wires the production providers, vote store and archive.
func NewFromConfig(cfg *config.Config) (*Service, error) {
	tracker := health.NewTracker()
	reg := metrics.NewRegistry()
	set := providers.NewSet(cfg.Providers, cfg.TargetChain, tracker, reg)

	var voteStore *votes.Store
	if cfg.Redis.Addr != "" {
		voteStore = votes.NewStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	}

	var archive Archiver
	if cfg.Postgres.DSN != "" {
		a, err := persistence.Open(cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open discovery archive: %w", err)
		}
		archive = a
	}

	return New(Options{
		Config:  cfg,
		Tracker: tracker,
		Metrics: reg,
		Sources: Sources{
			Bridge:  set.BridgeWatch,
			Search:  set.DexScreener,
			Social:  set.SocialStats,
			Market:  set.CoinGecko,
			Overlap: set.WalletGraph,
		},
		Votes:   voteStore,
		Archive: archive,
	}), nil
}

// Metrics exposes the service's metric registry for the HTTP layer.
func (s *Service) Metrics() *metrics.Registry { return s.metrics }

// Votes exposes the vote store, possibly disabled.
func (s *Service) Votes() *votes.Store { return s.votes }

// TargetChain reports which chain candidates are scored against.
func (s *Service) TargetChain() string { return s.cfg.TargetChain }

// HealthSnapshot reports one record per provider in the fixed set.
func (s *Service) HealthSnapshot() []health.Snapshot {
	return s.tracker.Snapshot()
}

// cached wraps a fetch with cache-check, metrics and cache-write.
func cached[T any](ctx context.Context, c *cache.TTL[T], key string, ttl time.Duration,
	reg *metrics.Registry, class string, fn func(context.Context) (T, error)) (T, error) {

	if v, ok := c.Get(key); ok {
		reg.CacheHits.WithLabelValues(class).Inc()
		return v, nil
	}
	reg.CacheMisses.WithLabelValues(class).Inc()

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// GetScore computes the migration demand score for one token. All five signal
// fetches run concurrently and settle independently: a failed provider makes
// its signal absent, it never fails the request.
func (s *Service) GetScore(ctx context.Context, tokenID string) (mds.Score, error) {
	if tokenID == "" {
		return mds.Score{}, fmt.Errorf("token id must not be empty")
	}
	ttl := s.cfg.Cache.TTLSecs
	if score, ok := s.scoreCache.Get("score:" + tokenID); ok {
		s.metrics.CacheHits.WithLabelValues("score").Inc()
		return score, nil
	}
	s.metrics.CacheMisses.WithLabelValues("score").Inc()

	var set signals.Set
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		v, err := cached(ctx, s.bridgeCache, "bridge:"+tokenID, ttl.BridgeTTL(), s.metrics, "bridge",
			func(ctx context.Context) (signals.Bridge, error) {
				sig, err := s.sources.Bridge.Flows(ctx, tokenID)
				if err != nil {
					return signals.Bridge{}, err
				}
				return *sig, nil
			})
		if err == nil {
			set.Bridge = &v
		}
	}()
	go func() {
		defer wg.Done()
		v, err := cached(ctx, s.searchCache, "search:"+tokenID, ttl.SearchTTL(), s.metrics, "search",
			func(ctx context.Context) (signals.Search, error) {
				sig, err := s.sources.Search.Search(ctx, tokenID)
				if err != nil {
					return signals.Search{}, err
				}
				return *sig, nil
			})
		if err == nil {
			set.Search = &v
		}
	}()
	go func() {
		defer wg.Done()
		v, err := cached(ctx, s.socialCache, "social:"+tokenID, ttl.SocialTTL(), s.metrics, "social",
			func(ctx context.Context) (signals.Social, error) {
				sig, err := s.sources.Social.Community(ctx, tokenID)
				if err != nil {
					return signals.Social{}, err
				}
				return *sig, nil
			})
		if err == nil {
			set.Social = &v
		}
	}()
	go func() {
		defer wg.Done()
		v, err := cached(ctx, s.chainCache, "chain:"+tokenID, ttl.MarketTTL(), s.metrics, "market",
			func(ctx context.Context) (signals.ChainHealth, error) {
				sig, err := s.sources.Market.ChainHealth(ctx, tokenID)
				if err != nil {
					return signals.ChainHealth{}, err
				}
				return *sig, nil
			})
		if err == nil {
			set.ChainHealth = &v
		}
	}()
	go func() {
		defer wg.Done()
		v, err := cached(ctx, s.overlapCache, "overlap:"+tokenID, ttl.WalletOverlapTTL(), s.metrics, "wallet_overlap",
			func(ctx context.Context) (signals.WalletOverlap, error) {
				sig, err := s.sources.Overlap.Overlap(ctx, tokenID)
				if err != nil {
					return signals.WalletOverlap{}, err
				}
				return *sig, nil
			})
		if err == nil {
			set.WalletOverlap = &v
		}
	}()
	wg.Wait()

	score := mds.Compute(tokenID, set)
	s.metrics.ScoresComputed.Inc()
	s.scoreCache.Set("score:"+tokenID, score, ttl.ScoreTTL())

	s.log.Debug().
		Str("token", tokenID).
		Float64("score", score.TotalScore).
		Float64("confidence", score.Confidence).
		Msg("score computed")
	return score, nil
}

// GetDiscoveryList runs the discovery pipeline: ranked universe pages in
// parallel, registry and listed index, then the cross-reference. Partial
// provider failure shrinks the result, it never raises.
func (s *Service) GetDiscoveryList(ctx context.Context) ([]discovery.Token, error) {
	ttl := s.cfg.Cache.TTLSecs
	if tokens, ok := s.discoveryCache.Get("discovery"); ok {
		s.metrics.CacheHits.WithLabelValues("discovery").Inc()
		return tokens, nil
	}
	s.metrics.CacheMisses.WithLabelValues("discovery").Inc()

	pages := make([][]discovery.RankedAsset, s.cfg.Discovery.Pages)
	var registry discovery.Registry
	var listedIndex []string

	// Settle-all: goroutines record failures by leaving their slot empty.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Discovery.Pages; i++ {
		i := i
		g.Go(func() error {
			page := i + 1
			assets, err := cached(gctx, s.marketsCache, fmt.Sprintf("markets:%d", page), ttl.MarketTTL(),
				s.metrics, "market",
				func(ctx context.Context) ([]discovery.RankedAsset, error) {
					return s.sources.Market.Markets(ctx, page, s.cfg.Discovery.PageSize)
				})
			if err != nil {
				s.log.Warn().Err(err).Int("page", page).Msg("market page unavailable")
				return nil
			}
			pages[i] = assets
			return nil
		})
	}
	g.Go(func() error {
		reg, err := cached(gctx, s.registryCache, "registry", ttl.RegistryTTL(), s.metrics, "registry",
			func(ctx context.Context) (discovery.Registry, error) {
				return s.sources.Market.PresenceRegistry(ctx)
			})
		if err != nil {
			s.log.Warn().Err(err).Msg("presence registry unavailable")
			return nil
		}
		registry = reg
		return nil
	})
	g.Go(func() error {
		idx, err := cached(gctx, s.indexCache, "listed_index", ttl.SearchTTL(), s.metrics, "search",
			func(ctx context.Context) ([]string, error) {
				return s.sources.Search.ListedIndex(ctx)
			})
		if err != nil {
			s.log.Warn().Err(err).Msg("listed index unavailable, wrapped detection skipped")
			return nil
		}
		listedIndex = idx
		return nil
	})
	_ = g.Wait() // goroutines never return errors, they degrade

	if registry == nil {
		// Without presence data every asset would be dropped anyway.
		return []discovery.Token{}, nil
	}

	var universe []discovery.RankedAsset
	for _, page := range pages {
		universe = append(universe, page...)
	}

	cfg := discovery.Config{
		TargetChain:     s.cfg.TargetChain,
		MarketCapFloor:  s.cfg.Discovery.MarketCapFloor,
		MaxOriginChains: s.cfg.Discovery.MaxOriginChains,
	}
	tokens := discovery.CrossReference(universe, registry, listedIndex, cfg)
	s.metrics.DiscoveryRuns.Inc()
	s.discoveryCache.Set("discovery", tokens, ttl.DiscoveryTTL())

	if s.archive != nil {
		if err := s.archive.SaveDiscoveryRun(ctx, time.Now().UTC(), tokens); err != nil {
			s.log.Warn().Err(err).Msg("discovery archive write failed")
		}
	}

	s.log.Info().Int("candidates", len(tokens)).Int("universe", len(universe)).Msg("discovery run complete")
	return tokens, nil
}
