// Package config loads and validates the ChainMagnet YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	TargetChain string          `yaml:"target_chain"`
	LogLevel    string          `yaml:"log_level"`
	Server      ServerConfig    `yaml:"server"`
	Providers   ProvidersConfig `yaml:"providers"`
	Cache       CacheConfig     `yaml:"cache"`
	Discovery   DiscoveryConfig `yaml:"discovery"`
	Redis       RedisConfig     `yaml:"redis"`
	Postgres    PostgresConfig  `yaml:"postgres"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout_secs"`
	WriteTimeout int    `yaml:"write_timeout_secs"`
}

// ProvidersConfig holds per-provider client settings.
type ProvidersConfig struct {
	CoinGecko   ProviderConfig `yaml:"coingecko"`
	DexScreener ProviderConfig `yaml:"dexscreener"`
	BridgeWatch ProviderConfig `yaml:"bridgewatch"`
	SocialStats ProviderConfig `yaml:"socialstats"`
	WalletGraph ProviderConfig `yaml:"walletgraph"`
}

// ProviderConfig configures one upstream client.
type ProviderConfig struct {
	BaseURL   string  `yaml:"base_url"`
	APIKey    string  `yaml:"api_key"`
	TimeoutMS int     `yaml:"timeout_ms"` // per attempt
	Retries   int     `yaml:"retries"`    // extra attempts on transient failure
	RPS       float64 `yaml:"rps"`
	Burst     int     `yaml:"burst"`
}

// Timeout returns the per-attempt timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// CacheConfig bounds the in-memory caches and sets per-class TTLs, in
// seconds.
type CacheConfig struct {
	MaxEntries int         `yaml:"max_entries"`
	TTLSecs    TTLByClass  `yaml:"ttl_secs"`
}

// TTLByClass lists the cache lifetime of each data class.
type TTLByClass struct {
	Market        int `yaml:"market"`
	Bridge        int `yaml:"bridge"`
	Search        int `yaml:"search"`
	Social        int `yaml:"social"`
	WalletOverlap int `yaml:"wallet_overlap"`
	Registry      int `yaml:"registry"`
	Discovery     int `yaml:"discovery"`
	Score         int `yaml:"score"`
}

// Duration helpers, one per data class.
func (t TTLByClass) MarketTTL() time.Duration        { return secs(t.Market) }
func (t TTLByClass) BridgeTTL() time.Duration        { return secs(t.Bridge) }
func (t TTLByClass) SearchTTL() time.Duration        { return secs(t.Search) }
func (t TTLByClass) SocialTTL() time.Duration        { return secs(t.Social) }
func (t TTLByClass) WalletOverlapTTL() time.Duration { return secs(t.WalletOverlap) }
func (t TTLByClass) RegistryTTL() time.Duration      { return secs(t.Registry) }
func (t TTLByClass) DiscoveryTTL() time.Duration     { return secs(t.Discovery) }
func (t TTLByClass) ScoreTTL() time.Duration         { return secs(t.Score) }

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

// DiscoveryConfig tunes the candidate filters. The production values are
// fixed; config exists so the offline fixtures can shrink them.
type DiscoveryConfig struct {
	MarketCapFloor  float64 `yaml:"market_cap_floor"`
	Pages           int     `yaml:"pages"`
	PageSize        int     `yaml:"page_size"`
	MaxOriginChains int     `yaml:"max_origin_chains"`
}

// RedisConfig configures the optional vote-counter store. An empty Addr
// disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig configures the optional discovery archive. An empty DSN
// disables it.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the production configuration baseline.
func Default() *Config {
	return &Config{
		TargetChain: "base",
		LogLevel:    "info",
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10,
			WriteTimeout: 30,
		},
		Providers: ProvidersConfig{
			CoinGecko:   ProviderConfig{BaseURL: "https://api.coingecko.com/api/v3", TimeoutMS: 10000, Retries: 1, RPS: 0.5, Burst: 2},
			DexScreener: ProviderConfig{BaseURL: "https://api.dexscreener.com", TimeoutMS: 10000, Retries: 1, RPS: 1, Burst: 3},
			BridgeWatch: ProviderConfig{BaseURL: "https://api.bridgewatch.io/v1", TimeoutMS: 10000, Retries: 1, RPS: 1, Burst: 2},
			SocialStats: ProviderConfig{BaseURL: "https://api.socialstats.app/v2", TimeoutMS: 10000, Retries: 1, RPS: 1, Burst: 2},
			WalletGraph: ProviderConfig{BaseURL: "https://api.walletgraph.xyz/v1", TimeoutMS: 10000, Retries: 1, RPS: 1, Burst: 2},
		},
		Cache: CacheConfig{
			MaxEntries: 500,
			TTLSecs: TTLByClass{
				Market:        120,
				Bridge:        300,
				Search:        600,
				Social:        900,
				WalletOverlap: 1800,
				Registry:      3600,
				Discovery:     3600,
				Score:         180,
			},
		},
		Discovery: DiscoveryConfig{
			MarketCapFloor:  5_000_000,
			Pages:           2,
			PageSize:        250,
			MaxOriginChains: 5,
		},
	}
}

// Load reads path and overlays it onto the defaults. A missing path returns
// the defaults untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.TargetChain == "" {
		return fmt.Errorf("target_chain must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	if c.Discovery.Pages <= 0 || c.Discovery.PageSize <= 0 {
		return fmt.Errorf("discovery pages and page_size must be positive")
	}
	if c.Discovery.MarketCapFloor < 0 {
		return fmt.Errorf("discovery.market_cap_floor must not be negative")
	}
	for name, p := range map[string]ProviderConfig{
		"coingecko":   c.Providers.CoinGecko,
		"dexscreener": c.Providers.DexScreener,
		"bridgewatch": c.Providers.BridgeWatch,
		"socialstats": c.Providers.SocialStats,
		"walletgraph": c.Providers.WalletGraph,
	} {
		if p.BaseURL == "" {
			return fmt.Errorf("providers.%s.base_url must not be empty", name)
		}
		if p.TimeoutMS < 0 || p.Retries < 0 {
			return fmt.Errorf("providers.%s timeout and retries must not be negative", name)
		}
	}
	return nil
}
