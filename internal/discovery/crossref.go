// Package discovery scans a ranked asset universe against a chain-presence
// registry to find assets with demand to migrate onto the target chain but no
// native deployment there yet.
package discovery

import (
	"sort"
	"strings"
)

const (
	// DefaultMarketCapFloor excludes dust assets from the candidate list.
	DefaultMarketCapFloor = 5_000_000
	// DefaultMaxOriginChains caps how many other-chain names are recorded
	// per survivor.
	DefaultMaxOriginChains = 5
)

// PresenceStatus classifies a survivor's footprint relative to the target
// chain.
type PresenceStatus string

const (
	// StatusCandidate means no presence on the target chain was found.
	StatusCandidate PresenceStatus = "candidate"
	// StatusWrappedDetected means the secondary fuzzy pass found a likely
	// wrapped or bridged listing on the target chain. The asset stays in the
	// result set: wrapped presence is a hint, not proof of native deployment.
	StatusWrappedDetected PresenceStatus = "wrapped_presence_detected"
)

// RankedAsset is one row of the market-cap-ordered input universe.
type RankedAsset struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
	Change7d  float64 `json:"change_7d"`
}

// Registry maps asset id to its per-chain contract addresses. An empty
// address means no deployment on that chain.
type Registry map[string]map[string]string

// Token is one migration candidate. Rank is a dense 1..N sequence over
// survivors in the input's original market-cap order.
type Token struct {
	Rank           int            `json:"rank"`
	ID             string         `json:"id"`
	Symbol         string         `json:"symbol"`
	Name           string         `json:"name"`
	MarketCap      float64        `json:"market_cap"`
	Volume24h      float64        `json:"volume_24h"`
	Change7d       float64        `json:"change_7d"`
	OriginChains   []string       `json:"origin_chains"`
	PresenceStatus PresenceStatus `json:"presence_status"`
}

// Config tunes the cross-reference filters.
type Config struct {
	TargetChain     string
	MarketCapFloor  float64
	MaxOriginChains int
}

// DefaultConfig returns the fixed production filter settings for chain.
func DefaultConfig(targetChain string) Config {
	return Config{
		TargetChain:     targetChain,
		MarketCapFloor:  DefaultMarketCapFloor,
		MaxOriginChains: DefaultMaxOriginChains,
	}
}

// bridgeTags are name suffixes that aggregators append to wrapped or bridged
// listings.
var bridgeTags = []string{
	"wormhole",
	"portal",
	"wrapped",
	"bridged",
	"allbridge",
	"axelar",
	"celer",
	"multichain",
}

// CrossReference filters the ranked universe down to migration candidates,
// preserving the input's order. The listedIndex is a secondary
// aggregator-listed name index used to flag probable wrapped presence on the
// target chain without excluding the asset.
//
// Identical input snapshots always produce identical output: there is no
// randomness and chain-name ordering is made stable by sorting.
func CrossReference(assets []RankedAsset, registry Registry, listedIndex []string, cfg Config) []Token {
	if cfg.MarketCapFloor == 0 {
		cfg.MarketCapFloor = DefaultMarketCapFloor
	}
	if cfg.MaxOriginChains == 0 {
		cfg.MaxOriginChains = DefaultMaxOriginChains
	}

	out := make([]Token, 0, len(assets))
	rank := 0
	for _, asset := range assets {
		if IsStablecoin(asset.ID, asset.Symbol) {
			continue
		}
		if asset.MarketCap < cfg.MarketCapFloor {
			// Missing market cap arrives as zero and falls under the floor.
			continue
		}
		presence, ok := registry[asset.ID]
		if !ok {
			continue
		}
		if presence[cfg.TargetChain] != "" {
			continue
		}

		rank++
		out = append(out, Token{
			Rank:           rank,
			ID:             asset.ID,
			Symbol:         asset.Symbol,
			Name:           asset.Name,
			MarketCap:      asset.MarketCap,
			Volume24h:      asset.Volume24h,
			Change7d:       asset.Change7d,
			OriginChains:   originChains(presence, cfg.TargetChain, cfg.MaxOriginChains),
			PresenceStatus: StatusCandidate,
		})
	}

	// Secondary pass: fuzzy-match survivors against the aggregator-listed
	// index. A hit flags the survivor but never removes it.
	for i := range out {
		if matchesListedIndex(out[i].Name, listedIndex) {
			out[i].PresenceStatus = StatusWrappedDetected
		}
	}
	return out
}

// originChains lists up to max chains (target excluded) where the asset has a
// non-empty contract address, sorted for stable output.
func originChains(presence map[string]string, targetChain string, max int) []string {
	chains := make([]string, 0, len(presence))
	for chain, addr := range presence {
		if chain == targetChain || addr == "" {
			continue
		}
		chains = append(chains, chain)
	}
	sort.Strings(chains)
	if len(chains) > max {
		chains = chains[:max]
	}
	return chains
}

// matchesListedIndex tries the three fuzzy strategies in order: bridge-tag
// suffix, substring containment either direction, then first-token equality.
func matchesListedIndex(name string, listedIndex []string) bool {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return false
	}
	for _, listed := range listedIndex {
		candidate := strings.ToLower(strings.TrimSpace(listed))
		if candidate == "" {
			continue
		}
		if base, tagged := stripBridgeTag(candidate); tagged && base == target {
			return true
		}
		if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
			return true
		}
		if firstToken(candidate) == firstToken(target) {
			return true
		}
	}
	return false
}

// stripBridgeTag removes a trailing known bridge tag (with optional
// parentheses) from a listed name, reporting whether one was found.
func stripBridgeTag(name string) (string, bool) {
	for _, tag := range bridgeTags {
		for _, suffix := range []string{" (" + tag + ")", " " + tag} {
			if strings.HasSuffix(name, suffix) {
				return strings.TrimSpace(strings.TrimSuffix(name, suffix)), true
			}
		}
	}
	return name, false
}

// firstToken returns the part of a name before the first whitespace or
// parenthesis.
func firstToken(name string) string {
	cut := len(name)
	for i, r := range name {
		if r == ' ' || r == '\t' || r == '(' || r == ')' {
			cut = i
			break
		}
	}
	return name[:cut]
}
