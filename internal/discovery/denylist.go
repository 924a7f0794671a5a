package discovery

import "strings"

// Stablecoins are never migration candidates: their presence on a chain is a
// liquidity decision by the issuer, not organic demand. The denylist is fixed
// configuration, matched case-insensitively by id and by symbol.
var (
	stablecoinIDs = map[string]struct{}{
		"tether":            {},
		"usd-coin":          {},
		"dai":               {},
		"binance-usd":       {},
		"true-usd":          {},
		"frax":              {},
		"usdd":              {},
		"paxos-standard":    {},
		"gemini-dollar":     {},
		"first-digital-usd": {},
		"ethena-usde":       {},
		"paypal-usd":        {},
	}

	stablecoinSymbols = map[string]struct{}{
		"usdt":  {},
		"usdc":  {},
		"dai":   {},
		"busd":  {},
		"tusd":  {},
		"frax":  {},
		"usdd":  {},
		"usdp":  {},
		"gusd":  {},
		"fdusd": {},
		"usde":  {},
		"pyusd": {},
	}
)

// IsStablecoin reports whether an asset is denylisted by id or symbol.
func IsStablecoin(id, symbol string) bool {
	if _, ok := stablecoinIDs[strings.ToLower(id)]; ok {
		return true
	}
	_, ok := stablecoinSymbols[strings.ToLower(symbol)]
	return ok
}
