package health

import (
	"context"
	"sync"
	"time"
)

// Provider identifies one upstream data source. The set is closed: snapshots
// always report exactly these five, in this order.
type Provider string

const (
	ProviderCoinGecko   Provider = "coingecko"
	ProviderDexScreener Provider = "dexscreener"
	ProviderBridgeWatch Provider = "bridgewatch"
	ProviderSocialStats Provider = "socialstats"
	ProviderWalletGraph Provider = "walletgraph"
)

// AllProviders returns the closed provider set in canonical order.
func AllProviders() []Provider {
	return []Provider{
		ProviderCoinGecko,
		ProviderDexScreener,
		ProviderBridgeWatch,
		ProviderSocialStats,
		ProviderWalletGraph,
	}
}

// Status classifies a provider from its consecutive-failure count. It is
// derived on read, never stored, so the thresholds can change without touching
// the tracker's write path.
type Status string

const (
	StatusUnknown  Status = "unknown"  // never attempted
	StatusHealthy  Status = "healthy"  // 0 consecutive failures
	StatusDegraded Status = "degraded" // 1-2 consecutive failures
	StatusDown     Status = "down"     // >=3 consecutive failures
)

// Record holds the raw call counters for one provider. Records are created
// lazily on first tracked call and live for the process lifetime.
type Record struct {
	Provider            Provider      `json:"provider"`
	LastSuccess         time.Time     `json:"last_success,omitempty"`
	LastAttempt         time.Time     `json:"last_attempt,omitempty"`
	LastLatency         time.Duration `json:"last_latency_ms"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastError           string        `json:"last_error,omitempty"`
}

// Snapshot is a Record plus its derived status, the shape handed to operators
// and the /v1/health endpoint.
type Snapshot struct {
	Record
	Status Status `json:"status"`
}

// DeriveStatus computes the circuit-breaker-style status for a record.
func DeriveStatus(r Record) Status {
	switch {
	case r.LastAttempt.IsZero():
		return StatusUnknown
	case r.ConsecutiveFailures == 0:
		return StatusHealthy
	case r.ConsecutiveFailures < 3:
		return StatusDegraded
	default:
		return StatusDown
	}
}

// Tracker records per-provider call outcomes. It never blocks or rejects a
// call: a provider being down is visible state, not a gate.
type Tracker struct {
	mu      sync.Mutex
	records map[Provider]*Record
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[Provider]*Record)}
}

// TrackedCall runs fn for provider, recording attempt time, latency and
// outcome. The error from fn is returned unchanged.
func (t *Tracker) TrackedCall(ctx context.Context, provider Provider, fn func(ctx context.Context) error) error {
	start := time.Now()

	t.mu.Lock()
	rec := t.recordLocked(provider)
	rec.LastAttempt = start
	t.mu.Unlock()

	err := fn(ctx)
	latency := time.Since(start)

	t.mu.Lock()
	defer t.mu.Unlock()
	rec.LastLatency = latency
	if err != nil {
		rec.ConsecutiveFailures++
		rec.LastError = err.Error()
		return err
	}
	rec.ConsecutiveFailures = 0
	rec.LastSuccess = time.Now()
	rec.LastError = ""
	return nil
}

// Record returns a copy of the counters for provider, zero-valued if the
// provider was never called.
func (t *Tracker) Record(provider Provider) Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.recordLocked(provider)
}

// Snapshot reports one entry per member of the fixed provider set, creating
// unknown-status defaults for providers never attempted.
func (t *Tracker) Snapshot() []Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Snapshot, 0, len(AllProviders()))
	for _, p := range AllProviders() {
		rec := *t.recordLocked(p)
		out = append(out, Snapshot{Record: rec, Status: DeriveStatus(rec)})
	}
	return out
}

// recordLocked fetches or lazily creates the record for provider. Caller must
// hold t.mu.
func (t *Tracker) recordLocked(provider Provider) *Record {
	rec, ok := t.records[provider]
	if !ok {
		rec = &Record{Provider: provider}
		t.records[provider] = rec
	}
	return rec
}
