package fetch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter applies a token-bucket limit per upstream host so one hot
// provider cannot starve the others.
type hostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newHostLimiter(rps float64, burst int) *hostLimiter {
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *hostLimiter) get(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[host]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok := l.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[host] = limiter
	return limiter
}

// wait blocks until a request for host is allowed or ctx is cancelled.
func (l *hostLimiter) wait(ctx context.Context, host string) error {
	return l.get(host).Wait(ctx)
}
