// Package votes keeps community vote counters in Redis. Votes are simple
// increments on a remote key-value store: losing Redis degrades voting, never
// scoring.
package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// ErrDisabled is returned when no Redis backend is configured.
var ErrDisabled = errors.New("vote store disabled")

const keyPrefix = "chainmagnet:votes:"

// Store wraps the Redis vote counters. A nil client yields a disabled store.
type Store struct {
	client *redis.Client
}

// NewStore builds a Store over client. Pass nil to disable voting.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Enabled reports whether a backend is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

func key(tokenID string) string {
	return keyPrefix + tokenID
}

// Cast increments the counter for tokenID and returns the new total.
func (s *Store) Cast(ctx context.Context, tokenID string) (int64, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}
	n, err := s.client.Incr(ctx, key(tokenID)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr vote: %w", err)
	}
	return n, nil
}

// Count returns the current total for tokenID, zero when nobody voted yet.
func (s *Store) Count(ctx context.Context, tokenID string) (int64, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}
	n, err := s.client.Get(ctx, key(tokenID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get votes: %w", err)
	}
	return n, nil
}
