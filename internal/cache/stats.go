// Package cache holds Redis-backed read caches.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProfileStats contains the counters rendered on a user's profile.
type ProfileStats struct {
	Messages  int64 `json:"messages"`
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
	Likes     int64 `json:"likes"`
}

// StatsCache caches ProfileStats per user. A nil *StatsCache or a nil client
// turns every call into a miss/no-op so callers never need to branch.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(userID uint) string { return fmt.Sprintf("user:%d:stats", userID) }

func (s *StatsCache) enabled() bool { return s != nil && s.client != nil }

// Get returns the cached stats; ok is false on miss or on any Redis error.
func (s *StatsCache) Get(ctx context.Context, userID uint) (ProfileStats, bool) {
	var out ProfileStats
	if !s.enabled() {
		return out, false
	}
	data, err := s.client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		s.misses.Add(1)
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		s.misses.Add(1)
		return out, false
	}
	s.hits.Add(1)
	return out, true
}

func (s *StatsCache) Set(ctx context.Context, userID uint, stats ProfileStats) error {
	if !s.enabled() {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statsKey(userID), payload, s.ttl).Err()
}

// Invalidate drops the cached stats of every given user.
func (s *StatsCache) Invalidate(ctx context.Context, userIDs ...uint) error {
	if !s.enabled() || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = statsKey(id)
	}
	return s.client.Del(ctx, keys...).Err()
}

// Counters reports hit/miss totals since start.
func (s *StatsCache) Counters() (hits, misses int64) {
	if s == nil {
		return 0, 0
	}
	return s.hits.Load(), s.misses.Load()
}
