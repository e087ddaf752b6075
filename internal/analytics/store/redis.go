package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	patternDeleteDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coursepulse_cache_pattern_delete_duration_ms",
		Help:    "Latency of pattern-delete sweeps in milliseconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
	})
	keysEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursepulse_cache_keys_evicted_total",
		Help: "Total number of cache keys removed by the invalidation engine",
	})
)

// scanBatchSize bounds how many keys one SCAN iteration may return and how
// many keys are deleted per DEL.
const scanBatchSize = 200

// RedisStore is the production cache store adapter. Pattern deletes use
// SCAN rather than KEYS so sweeps never block the store.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed store adapter.
func NewRedis(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStore{client: client}, nil
}

// DeleteScope evicts one exact key. Deleting an absent key is a success.
func (s *RedisStore) DeleteScope(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return err
	}
	keysEvictedTotal.Add(float64(n))
	return nil
}

// DeletePattern evicts every key matching the wildcard pattern, deleting in
// batches as the scan cursor advances.
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) error {
	start := time.Now()
	defer func() {
		patternDeleteDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return err
			}
			keysEvictedTotal.Add(float64(n))
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
