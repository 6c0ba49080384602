package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"uplift/internal/ratelimit/models"
	requesttime "uplift/pkg/platform/middleware/requesttime"
)

// RedisStore is the shared-cache counter. INCR carries atomicity across
// processes; the first hit of a window attaches the TTL.
type RedisStore struct {
	client redis.Cmdable
	window time.Duration
}

// NewRedis creates a Redis-backed counter store with the given window.
func NewRedis(client redis.Cmdable, windowDuration time.Duration) *RedisStore {
	return &RedisStore{client: client, window: windowDuration}
}

func (s *RedisStore) Increment(ctx context.Context, key string) (*models.CounterResult, error) {
	now := requesttime.Now(ctx)

	hits, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("incr %s: %w", key, err)
	}

	if hits == 1 {
		// First hit of a fresh window sets the expiry; later hits never extend it.
		if err := s.client.PExpire(ctx, key, s.window).Err(); err != nil {
			return nil, fmt.Errorf("pexpire %s: %w", key, err)
		}
		return &models.CounterResult{TotalHits: int(hits), ResetAt: now.Add(s.window)}, nil
	}

	// ResetAt reflects the TTL actually remaining on the key. A missing TTL
	// (key expired between INCR and PTTL, or never set) counts as a full window.
	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("pttl %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = s.window
	}
	return &models.CounterResult{TotalHits: int(hits), ResetAt: now.Add(ttl)}, nil
}

func (s *RedisStore) Decrement(ctx context.Context, key string) error {
	// Decrement only ever follows a successful Increment on the same key, so
	// a transient negative value is harmless and resolves at window expiry.
	if err := s.client.Decr(ctx, key).Err(); err != nil {
		return fmt.Errorf("decr %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}
