package lockout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"uplift/internal/ratelimit/models"
)

// Hash field names for records in the shared cache.
const (
	fieldUserID      = "user_id"
	fieldAttempts    = "attempts"
	fieldLockedUntil = "locked_until" // unix milliseconds, "0" while unlocked
)

// RedisStore keeps login-attempt records as hashes with a TTL in the shared
// cache, so every process sees the same attempt counts and locks.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.LoginAttempt, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	attempts, err := strconv.Atoi(fields[fieldAttempts])
	if err != nil {
		return nil, fmt.Errorf("parse attempts for %s: %w", key, err)
	}

	record := &models.LoginAttempt{
		Identifier: key,
		UserID:     fields[fieldUserID],
		Attempts:   attempts,
	}
	if raw := fields[fieldLockedUntil]; raw != "" && raw != "0" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse locked_until for %s: %w", key, err)
		}
		t := time.UnixMilli(ms)
		record.LockedUntil = &t
	}
	return record, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, record *models.LoginAttempt, ttl time.Duration) error {
	lockedUntil := "0"
	if record.LockedUntil != nil {
		lockedUntil = strconv.FormatInt(record.LockedUntil.UnixMilli(), 10)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		fieldUserID, record.UserID,
		fieldAttempts, strconv.Itoa(record.Attempts),
		fieldLockedUntil, lockedUntil,
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}
