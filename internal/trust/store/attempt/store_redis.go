package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trustplane/internal/trust/models"
)

// RedisAttemptStore implements AttemptStore on Redis INCR with a window TTL.
// Use this backend when several instances must share one limiter.
//
// Unlike the memory store, a denied attempt still increments the Redis
// counter; admission decisions are identical because denial only depends on
// count exceeding the limit, and the TTL set on the first attempt pins the
// window end.
type RedisAttemptStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisAttemptStore creates a Redis-backed attempt store.
func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client, keyPrefix: "trustplane:attempt:"}
}

func (s *RedisAttemptStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.AttemptResult, error) {
	redisKey := s.keyPrefix + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("incr attempt counter: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return nil, fmt.Errorf("set attempt window: %w", err)
		}
	}

	ttl, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read attempt window: %w", err)
	}
	if ttl < 0 {
		// Key exists without TTL (expire raced or failed earlier); repin the
		// window so the bucket cannot live forever.
		ttl = window
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return nil, fmt.Errorf("repin attempt window: %w", err)
		}
	}

	resetAt := time.Now().Add(ttl)

	if count > int64(limit) {
		return &models.AttemptResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfterSeconds(resetAt, time.Now()),
		}, nil
	}

	return &models.AttemptResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
		ResetAt:   resetAt,
	}, nil
}

func (s *RedisAttemptStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset attempt counter: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, s.keyPrefix+key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get attempt counter: %w", err)
	}
	return count, nil
}
