package attempt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pinguard/internal/pin/models"
)

const attemptKeyPrefix = "pin:attempts:"

// RedisStore keeps each scope's history in a sorted set scored by unix
// milliseconds. Appends trim the set to the retention window and refresh the
// key TTL, so idle scopes expire on their own.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

type RedisOption func(*RedisStore)

func WithRedisRetention(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, retention: DefaultRetention}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Append(ctx context.Context, scope string, rec models.AttemptRecord) error {
	member, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	key := attemptKeyPrefix + scope
	score := rec.AttemptedAt.UnixMilli()
	cutoff := rec.AttemptedAt.Add(-s.retention).UnixMilli()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: member})
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		pipe.Expire(ctx, key, s.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// ListSince returns records scored strictly after since, oldest first.
func (s *RedisStore) ListSince(ctx context.Context, scope string, since time.Time) ([]models.AttemptRecord, error) {
	members, err := s.client.ZRangeByScore(ctx, attemptKeyPrefix+scope, &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	out := make([]models.AttemptRecord, 0, len(members))
	for _, m := range members {
		var rec models.AttemptRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("decode attempt: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Reset(ctx context.Context, scope string) error {
	return s.client.Del(ctx, attemptKeyPrefix+scope).Err()
}
