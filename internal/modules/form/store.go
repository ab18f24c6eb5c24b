// README: Form mirror store; one Redis hash per session for dispatch consumers.
package form

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	Save(ctx context.Context, sessionID string, values Values) error
	Delete(ctx context.Context, sessionID string) error
}

const defaultTTL = 24 * time.Hour

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func formKey(sessionID string) string {
	return "form:" + sessionID
}

// Save writes set fields with HSET and removes unset ones, so the hash
// mirrors the form exactly. A marker field keeps an all-empty form visible.
func (s *RedisStore) Save(ctx context.Context, sessionID string, values Values) error {
	key := formKey(sessionID)
	set := map[string]any{"_saved_at": time.Now().UTC().Format(time.RFC3339)}
	var unset []string
	for _, f := range Schema {
		if v := values[f]; v != nil {
			set[string(f)] = *v
		} else {
			unset = append(unset, string(f))
		}
	}
	_, err := s.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(unset) > 0 {
			p.HDel(ctx, key, unset...)
		}
		p.HSet(ctx, key, set)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, formKey(sessionID)).Err()
}
