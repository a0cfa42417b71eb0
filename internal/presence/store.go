package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConnStore implements ConnStore and Locker on Redis. Set mutation and
// marker writes for one operation travel in a single pipeline, so
// concurrent connections for the same user can't lose updates.
type RedisConnStore struct {
	client *redis.Client
}

func NewRedisConnStore(client *redis.Client) *RedisConnStore {
	return &RedisConnStore{client: client}
}

var errRedisUnavailable = errors.New("redis unavailable")

func userConnsKey(userID uint64) string {
	return fmt.Sprintf("presence:user:%d:conns", userID)
}

func connMarkerKey(connID string) string {
	return "presence:conn:" + connID
}

func (s *RedisConnStore) Add(ctx context.Context, userID uint64, connID string, ttl time.Duration) error {
	if s.client == nil {
		return errRedisUnavailable
	}
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, userConnsKey(userID), connID)
	pipe.Set(ctx, connMarkerKey(connID), "1", ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisConnStore) Remove(ctx context.Context, userID uint64, connID string) error {
	if s.client == nil {
		return errRedisUnavailable
	}
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, userConnsKey(userID), connID)
	pipe.Del(ctx, connMarkerKey(connID))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisConnStore) Renew(ctx context.Context, connID string, ttl time.Duration) error {
	if s.client == nil {
		return errRedisUnavailable
	}
	return s.client.Expire(ctx, connMarkerKey(connID), ttl).Err()
}

func (s *RedisConnStore) Members(ctx context.Context, userID uint64) ([]string, error) {
	if s.client == nil {
		return nil, errRedisUnavailable
	}
	return s.client.SMembers(ctx, userConnsKey(userID)).Result()
}

func (s *RedisConnStore) Alive(ctx context.Context, connID string) (bool, error) {
	if s.client == nil {
		return false, errRedisUnavailable
	}
	n, err := s.client.Exists(ctx, connMarkerKey(connID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisConnStore) Prune(ctx context.Context, userID uint64, connID string) error {
	if s.client == nil {
		return errRedisUnavailable
	}
	return s.client.SRem(ctx, userConnsKey(userID), connID).Err()
}

// SetIfAbsent implements Locker with SET NX EX.
func (s *RedisConnStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.client == nil {
		return false, errRedisUnavailable
	}
	return s.client.SetNX(ctx, key, "1", ttl).Result()
}
