package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const resetKeyPrefix = "reset:"

// RedisResetStore keeps reset tokens as expiring keys. Expiry is enforced by
// the key TTL and GETDEL makes redemption single-use.
type RedisResetStore struct {
	Client *redis.Client
	Now    func() time.Time
}

func (s *RedisResetStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *RedisResetStore) key(tokenHash string) string {
	return resetKeyPrefix + tokenHash
}

func (s *RedisResetStore) SaveReset(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.Client.Set(ctx, s.key(tokenHash), accountID.String(), ttl).Err()
}

// ConsumeReset ignores now: the key TTL already decides liveness.
func (s *RedisResetStore) ConsumeReset(ctx context.Context, tokenHash string, _ time.Time) (uuid.UUID, error) {
	val, err := s.Client.GetDel(ctx, s.key(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrTokenNotFound
		}
		return uuid.Nil, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
