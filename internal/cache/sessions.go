package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const BlacklistKeyPrefix = "blacklist:%s"

// BlacklistKey is the Redis key marking a session token id as revoked.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

// SessionBlacklist records revoked session token ids. A nil Redis client turns
// every method into a no-op so logout still works without Redis.
type SessionBlacklist struct {
	rdb *redis.Client
}

func NewSessionBlacklist(rdb *redis.Client) *SessionBlacklist {
	return &SessionBlacklist{rdb: rdb}
}

// Revoke blacklists jti until ttl elapses. Non-positive ttls are ignored since the token has expired.
func (b *SessionBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b == nil || b.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti has been blacklisted.
func (b *SessionBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b == nil || b.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := b.rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
