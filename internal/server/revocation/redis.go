package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "taskkeeper:revoked:"

// RedisDenylist stores revoked ids as keys whose TTL matches the remaining
// token lifetime, so Redis expires them on its own.
type RedisDenylist struct {
	client redis.Cmdable
	prefix string
}

func NewRedisDenylist(client redis.Cmdable) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: redisKeyPrefix}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.prefix+jti, "1", ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
