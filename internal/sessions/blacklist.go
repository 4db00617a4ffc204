package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist stores revoked session tokens in Redis until their natural
// expiry. A nil Blacklist (or one without a client) disables revocation:
// logout then only discards the token client-side.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(c *redis.Client) *Blacklist {
	return &Blacklist{client: c}
}

func (b *Blacklist) key(token string) string {
	return "blacklist:token:" + token
}

// Revoke marks the token revoked for ttl. No-op without a Redis client.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if b == nil || b.client == nil {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.key(token), "1", ttl).Err()
}

// IsRevoked reports whether the token has been revoked. Without a Redis
// client it always reports false.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	n, err := b.client.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
