package invite

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry tracks redeemed invite token IDs so a token can only be used
// once when single-use mode is on.
type Registry interface {
	// MarkUsed records the token ID and reports whether this was its first
	// use. The entry expires with the token, after which replay is impossible
	// anyway.
	MarkUsed(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// RedisRegistry implements Registry on Redis with SET NX, so concurrent
// redemptions of the same token race safely: exactly one wins.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry creates a Redis-backed invite registry.
func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func registryKey(jti string) string {
	return "invite:used:" + jti
}

// MarkUsed records the token ID atomically.
func (r *RedisRegistry) MarkUsed(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}

	first, err := r.client.SetNX(ctx, registryKey(jti), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark invite used: %w", err)
	}

	return first, nil
}
