// Package flag provides feature toggle lookups. Toggles are treated as
// eventually consistent and are read fresh on every game action.
package flag

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// keyPrefix namespaces flag keys in the shared store.
const keyPrefix = "flag:"

// Provider resolves feature toggles by key, returning the default when the
// flag is unset or the backend is unreachable.
type Provider interface {
	Bool(ctx context.Context, key string, def bool) bool
}

// RedisProvider reads flags from Redis. Values "1" and "true" are truthy,
// "0" and "false" are falsy; anything else falls back to the default.
type RedisProvider struct {
	client *redis.Client
}

// NewRedisProvider creates a RedisProvider.
func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{client: client}
}

// Bool resolves a boolean flag.
func (p *RedisProvider) Bool(ctx context.Context, key string, def bool) bool {
	val, err := p.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("flag", key).Msg("Flag lookup failed, using default")
		}
		return def
	}

	switch val {
	case "1", "true":
		return true
	case "0", "false":
		return false
	default:
		log.Warn().Str("flag", key).Str("value", val).Msg("Unrecognized flag value, using default")
		return def
	}
}

// Static is a fixed in-memory Provider for tests and local runs.
type Static map[string]bool

// Bool resolves a boolean flag from the static map.
func (s Static) Bool(ctx context.Context, key string, def bool) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}
