// Package session persists blackjack rounds in an external key-value
// store, keyed by username with a fixed expiry.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"vegas-casino-service/internal/model"
)

// keyPrefix namespaces round keys in the shared store.
const keyPrefix = "blackjack:game:"

// DefaultTTL bounds leaked state from abandoned sessions. It is refreshed
// on every save.
const DefaultTTL = time.Hour

// ErrNotFound is returned when no round exists for a username. Store read
// failures are also reported as ErrNotFound: a round the store cannot
// produce is treated as absent, never as an ambiguous state.
var ErrNotFound = errors.New("no round found")

// Store loads, saves, and deletes the serialized round for a username.
type Store interface {
	Load(ctx context.Context, username string) (*model.Round, error)
	Save(ctx context.Context, username string, round *model.Round) error
	Delete(ctx context.Context, username string) error
}

// RedisStore is the production Store backed by Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A zero ttl falls back to DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(username string) string {
	return keyPrefix + username
}

// Load fetches and decodes the round for a username.
func (s *RedisStore) Load(ctx context.Context, username string) (*model.Round, error) {
	val, err := s.client.Get(ctx, key(username)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("username", username).Msg("Redis read failed, treating round as absent")
		}
		return nil, ErrNotFound
	}

	var round model.Round
	if err := json.Unmarshal([]byte(val), &round); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Corrupt round state in Redis")
		return nil, ErrNotFound
	}
	return &round, nil
}

// Save serializes the round and writes it with a refreshed TTL.
func (s *RedisStore) Save(ctx context.Context, username string, round *model.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to encode round: %w", err)
	}
	if err := s.client.Set(ctx, key(username), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// Delete removes the round for a username. Best effort; missing keys are
// not an error.
func (s *RedisStore) Delete(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, key(username)).Err(); err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return nil
}
