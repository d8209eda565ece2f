// Package scoring records resolved game outcomes. Recording is
// best-effort: failures are logged and never affect the player-facing
// response.
package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"vegas-casino-service/internal/model"
	"vegas-casino-service/internal/repository"
)

// Sink accepts game records. Implementations must tolerate duplicate
// records; idempotency is not required.
type Sink interface {
	Record(ctx context.Context, rec model.GameRecord) error
}

// recordTimeout bounds the detached recording call.
const recordTimeout = 5 * time.Second

// Dispatch sends a record to the sink in a detached goroutine. The call
// does not inherit the request context: the record must outlive the
// response that triggered it.
func Dispatch(sink Sink, rec model.GameRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := sink.Record(ctx, rec); err != nil {
			log.Warn().
				Err(err).
				Str("username", rec.Username).
				Str("game", rec.Game).
				Str("action", rec.Action).
				Msg("Failed to record game result")
		}
	}()
}

// PostgresSink stores records in the game_results table and settles the
// player's balance by the net outcome.
type PostgresSink struct {
	users   *repository.UserRepository
	results *repository.ResultRepository
}

// NewPostgresSink creates a PostgresSink.
func NewPostgresSink(users *repository.UserRepository, results *repository.ResultRepository) *PostgresSink {
	return &PostgresSink{users: users, results: results}
}

// Record inserts the result row and applies payout minus bet to the
// player's balance, provisioning the account on first sight.
func (s *PostgresSink) Record(ctx context.Context, rec model.GameRecord) error {
	if _, _, err := s.users.GetOrCreate(ctx, rec.Username); err != nil {
		return err
	}

	if _, err := s.results.Create(ctx, &rec); err != nil {
		return err
	}

	net := rec.Payout - rec.BetAmount
	if net != 0 {
		if _, err := s.users.UpdateBalance(ctx, rec.Username, net); err != nil {
			return err
		}
	}
	return nil
}

// Nop discards all records. Used in tests and when no scoring backend is
// configured.
type Nop struct{}

// Record implements Sink.
func (Nop) Record(ctx context.Context, rec model.GameRecord) error { return nil }
