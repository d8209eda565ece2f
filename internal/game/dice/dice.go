// Package dice implements the single-shot dice game. The server rolls two
// dice; payout depends on the total alone.
package dice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"vegas-casino-service/internal/game"
)

// DefaultMaxBet is the maximum allowed bet for the dice game.
const DefaultMaxBet = 1000

// Errors for dice game.
var (
	ErrInvalidBet = errors.New("bet amount must be positive")
	ErrBetTooHigh = errors.New("bet exceeds maximum allowed")
)

// DiceGame implements the Game interface for a two-die roll.
type DiceGame struct {
	maxBet int64
	roll   func() int
}

// Config holds configuration for the dice game.
type Config struct {
	MaxBet int64

	// Roll overrides the die source for tests. Zero value rolls uniformly
	// in [1,6].
	Roll func() int
}

// New creates a new DiceGame with the given configuration.
func New(cfg *Config) *DiceGame {
	maxBet := int64(DefaultMaxBet)
	roll := func() int { return rand.Intn(6) + 1 }

	if cfg != nil {
		if cfg.MaxBet > 0 {
			maxBet = cfg.MaxBet
		}
		if cfg.Roll != nil {
			roll = cfg.Roll
		}
	}

	return &DiceGame{
		maxBet: maxBet,
		roll:   roll,
	}
}

// Name returns the game's display name.
func (d *DiceGame) Name() string {
	return "Dice Roll"
}

// Command returns the route segment that triggers this game.
func (d *DiceGame) Command() string {
	return "dice"
}

// Description returns a brief description of the game.
func (d *DiceGame) Description() string {
	return "Roll two dice: 2-6 lose, 7 push, 8-11 win even money, 12 pays 2:1"
}

// MaxBet returns the maximum allowed bet.
func (d *DiceGame) MaxBet() int64 {
	return d.maxBet
}

// ValidateBet checks if the bet amount is valid.
func (d *DiceGame) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > d.maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, d.maxBet)
	}
	return nil
}

// Play rolls the dice and settles the bet.
func (d *DiceGame) Play(ctx context.Context, username string, bet int64, params map[string]any) (*game.Result, error) {
	if err := d.ValidateBet(bet, params); err != nil {
		return nil, err
	}

	die1 := d.roll()
	die2 := d.roll()
	total := die1 + die2
	payout := Payout(total, bet)

	result := "lose"
	switch {
	case payout > 2*bet:
		result = "jackpot"
	case payout > bet:
		result = "win"
	case payout == bet:
		result = "push"
	}

	return &game.Result{
		Payout: payout,
		Win:    payout > bet,
		Result: result,
		Details: map[string]any{
			"die1":  die1,
			"die2":  die2,
			"total": total,
			"bet":   bet,
		},
	}, nil
}

// Payout maps a two-die total and bet to the total amount returned:
//   - total in [2,6]: 0 (lose)
//   - total = 7: bet (push)
//   - total in [8,11]: 2*bet (even money)
//   - total = 12: 3*bet (2:1)
func Payout(total int, bet int64) int64 {
	switch {
	case total <= 6:
		return 0
	case total == 7:
		return bet
	case total <= 11:
		return bet * 2
	default: // total == 12
		return bet * 3
	}
}
