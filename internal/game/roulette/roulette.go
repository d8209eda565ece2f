// Package roulette implements the single-shot European roulette spin: a
// 37-pocket wheel (0-36) with straight and even-money bet types.
package roulette

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"vegas-casino-service/internal/game"
)

// DefaultMaxBet is the maximum allowed bet for roulette.
const DefaultMaxBet = 1000

// Bet types.
const (
	BetStraight = "straight"
	BetRed      = "red"
	BetBlack    = "black"
	BetOdd      = "odd"
	BetEven     = "even"
)

// Payout multipliers applied to the bet on a win.
const (
	straightMultiplier  = 36
	evenMoneyMultiplier = 2
)

// redNumbers are the red pockets on a European wheel.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// Errors for roulette game.
var (
	ErrInvalidBet     = errors.New("bet amount must be positive")
	ErrBetTooHigh     = errors.New("bet exceeds maximum allowed")
	ErrInvalidBetType = errors.New("unknown bet type")
	ErrInvalidNumber  = errors.New("straight bet number must be between 0 and 36")
	ErrMissingNumber  = errors.New("straight bet requires a number")
)

// RouletteGame implements the Game interface for a wheel spin.
type RouletteGame struct {
	maxBet int64
	spin   func() int
}

// Config holds configuration for the roulette game.
type Config struct {
	MaxBet int64

	// Spin overrides the wheel for tests. Zero value samples uniformly in
	// [0,36].
	Spin func() int
}

// New creates a new RouletteGame with the given configuration.
func New(cfg *Config) *RouletteGame {
	maxBet := int64(DefaultMaxBet)
	spin := func() int { return rand.Intn(37) }

	if cfg != nil {
		if cfg.MaxBet > 0 {
			maxBet = cfg.MaxBet
		}
		if cfg.Spin != nil {
			spin = cfg.Spin
		}
	}

	return &RouletteGame{
		maxBet: maxBet,
		spin:   spin,
	}
}

// Name returns the game's display name.
func (r *RouletteGame) Name() string {
	return "European Roulette"
}

// Command returns the route segment that triggers this game.
func (r *RouletteGame) Command() string {
	return "roulette"
}

// Description returns a brief description of the game.
func (r *RouletteGame) Description() string {
	return "Spin a 37-pocket wheel: straight pays 36x, red/black/odd/even pay 2x"
}

// MaxBet returns the maximum allowed bet.
func (r *RouletteGame) MaxBet() int64 {
	return r.maxBet
}

// ValidateBet checks the bet amount, bet type, and straight number.
func (r *RouletteGame) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > r.maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, r.maxBet)
	}

	betType := extractBetType(params)
	switch betType {
	case BetRed, BetBlack, BetOdd, BetEven:
		return nil
	case BetStraight:
		number, ok := extractInt(params, "number")
		if !ok {
			return ErrMissingNumber
		}
		if number < 0 || number > 36 {
			return ErrInvalidNumber
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBetType, betType)
	}
}

// Play spins the wheel and settles the bet. Zero loses all even-money
// bets.
func (r *RouletteGame) Play(ctx context.Context, username string, bet int64, params map[string]any) (*game.Result, error) {
	if err := r.ValidateBet(bet, params); err != nil {
		return nil, err
	}

	betType := extractBetType(params)
	pocket := r.spin()

	var won bool
	var multiplier int64
	switch betType {
	case BetStraight:
		number, _ := extractInt(params, "number")
		won = pocket == number
		multiplier = straightMultiplier
	case BetRed:
		won = redNumbers[pocket]
		multiplier = evenMoneyMultiplier
	case BetBlack:
		won = pocket != 0 && !redNumbers[pocket]
		multiplier = evenMoneyMultiplier
	case BetOdd:
		won = pocket%2 == 1
		multiplier = evenMoneyMultiplier
	case BetEven:
		won = pocket != 0 && pocket%2 == 0
		multiplier = evenMoneyMultiplier
	}

	var payout int64
	result := "lose"
	if won {
		payout = bet * multiplier
		result = "win"
	}

	return &game.Result{
		Payout: payout,
		Win:    won,
		Result: result,
		Details: map[string]any{
			"pocket":  pocket,
			"color":   pocketColor(pocket),
			"betType": betType,
			"bet":     bet,
		},
	}, nil
}

// pocketColor names the pocket's color for the response payload.
func pocketColor(pocket int) string {
	switch {
	case pocket == 0:
		return "green"
	case redNumbers[pocket]:
		return "red"
	default:
		return "black"
	}
}

// extractBetType reads the bet type from params, defaulting to red.
func extractBetType(params map[string]any) string {
	if params == nil {
		return BetRed
	}
	if v, ok := params["betType"].(string); ok && v != "" {
		return v
	}
	return BetRed
}

// extractInt extracts an integer from the params map.
func extractInt(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}

	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}
