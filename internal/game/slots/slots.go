// Package slots implements the single-shot slot machine: three
// independent reels, payout by matching symbols.
package slots

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"vegas-casino-service/internal/game"
)

// DefaultMaxBet is the maximum allowed bet for the slot machine.
const DefaultMaxBet = 1000

// Reel symbols. Seven is the jackpot symbol.
var symbols = []string{"cherry", "lemon", "orange", "plum", "bell", "bar", "seven"}

// Payout multipliers applied to the bet.
const (
	jackpotMultiplier = 50 // three sevens
	tripleMultiplier  = 10 // any other triple
	doubleMultiplier  = 5  // any pair
)

// Errors for slot game.
var (
	ErrInvalidBet = errors.New("bet amount must be positive")
	ErrBetTooHigh = errors.New("bet exceeds maximum allowed")
)

// SlotGame implements the Game interface for a three-reel spin.
type SlotGame struct {
	maxBet int64
	pick   func() string
}

// Config holds configuration for the slot game.
type Config struct {
	MaxBet int64

	// Pick overrides the reel source for tests. Zero value samples symbols
	// uniformly.
	Pick func() string
}

// New creates a new SlotGame with the given configuration.
func New(cfg *Config) *SlotGame {
	maxBet := int64(DefaultMaxBet)
	pick := func() string { return symbols[rand.Intn(len(symbols))] }

	if cfg != nil {
		if cfg.MaxBet > 0 {
			maxBet = cfg.MaxBet
		}
		if cfg.Pick != nil {
			pick = cfg.Pick
		}
	}

	return &SlotGame{
		maxBet: maxBet,
		pick:   pick,
	}
}

// Name returns the game's display name.
func (s *SlotGame) Name() string {
	return "Slot Machine"
}

// Command returns the route segment that triggers this game.
func (s *SlotGame) Command() string {
	return "slots"
}

// Description returns a brief description of the game.
func (s *SlotGame) Description() string {
	return "Spin three reels: three sevens 50x, any triple 10x, any pair 5x"
}

// MaxBet returns the maximum allowed bet.
func (s *SlotGame) MaxBet() int64 {
	return s.maxBet
}

// ValidateBet checks if the bet amount is valid.
func (s *SlotGame) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > s.maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, s.maxBet)
	}
	return nil
}

// Play spins the reels and settles the bet.
func (s *SlotGame) Play(ctx context.Context, username string, bet int64, params map[string]any) (*game.Result, error) {
	if err := s.ValidateBet(bet, params); err != nil {
		return nil, err
	}

	reels := []string{s.pick(), s.pick(), s.pick()}
	multiplier := Multiplier(reels)
	payout := bet * multiplier

	result := "lose"
	switch {
	case multiplier >= jackpotMultiplier:
		result = "jackpot"
	case multiplier > 0:
		result = "win"
	}

	return &game.Result{
		Payout: payout,
		Win:    payout > 0,
		Result: result,
		Details: map[string]any{
			"reels":      reels,
			"multiplier": multiplier,
			"bet":        bet,
		},
	}, nil
}

// Multiplier maps a three-reel outcome to its payout multiplier.
func Multiplier(reels []string) int64 {
	if len(reels) != 3 {
		return 0
	}
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		if reels[0] == "seven" {
			return jackpotMultiplier
		}
		return tripleMultiplier
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		return doubleMultiplier
	default:
		return 0
	}
}
