// Package game defines the common interface and registry for the
// stateless minigames. One request is one outcome: these games keep no
// session state between calls.
package game

import "context"

// Result is the outcome of a single play.
type Result struct {
	// Payout is the total amount returned to the player, stake included.
	// Zero means the bet is lost; Payout == bet is a push.
	Payout  int64
	Win     bool
	Result  string
	Details map[string]any
}

// Game is implemented by each stateless minigame.
type Game interface {
	// Name returns the game's display name (e.g., "Slot Machine").
	Name() string

	// Command returns the route segment that triggers this game (e.g., "slots").
	Command() string

	// Description returns a brief description of the game.
	Description() string

	// ValidateBet checks the bet amount and game-specific parameters.
	ValidateBet(bet int64, params map[string]any) error

	// MaxBet returns the maximum allowed bet, 0 for no maximum.
	MaxBet() int64

	// Play executes one round and returns the result.
	Play(ctx context.Context, username string, bet int64, params map[string]any) (*Result, error)
}
