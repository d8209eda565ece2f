// Package model defines the data models shared across the casino service.
package model

import "time"

// Suit identifies one of the four card suits.
type Suit string

// Card suits, serialized as their unicode glyphs so the frontend can
// render them directly.
const (
	SuitHearts   Suit = "♥"
	SuitDiamonds Suit = "♦"
	SuitClubs    Suit = "♣"
	SuitSpades   Suit = "♠"
)

// Suits lists all four suits in a stable order.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Card is a single playing card. Rank 1 is the ace, 11/12/13 are
// jack/queen/king. Cards are immutable once drawn.
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

// Hand is an ordered sequence of cards. Cards are only ever appended
// during a round.
type Hand []Card

// RoundStatus is the lifecycle state of a blackjack round.
type RoundStatus string

const (
	StatusPlaying    RoundStatus = "playing"
	StatusDealerTurn RoundStatus = "dealer_turn"
	StatusFinished   RoundStatus = "finished"

	// StatusNoState is never persisted; it is the synthetic status returned
	// when Stand is called without an active round.
	StatusNoState RoundStatus = "no_state"
)

// RoundResult is the terminal outcome of a round.
type RoundResult string

const (
	ResultBlackjack RoundResult = "blackjack"
	ResultWin       RoundResult = "win"
	ResultPush      RoundResult = "push"
	ResultLose      RoundResult = "lose"
	ResultBust      RoundResult = "bust"

	// ResultNoActiveGame pairs with StatusNoState in the soft Stand response.
	ResultNoActiveGame RoundResult = "no_active_game"
)

// Round is the persisted state of one blackjack round, keyed by username.
// At most one round exists per username at a time; a new Deal supersedes
// any prior round.
type Round struct {
	ID          string      `json:"id"`
	PlayerHand  Hand        `json:"playerHand"`
	DealerHand  Hand        `json:"dealerHand"`
	BetAmount   int64       `json:"betAmount"`
	Status      RoundStatus `json:"status"`
	Result      RoundResult `json:"result,omitempty"`
	Payout      int64       `json:"payout"`
	PlayerScore int         `json:"playerScore,omitempty"`
	DealerScore int         `json:"dealerScore,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Finished reports whether the round has reached its terminal state.
func (r *Round) Finished() bool {
	return r.Status == StatusFinished
}

// GameRecord is the payload sent to the scoring sink after a game
// resolves. Delivery is fire-and-forget; duplicates are acceptable.
type GameRecord struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Game      string         `json:"game"`
	Action    string         `json:"action"`
	BetAmount int64          `json:"betAmount"`
	Payout    int64          `json:"payout"`
	Win       bool           `json:"win"`
	Result    string         `json:"result"`
	GameData  map[string]any `json:"gameData,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// User represents a player account tracked by the service.
type User struct {
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameResult is a stored row in the game_results table.
type GameResult struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Game      string    `db:"game"`
	Action    string    `db:"action"`
	BetAmount int64     `db:"bet_amount"`
	Payout    int64     `db:"payout"`
	Win       bool      `db:"win"`
	Result    string    `db:"result"`
	GameData  []byte    `db:"game_data"`
	CreatedAt time.Time `db:"created_at"`
}
