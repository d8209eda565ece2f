// Package blackjack implements the server-authoritative blackjack round
// state machine. A round moves playing -> dealer_turn -> finished and
// never leaves finished; all hand evaluation and payout determination
// happens here, with the client holding no authoritative state.
package blackjack

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vegas-casino-service/internal/flag"
	"vegas-casino-service/internal/model"
	"vegas-casino-service/internal/pkg/lock"
	"vegas-casino-service/internal/scoring"
	"vegas-casino-service/internal/session"
)

// Feature toggle keys, read fresh on every action.
const (
	FlagDoubleDown     = "blackjack.double-down"
	FlagHouseAdvantage = "casino.house-advantage"
)

const (
	// GameName identifies blackjack in scoring records and metrics.
	GameName = "blackjack"

	// defaultBet is used when Deal receives a non-positive bet. A fallback,
	// not an enforced floor.
	defaultBet = 10

	// dealerStandScore: the dealer draws while below this total and stands
	// on anything at or above it, soft 17 included.
	dealerStandScore = 17

	// defaultDeleteDelay keeps a finished round readable long enough for a
	// late duplicate fetch before the explicit delete. The store TTL is the
	// real backstop.
	defaultDeleteDelay = 30 * time.Second

	// houseEdgeChance is the probability that an enabled house-advantage
	// toggle converts a single win resolution into a loss. Independent per
	// resolution; never applied to bust, push, or lose outcomes.
	houseEdgeChance = 0.25
)

// Errors for blackjack actions.
var (
	ErrNoRound            = errors.New("no active round")
	ErrInvalidState       = errors.New("invalid round state")
	ErrNoPlayerCards      = errors.New("no player cards in round")
	ErrNotTwoCards        = errors.New("double down requires exactly two cards")
	ErrDoubleDownDisabled = errors.New("double down is disabled")
	ErrNotPersisted       = errors.New("round state could not be persisted")
)

// Config holds the collaborators and tunables for a Table.
type Config struct {
	Store session.Store
	Sink  scoring.Sink
	Flags flag.Provider

	// DeleteDelay overrides the post-finish delayed delete. Zero means
	// defaultDeleteDelay.
	DeleteDelay time.Duration

	// Draw overrides the card source. Zero value draws from the infinite
	// shoe.
	Draw func() model.Card

	// Coin overrides the house-advantage randomness source. Zero value uses
	// math/rand.
	Coin func() float64
}

// Table runs blackjack rounds. Each action loads the round from the
// session store, applies the transition in memory, and saves once; a
// failed save fails the action. Actions for the same username are
// serialized by a per-username lock.
type Table struct {
	store session.Store
	sink  scoring.Sink
	flags flag.Provider

	draw        func() model.Card
	coin        func() float64
	deleteDelay time.Duration

	locks *lock.UserLock

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// New creates a Table.
func New(cfg Config) *Table {
	t := &Table{
		store:       cfg.Store,
		sink:        cfg.Sink,
		flags:       cfg.Flags,
		draw:        cfg.Draw,
		coin:        cfg.Coin,
		deleteDelay: cfg.DeleteDelay,
		locks:       lock.NewUserLock(),
		timers:      make(map[string]*time.Timer),
	}
	if t.sink == nil {
		t.sink = scoring.Nop{}
	}
	if t.flags == nil {
		t.flags = flag.Static{}
	}
	if t.draw == nil {
		t.draw = Draw
	}
	if t.coin == nil {
		t.coin = rand.Float64
	}
	if t.deleteDelay <= 0 {
		t.deleteDelay = defaultDeleteDelay
	}
	return t
}

// DealResult is the response payload for Deal. The full dealer hand is
// included even while the round is in play; concealment of the hole card
// is expressed only through DealerScore, which counts the first card
// alone until the round finishes.
type DealResult struct {
	PlayerHand  model.Hand        `json:"playerHand"`
	DealerHand  model.Hand        `json:"dealerHand"`
	PlayerScore int               `json:"playerScore"`
	DealerScore int               `json:"dealerScore"`
	BetAmount   int64             `json:"betAmount"`
	Status      model.RoundStatus `json:"gameStatus"`
	Result      model.RoundResult `json:"result,omitempty"`
	Payout      int64             `json:"payout"`
}

// HitResult is the response payload for Hit.
type HitResult struct {
	NewCard     model.Card        `json:"newCard"`
	PlayerHand  model.Hand        `json:"playerHand"`
	PlayerScore int               `json:"playerScore"`
	DealerScore int               `json:"dealerScore"`
	Status      model.RoundStatus `json:"gameStatus"`
	Result      model.RoundResult `json:"result,omitempty"`
	Payout      int64             `json:"payout"`
}

// StandResult is the response payload for Stand.
type StandResult struct {
	DealerFinalHand model.Hand        `json:"dealerFinalHand"`
	PlayerHand      model.Hand        `json:"playerHand"`
	DealerScore     int               `json:"dealerScore"`
	PlayerScore     int               `json:"playerScore"`
	Status          model.RoundStatus `json:"gameStatus"`
	Result          model.RoundResult `json:"result"`
	Payout          int64             `json:"payout"`
}

// DoubleResult is the response payload for Double. AdditionalBet is the
// extra stake the caller must debit, equal to the pre-double bet.
type DoubleResult struct {
	NewCard         model.Card        `json:"newCard"`
	PlayerHand      model.Hand        `json:"playerHand"`
	DealerFinalHand model.Hand        `json:"dealerFinalHand"`
	PlayerScore     int               `json:"playerScore"`
	DealerScore     int               `json:"dealerScore"`
	AdditionalBet   int64             `json:"additionalBet"`
	Status          model.RoundStatus `json:"gameStatus"`
	Result          model.RoundResult `json:"result,omitempty"`
	Payout          int64             `json:"payout"`
}

// Deal starts a new round for the username, superseding any existing one.
// A non-positive bet falls back to the default. Natural blackjacks are
// resolved within the same call and never leave the round in play.
func (t *Table) Deal(ctx context.Context, username string, betAmount int64) (*DealResult, error) {
	if betAmount <= 0 {
		betAmount = defaultBet
	}

	var result *DealResult
	err := t.locks.WithLock(username, func() error {
		t.cancelDelete(username)

		round := &model.Round{
			ID:         uuid.NewString(),
			PlayerHand: model.Hand{t.draw(), t.draw()},
			DealerHand: model.Hand{t.draw(), t.draw()},
			BetAmount:  betAmount,
			Status:     model.StatusPlaying,
			CreatedAt:  time.Now().UTC(),
		}

		playerScore := Score(round.PlayerHand)
		round.PlayerScore = playerScore
		dealerScore := visibleScore(round.DealerHand)

		if IsNaturalBlackjack(round.PlayerHand) {
			round.Status = model.StatusFinished
			dealerScore = Score(round.DealerHand)
			round.DealerScore = dealerScore

			if IsNaturalBlackjack(round.DealerHand) {
				round.Result = model.ResultPush
				round.Payout = betAmount
			} else {
				round.Result = model.ResultBlackjack
				round.Payout = naturalPayout(betAmount)
				// Independent coin flip, separate from the one in resolve.
				if t.flags.Bool(ctx, FlagHouseAdvantage, false) && t.coin() < houseEdgeChance {
					round.Result = model.ResultLose
					round.Payout = 0
					log.Info().Str("username", username).Msg("House advantage applied: natural blackjack converted to loss")
				}
			}
		}

		if err := t.store.Save(ctx, username, round); err != nil {
			log.Error().Err(err).Str("username", username).Msg("Failed to save round after deal")
			return fmt.Errorf("%w: %v", ErrNotPersisted, err)
		}

		if round.Finished() {
			t.recordRound(username, "deal", round)
		}

		result = &DealResult{
			PlayerHand:  round.PlayerHand,
			DealerHand:  round.DealerHand,
			PlayerScore: playerScore,
			DealerScore: dealerScore,
			BetAmount:   betAmount,
			Status:      round.Status,
			Result:      round.Result,
			Payout:      round.Payout,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("username", username).
		Int64("bet_amount", betAmount).
		Int("player_score", result.PlayerScore).
		Str("status", string(result.Status)).
		Msg("Blackjack deal")
	return result, nil
}

// Hit draws one card into the player's hand. A bust finishes the round;
// reaching exactly 21 does not auto-stand, the caller is expected to call
// Stand next.
func (t *Table) Hit(ctx context.Context, username string) (*HitResult, error) {
	var result *HitResult
	err := t.locks.WithLock(username, func() error {
		round, err := t.store.Load(ctx, username)
		if err != nil {
			return fmt.Errorf("%w: hit", ErrNoRound)
		}
		if round.Status != model.StatusPlaying {
			return fmt.Errorf("%w: status is %q, expected %q", ErrInvalidState, round.Status, model.StatusPlaying)
		}
		if len(round.PlayerHand) == 0 {
			return ErrNoPlayerCards
		}

		newCard := t.draw()
		round.PlayerHand = append(round.PlayerHand, newCard)
		playerScore := Score(round.PlayerHand)
		round.PlayerScore = playerScore
		dealerScore := visibleScore(round.DealerHand)

		if playerScore > blackjackTarget {
			round.Status = model.StatusFinished
			round.Result = model.ResultBust
			round.Payout = 0
			round.DealerScore = Score(round.DealerHand)
			dealerScore = round.DealerScore
		}

		if err := t.store.Save(ctx, username, round); err != nil {
			log.Error().Err(err).Str("username", username).Msg("Failed to save round after hit")
			return fmt.Errorf("%w: %v", ErrNotPersisted, err)
		}

		if round.Finished() {
			t.scheduleDelete(username)
			t.recordRound(username, "hit", round)
		}

		result = &HitResult{
			NewCard:     newCard,
			PlayerHand:  round.PlayerHand,
			PlayerScore: playerScore,
			DealerScore: dealerScore,
			Status:      round.Status,
			Result:      round.Result,
			Payout:      round.Payout,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("username", username).
		Int("player_score", result.PlayerScore).
		Str("status", string(result.Status)).
		Msg("Blackjack hit")
	return result, nil
}

// Stand ends the player's turn and plays out the dealer's hand.
//
// Two caller mistakes get success-shaped responses: a missing
// round returns the no_active_game sentinel so late duplicate calls don't
// hard-fail, and a finished round replays its stored result without
// re-running dealer logic (idempotence against double submission).
func (t *Table) Stand(ctx context.Context, username string) (*StandResult, error) {
	var result *StandResult
	err := t.locks.WithLock(username, func() error {
		round, err := t.store.Load(ctx, username)
		if err != nil {
			log.Warn().Str("username", username).Msg("Stand without active round, returning sentinel response")
			result = &StandResult{
				DealerFinalHand: model.Hand{},
				PlayerHand:      model.Hand{},
				Status:          model.StatusNoState,
				Result:          model.ResultNoActiveGame,
				Payout:          0,
			}
			return nil
		}

		if round.Finished() {
			playerScore := round.PlayerScore
			if playerScore == 0 {
				playerScore = Score(round.PlayerHand)
			}
			dealerScore := round.DealerScore
			if dealerScore == 0 {
				dealerScore = Score(round.DealerHand)
			}
			result = &StandResult{
				DealerFinalHand: round.DealerHand,
				PlayerHand:      round.PlayerHand,
				DealerScore:     dealerScore,
				PlayerScore:     playerScore,
				Status:          round.Status,
				Result:          round.Result,
				Payout:          round.Payout,
			}
			return nil
		}

		if round.Status != model.StatusPlaying {
			return fmt.Errorf("%w: status is %q, expected %q", ErrInvalidState, round.Status, model.StatusPlaying)
		}
		if len(round.PlayerHand) == 0 {
			return ErrNoPlayerCards
		}

		round.Status = model.StatusDealerTurn
		t.playDealer(round)

		playerScore := Score(round.PlayerHand)
		dealerScore := Score(round.DealerHand)
		res, payout := t.resolve(ctx, username, playerScore, dealerScore, round.BetAmount)

		round.Status = model.StatusFinished
		round.Result = res
		round.Payout = payout
		round.PlayerScore = playerScore
		round.DealerScore = dealerScore

		if err := t.store.Save(ctx, username, round); err != nil {
			log.Error().Err(err).Str("username", username).Msg("Failed to save round after stand")
			return fmt.Errorf("%w: %v", ErrNotPersisted, err)
		}

		t.scheduleDelete(username)
		t.recordRound(username, "stand", round)

		result = &StandResult{
			DealerFinalHand: round.DealerHand,
			PlayerHand:      round.PlayerHand,
			DealerScore:     dealerScore,
			PlayerScore:     playerScore,
			Status:          round.Status,
			Result:          res,
			Payout:          payout,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("username", username).
		Int("player_score", result.PlayerScore).
		Int("dealer_score", result.DealerScore).
		Str("result", string(result.Result)).
		Int64("payout", result.Payout).
		Msg("Blackjack stand")
	return result, nil
}

// Double doubles the bet in exchange for exactly one more card, then
// forces a stand. Only legal on the initial two-card hand, and only while
// the double-down toggle is enabled.
func (t *Table) Double(ctx context.Context, username string) (*DoubleResult, error) {
	var result *DoubleResult
	err := t.locks.WithLock(username, func() error {
		round, err := t.store.Load(ctx, username)
		if err != nil {
			return fmt.Errorf("%w: double", ErrNoRound)
		}
		if round.Status != model.StatusPlaying {
			return fmt.Errorf("%w: status is %q, expected %q", ErrInvalidState, round.Status, model.StatusPlaying)
		}
		if len(round.PlayerHand) != 2 {
			return fmt.Errorf("%w: hand has %d cards", ErrNotTwoCards, len(round.PlayerHand))
		}
		if !t.flags.Bool(ctx, FlagDoubleDown, true) {
			return ErrDoubleDownDisabled
		}

		additionalBet := round.BetAmount
		round.BetAmount *= 2

		newCard := t.draw()
		round.PlayerHand = append(round.PlayerHand, newCard)
		playerScore := Score(round.PlayerHand)
		round.PlayerScore = playerScore

		if playerScore > blackjackTarget {
			round.Status = model.StatusFinished
			round.Result = model.ResultBust
			round.Payout = 0
			round.DealerScore = Score(round.DealerHand)
		} else {
			round.Status = model.StatusDealerTurn
			t.playDealer(round)

			dealerScore := Score(round.DealerHand)
			res, payout := t.resolve(ctx, username, playerScore, dealerScore, round.BetAmount)

			round.Status = model.StatusFinished
			round.Result = res
			round.Payout = payout
			round.DealerScore = dealerScore
		}

		if err := t.store.Save(ctx, username, round); err != nil {
			log.Error().Err(err).Str("username", username).Msg("Failed to save round after double")
			return fmt.Errorf("%w: %v", ErrNotPersisted, err)
		}

		t.scheduleDelete(username)
		t.recordRound(username, "double", round)

		result = &DoubleResult{
			NewCard:         newCard,
			PlayerHand:      round.PlayerHand,
			DealerFinalHand: round.DealerHand,
			PlayerScore:     playerScore,
			DealerScore:     round.DealerScore,
			AdditionalBet:   additionalBet,
			Status:          round.Status,
			Result:          round.Result,
			Payout:          round.Payout,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("username", username).
		Int64("additional_bet", result.AdditionalBet).
		Str("result", string(result.Result)).
		Int64("payout", result.Payout).
		Msg("Blackjack double")
	return result, nil
}

// playDealer draws for the dealer until the hand reaches the stand score.
// The dealer stands on soft 17: the draw condition is the flat total, not
// the hard/soft distinction.
func (t *Table) playDealer(round *model.Round) {
	for Score(round.DealerHand) < dealerStandScore {
		round.DealerHand = append(round.DealerHand, t.draw())
	}
}

// resolve applies the pure payout policy, then the house-advantage
// override on wins only.
func (t *Table) resolve(ctx context.Context, username string, playerScore, dealerScore int, bet int64) (model.RoundResult, int64) {
	result, payout := Resolve(playerScore, dealerScore, bet)
	if result == model.ResultWin && t.flags.Bool(ctx, FlagHouseAdvantage, false) && t.coin() < houseEdgeChance {
		log.Info().Str("username", username).Msg("House advantage applied: win converted to loss")
		return model.ResultLose, 0
	}
	return result, payout
}

// recordRound fires a best-effort scoring record for a finished round.
func (t *Table) recordRound(username, action string, round *model.Round) {
	scoring.Dispatch(t.sink, model.GameRecord{
		ID:        uuid.NewString(),
		Username:  username,
		Game:      GameName,
		Action:    action,
		BetAmount: round.BetAmount,
		Payout:    round.Payout,
		Win:       round.Result == model.ResultWin || round.Result == model.ResultBlackjack,
		Result:    string(round.Result),
		GameData: map[string]any{
			"roundId":     round.ID,
			"playerHand":  round.PlayerHand,
			"dealerHand":  round.DealerHand,
			"playerScore": round.PlayerScore,
			"dealerScore": round.DealerScore,
		},
	})
}

// scheduleDelete arranges the post-finish cleanup of the round. The store
// TTL is the real backstop; this only bounds how long finished rounds
// linger. An existing timer is replaced.
func (t *Table) scheduleDelete(username string) {
	t.timersMu.Lock()
	defer t.timersMu.Unlock()

	if timer, ok := t.timers[username]; ok {
		timer.Stop()
	}
	t.timers[username] = time.AfterFunc(t.deleteDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.store.Delete(ctx, username); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("Failed to delete finished round")
		}
		t.timersMu.Lock()
		delete(t.timers, username)
		t.timersMu.Unlock()
	})
}

// cancelDelete stops a pending cleanup when a new Deal supersedes the
// finished round.
func (t *Table) cancelDelete(username string) {
	t.timersMu.Lock()
	defer t.timersMu.Unlock()

	if timer, ok := t.timers[username]; ok {
		timer.Stop()
		delete(t.timers, username)
	}
}
