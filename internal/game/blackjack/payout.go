package blackjack

import "vegas-casino-service/internal/model"

// Resolve maps final scores and the current bet to a result and total
// payout (stake plus winnings). It is a pure function; the house
// advantage override is applied by the caller.
func Resolve(playerScore, dealerScore int, bet int64) (model.RoundResult, int64) {
	switch {
	case playerScore > blackjackTarget:
		return model.ResultBust, 0
	case dealerScore > blackjackTarget:
		return model.ResultWin, bet * 2
	case playerScore > dealerScore:
		return model.ResultWin, bet * 2
	case playerScore == dealerScore:
		return model.ResultPush, bet
	default:
		return model.ResultLose, 0
	}
}

// naturalPayout is the total returned on a natural blackjack:
// floor(bet * 2.5), the 3:2 premium on top of the stake.
func naturalPayout(bet int64) int64 {
	return bet * 5 / 2
}
