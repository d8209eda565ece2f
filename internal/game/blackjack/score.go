package blackjack

import "vegas-casino-service/internal/model"

// blackjackTarget is the score a hand must not exceed.
const blackjackTarget = 21

// Score computes the best blackjack total for a hand. Aces count as 11
// and are softened to 1, one at a time, while the total exceeds 21. Face
// cards count as 10. The result may exceed 21 (bust) once no soft aces
// remain.
func Score(hand model.Hand) int {
	score := 0
	aces := 0
	for _, c := range hand {
		switch {
		case c.Rank == 1:
			aces++
			score += 11
		case c.Rank > 10:
			score += 10
		default:
			score += c.Rank
		}
	}
	for score > blackjackTarget && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// IsNaturalBlackjack reports whether the hand is a two-card 21.
func IsNaturalBlackjack(hand model.Hand) bool {
	return len(hand) == 2 && Score(hand) == blackjackTarget
}

// visibleScore is the dealer score exposed to the player while the round
// is still in play: only the first card counts.
func visibleScore(hand model.Hand) int {
	if len(hand) == 0 {
		return 0
	}
	return Score(hand[:1])
}
