package blackjack

import (
	"math/rand"

	"vegas-casino-service/internal/model"
)

// Draw returns one card from an infinite-shuffle shoe: rank and suit are
// independent uniform samples, so draws are i.i.d. and no "cards
// remaining" state exists. Card counting is meaningless against this
// dealer.
func Draw() model.Card {
	return model.Card{
		Rank: rand.Intn(13) + 1,
		Suit: model.Suits[rand.Intn(len(model.Suits))],
	}
}
