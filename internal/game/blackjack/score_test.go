package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"vegas-casino-service/internal/model"
)

func card(rank int) model.Card {
	return model.Card{Rank: rank, Suit: model.SuitSpades}
}

func hand(ranks ...int) model.Hand {
	h := make(model.Hand, 0, len(ranks))
	for _, r := range ranks {
		h = append(h, card(r))
	}
	return h
}

// TestScore exercises ace softening and face-card valuation.
func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		hand     model.Hand
		expected int
	}{
		{"empty hand", hand(), 0},
		{"single seven", hand(7), 7},
		{"ace counts eleven", hand(1, 5), 16},
		{"ace plus ten is twenty-one", hand(1, 10), 21},
		{"ace plus king is twenty-one", hand(1, 13), 21},
		{"two aces soften once", hand(1, 1), 12},
		{"two aces plus nine", hand(1, 1, 9), 21},
		{"face cards count ten", hand(11, 12), 20},
		{"hard bust", hand(10, 10, 5), 25},
		{"ace softens to avoid bust", hand(1, 10, 5), 16},
		{"all four aces", hand(1, 1, 1, 1), 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.hand))
		})
	}
}

// TestIsNaturalBlackjack checks that only two-card 21s qualify.
func TestIsNaturalBlackjack(t *testing.T) {
	tests := []struct {
		name     string
		hand     model.Hand
		expected bool
	}{
		{"ace and king", hand(1, 13), true},
		{"ten and ace", hand(10, 1), true},
		{"three-card twenty-one", hand(7, 7, 7), false},
		{"two cards short of twenty-one", hand(1, 9), false},
		{"single ace", hand(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNaturalBlackjack(tt.hand))
		})
	}
}

// TestVisibleScore checks that only the first dealer card is exposed
// while the round is in play.
func TestVisibleScore(t *testing.T) {
	assert.Equal(t, 0, visibleScore(hand()))
	assert.Equal(t, 10, visibleScore(hand(13, 9)))
	assert.Equal(t, 11, visibleScore(hand(1, 10)))
	assert.Equal(t, 4, visibleScore(hand(4, 1, 10)))
}

// TestScoreSofteningProperty verifies the score is always the hard total
// or exactly one soft ace above it, and that the soft form is only kept
// while it does not bust.
func TestScoreSofteningProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(t, "cards")
		h := make(model.Hand, 0, n)
		hard := 0
		for i := 0; i < n; i++ {
			rank := rapid.IntRange(1, 13).Draw(t, "rank")
			h = append(h, card(rank))
			switch {
			case rank > 10:
				hard += 10
			default:
				hard += rank
			}
		}

		score := Score(h)
		if score != hard && score != hard+10 {
			t.Fatalf("Score(%v)=%d, expected hard total %d or soft total %d", h, score, hard, hard+10)
		}
		if score == hard+10 && score > blackjackTarget {
			t.Fatalf("Score(%v)=%d keeps a soft ace past %d", h, score, blackjackTarget)
		}
	})
}
