package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vegas-casino-service/internal/model"
)

func sampleRound() *model.Round {
	return &model.Round{
		ID: "round-1",
		PlayerHand: model.Hand{
			{Rank: 10, Suit: model.SuitHearts},
			{Rank: 9, Suit: model.SuitSpades},
		},
		DealerHand: model.Hand{
			{Rank: 5, Suit: model.SuitClubs},
			{Rank: 10, Suit: model.SuitDiamonds},
		},
		BetAmount: 100,
		Status:    model.StatusPlaying,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", sampleRound()))

	round, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "round-1", round.ID)
	assert.Equal(t, int64(100), round.BetAmount)
	assert.Len(t, round.PlayerHand, 2)
}

func TestMemoryStore_LoadMissing(t *testing.T) {
	store := NewMemoryStore(0)

	_, err := store.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", sampleRound()))
	require.NoError(t, store.Delete(ctx, "alice"))

	_, err := store.Load(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "alice"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", sampleRound()))

	_, err := store.Load(ctx, "alice")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = store.Load(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CopiesAreIsolated(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	original := sampleRound()
	require.NoError(t, store.Save(ctx, "alice", original))

	// Mutating the caller's round after saving must not leak in.
	original.PlayerHand = append(original.PlayerHand, model.Card{Rank: 2, Suit: model.SuitHearts})
	original.BetAmount = 999

	loaded, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, loaded.PlayerHand, 2)
	assert.Equal(t, int64(100), loaded.BetAmount)

	// Mutating a loaded round must not leak into the store.
	loaded.PlayerHand[0].Rank = 1

	again, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, again.PlayerHand[0].Rank)
}

func TestMemoryStore_PerUsernameIsolation(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	alice := sampleRound()
	bob := sampleRound()
	bob.ID = "round-2"
	bob.BetAmount = 500

	require.NoError(t, store.Save(ctx, "alice", alice))
	require.NoError(t, store.Save(ctx, "bob", bob))
	require.NoError(t, store.Delete(ctx, "alice"))

	round, err := store.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "round-2", round.ID)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "blackjack:game:alice", key("alice"))
}
