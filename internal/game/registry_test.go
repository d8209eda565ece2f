package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGame struct {
	command string
}

func (f *fakeGame) Name() string                            { return "Fake " + f.command }
func (f *fakeGame) Command() string                         { return f.command }
func (f *fakeGame) Description() string                     { return "a test game" }
func (f *fakeGame) MaxBet() int64                           { return 100 }
func (f *fakeGame) ValidateBet(int64, map[string]any) error { return nil }

func (f *fakeGame) Play(ctx context.Context, username string, bet int64, params map[string]any) (*Result, error) {
	return &Result{Payout: bet, Result: "push"}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&fakeGame{command: "dice"}))
	require.NoError(t, r.Register(&fakeGame{command: "slots"}))

	g, ok := r.Get("dice")
	require.True(t, ok)
	assert.Equal(t, "dice", g.Command())

	_, ok = r.Get("poker")
	assert.False(t, ok)

	assert.Equal(t, 2, r.Count())
	assert.ElementsMatch(t, []string{"dice", "slots"}, r.Commands())
}

func TestRegistry_RegisterReplacesSameCommand(t *testing.T) {
	r := NewRegistry()

	first := &fakeGame{command: "dice"}
	second := &fakeGame{command: "dice"}

	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	g, ok := r.Get("dice")
	require.True(t, ok)
	assert.Same(t, second, g)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RejectsInvalidGames(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&fakeGame{command: ""}))
}
