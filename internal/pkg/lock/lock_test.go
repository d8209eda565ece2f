package lock

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestUserLock_MutualExclusion(t *testing.T) {
	ul := NewUserLock()

	const goroutines = 50
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ul.Lock("alice")
			counter++
			ul.Unlock("alice")
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestUserLock_DifferentUsersDoNotContend(t *testing.T) {
	ul := NewUserLock()

	ul.Lock("alice")
	defer ul.Unlock("alice")

	// A different username must still be acquirable.
	require.True(t, ul.TryLock("bob"))
	ul.Unlock("bob")
}

func TestUserLock_TryLock(t *testing.T) {
	ul := NewUserLock()

	require.True(t, ul.TryLock("alice"))
	assert.False(t, ul.TryLock("alice"), "second TryLock on a held lock must fail")
	ul.Unlock("alice")
	assert.True(t, ul.TryLock("alice"))
	ul.Unlock("alice")
}

func TestUserLock_WithLock(t *testing.T) {
	ul := NewUserLock()

	called := false
	err := ul.WithLock("alice", func() error {
		called = true
		assert.False(t, ul.TryLock("alice"), "lock must be held inside fn")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	// Lock is released after fn returns.
	assert.True(t, ul.TryLock("alice"))
	ul.Unlock("alice")
}

func TestUserLock_WithLockPropagatesError(t *testing.T) {
	ul := NewUserLock()
	sentinel := errors.New("boom")

	err := ul.WithLock("alice", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	// Lock is released even when fn fails.
	assert.True(t, ul.TryLock("alice"))
	ul.Unlock("alice")
}

// TestUserLockSerializationProperty: for any set of usernames and
// concurrent increments, per-username counters see no lost updates.
func TestUserLockSerializationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		usernames := rapid.SliceOfN(
			rapid.StringMatching(`[a-z]{1,8}`), 1, 5,
		).Draw(t, "usernames")
		increments := rapid.IntRange(1, 20).Draw(t, "increments")

		ul := NewUserLock()

		// Pre-size the counters so goroutines only write through the
		// pointers, never the map itself.
		counters := make(map[string]*int, len(usernames))
		expected := make(map[string]int, len(usernames))
		for _, username := range usernames {
			if counters[username] == nil {
				counters[username] = new(int)
			}
			expected[username] += increments
		}

		var wg sync.WaitGroup
		for _, username := range usernames {
			for i := 0; i < increments; i++ {
				wg.Add(1)
				go func(u string) {
					defer wg.Done()
					_ = ul.WithLock(u, func() error {
						*counters[u]++
						return nil
					})
				}(username)
			}
		}
		wg.Wait()

		for username, want := range expected {
			if got := *counters[username]; got != want {
				t.Fatalf("lost update for %q: expected %d increments, got %d", username, want, got)
			}
		}
	})
}
