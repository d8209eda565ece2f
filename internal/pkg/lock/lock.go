// Package lock provides per-username locking so concurrent actions on the
// same round are serialized instead of racing load-modify-save cycles.
package lock

import (
	"sync"
)

// UserLock provides per-username mutual exclusion. Different usernames
// never contend.
type UserLock struct {
	locks sync.Map // map[string]*sync.Mutex
	pool  sync.Pool
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{
		pool: sync.Pool{
			New: func() any {
				return &sync.Mutex{}
			},
		},
	}
}

// getLock retrieves or creates the mutex for the given username.
func (ul *UserLock) getLock(username string) *sync.Mutex {
	if v, ok := ul.locks.Load(username); ok {
		return v.(*sync.Mutex)
	}

	newLock := ul.pool.Get().(*sync.Mutex)
	actual, loaded := ul.locks.LoadOrStore(username, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool
		ul.pool.Put(newLock)
	}
	return actual.(*sync.Mutex)
}

// Lock acquires the lock for a username.
func (ul *UserLock) Lock(username string) {
	ul.getLock(username).Lock()
}

// Unlock releases the lock for a username.
func (ul *UserLock) Unlock(username string) {
	if v, ok := ul.locks.Load(username); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (ul *UserLock) TryLock(username string) bool {
	return ul.getLock(username).TryLock()
}

// WithLock executes fn while holding the username's lock.
func (ul *UserLock) WithLock(username string, fn func() error) error {
	ul.Lock(username)
	defer ul.Unlock(username)
	return fn()
}
