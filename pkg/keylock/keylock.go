package keylock

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex provides per-key mutual exclusion. Checkout holds the
// user's lock from cart snapshot until cache clear so two concurrent
// checkouts cannot both drain the same cart.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("keylock: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
