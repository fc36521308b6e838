package service

import (
	"sync"

	"zold-node/internal/core/domain"
)

// KeyedMutex serializes work per wallet Id. Operations on different wallets
// never wait for each other. Entries are dropped once the last holder or
// waiter unlocks, so the map only holds wallets that are in use.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[domain.Id]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[domain.Id]*refMutex)}
}

// Lock blocks until the lock for id is held.
func (k *KeyedMutex) Lock(id domain.Id) {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
}

// Unlock releases the lock for id. It panics if id is not locked.
func (k *KeyedMutex) Unlock(id domain.Id) {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[id]
	if !ok {
		panic("service: unlock of unlocked wallet " + id.String())
	}
	m.refs--
	if m.refs == 0 {
		delete(k.locks, id)
	}
	m.Unlock()
}

// Len returns the number of wallets currently locked or waited on.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
