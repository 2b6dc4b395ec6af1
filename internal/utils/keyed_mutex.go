package utils

import "sync"

// KeyedMutex hands out one mutex per key so that operations on different
// guilds or users never contend with each other.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock := k.locks[key]
	if lock == nil {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
