package credentials

import (
	"strings"
	"sync"
)

// KeyStore is a plain guarded key holder, used for the avatar vendor whose
// key is not probed.
type KeyStore struct {
	mu  sync.RWMutex
	key string
}

func NewKeyStore(initialKey string) *KeyStore {
	return &KeyStore{key: strings.TrimSpace(initialKey)}
}

func (k *KeyStore) Set(key string) {
	k.mu.Lock()
	k.key = strings.TrimSpace(key)
	k.mu.Unlock()
}

func (k *KeyStore) Get() (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.key, k.key != ""
}

func (k *KeyStore) IsConfigured() bool {
	_, ok := k.Get()
	return ok
}
