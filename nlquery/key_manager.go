package nlquery

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultKeyCooldown is how long a rate-limited key sits out of rotation.
const DefaultKeyCooldown = time.Minute

// KeyManager handles API key rotation
type KeyManager struct {
	keys        []string
	current     uint32
	cooldown    time.Duration
	now         func() time.Time
	mu          sync.RWMutex
	failedUntil map[string]time.Time
}

// NewKeyManager creates a key manager over the configured API keys
func NewKeyManager(keys []string) *KeyManager {
	return &KeyManager{
		keys:        keys,
		cooldown:    DefaultKeyCooldown,
		now:         time.Now,
		failedUntil: make(map[string]time.Time),
	}
}

func (km *KeyManager) Len() int {
	return len(km.keys)
}

// GetNextKey returns the next healthy API key in rotation. When every key
// is cooling down it still returns one rather than nothing.
func (km *KeyManager) GetNextKey() string {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if len(km.keys) == 0 {
		return ""
	}

	now := km.now()
	var fallback string
	for range km.keys {
		current := atomic.AddUint32(&km.current, 1)
		key := km.keys[(current-1)%uint32(len(km.keys))]
		if until, ok := km.failedUntil[key]; ok && now.Before(until) {
			if fallback == "" {
				fallback = key
			}
			continue
		}
		return key
	}
	return fallback
}

// MarkKeyFailed takes key out of rotation for the cooldown period.
func (km *KeyManager) MarkKeyFailed(key string) {
	if key == "" {
		return
	}
	km.mu.Lock()
	defer km.mu.Unlock()
	km.failedUntil[key] = km.now().Add(km.cooldown)
}
