package utils

import "sync"

// KeyTracker remembers keys already seen, used for first-wins deduplication
type KeyTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewKeyTracker creates a new tracker
func NewKeyTracker() *KeyTracker {
	return &KeyTracker{seen: make(map[string]struct{})}
}

// Add returns true if the key is new, false if it was seen before
func (t *KeyTracker) Add(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.seen[key]; exists {
		return false
	}
	t.seen[key] = struct{}{}
	return true
}

// Count returns the number of tracked keys
func (t *KeyTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
