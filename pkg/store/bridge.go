package store

import "sync"

// Bridge is the persistence boundary for the small per-email records the
// session core keeps across restarts (daily usage counter, onboarding
// flag). Values are opaque strings; last writer wins.
type Bridge interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
}

// MemoryBridge keeps bridge records in memory (single instance only).
type MemoryBridge struct {
	mu      sync.Mutex
	records map[string]string
}

// NewMemoryBridge constructs an empty in-memory bridge.
func NewMemoryBridge() *MemoryBridge {
	return &MemoryBridge{records: make(map[string]string)}
}

// Get returns the stored value for key.
func (b *MemoryBridge) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.records[key]
	return value, ok, nil
}

// Set stores value under key, replacing any previous value.
func (b *MemoryBridge) Set(key, value string) error {
	b.mu.Lock()
	b.records[key] = value
	b.mu.Unlock()
	return nil
}
