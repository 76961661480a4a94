package session

import (
	"sync"

	"promptifie/pkg/store"
)

// Registry hands out one Manager per email so the service layer can host
// many concurrent sessions. Each Manager stays single-writer behind its
// own mutex.
type Registry struct {
	bridge store.Bridge
	opts   []Option

	mu       sync.Mutex
	managers map[string]*Manager
}

// NewRegistry builds a registry; opts are applied to every Manager.
func NewRegistry(bridge store.Bridge, opts ...Option) *Registry {
	return &Registry{
		bridge:   bridge,
		opts:     opts,
		managers: make(map[string]*Manager),
	}
}

// Get returns the Manager for email, creating a logged-out one on first
// use.
func (r *Registry) Get(email string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[email]; ok {
		return m
	}
	m := NewManager(r.bridge, r.opts...)
	r.managers[email] = m
	return m
}

// Drop forgets the Manager for email. The next Get starts fresh.
func (r *Registry) Drop(email string) {
	r.mu.Lock()
	delete(r.managers, email)
	r.mu.Unlock()
}
