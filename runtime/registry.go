// Package runtime owns message routing between connected participants and
// the fallback path for unavailable ones. It contains no transport or
// storage logic of its own.
package runtime

import (
	"chat-relay/contract"
	"sync"
)

// Registry is the live connection table: which participant handles
// currently own an addressable delivery channel. Entries are transient,
// created on connect and removed on disconnect, never persisted.
type Registry struct {
	mu       sync.RWMutex
	Sessions map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions: make(map[string]contract.EventSink),
	}
}

// Get returns the live channel for a handle, if any.
func (r *Registry) Get(handle string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.Sessions[handle]
	return sink, ok
}

// Subscribe binds a handle to its delivery channel. A handle is bound at
// most once: a reconnect simply replaces the previous binding.
func (r *Registry) Subscribe(handle string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[handle] = sink
}

// Unsubscribe removes the binding, but only if it still points at the
// given sink. A stale connection's deferred cleanup running after a
// reconnect must not evict the newer channel.
func (r *Registry) Unsubscribe(handle string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.Sessions[handle]; ok && current == sink {
		delete(r.Sessions, handle)
	}
}
