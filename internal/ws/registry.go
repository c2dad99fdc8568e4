package ws

import (
	"sync"
	"time"
)

// SessionInfo is the read-only projection of a live session used for
// introspection endpoints.
type SessionInfo struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Registry tracks the live websocket session of each authenticated user.
// At most one session per identity: registering a newer one displaces the
// older, which the caller must close. All operations are safe for concurrent
// use from connection goroutines.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register maps identity to session, returning the displaced session when the
// identity was already connected (nil otherwise).
func (r *Registry) Register(identity string, s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	displaced := r.sessions[identity]
	r.sessions[identity] = s
	if displaced == s {
		return nil
	}
	return displaced
}

// Unregister removes the mapping, but only while it still points at s: a
// session displaced by a newer connection must not evict its replacement.
// Calling it twice is a no-op.
func (r *Registry) Unregister(identity string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[identity]; ok && current == s {
		delete(r.sessions, identity)
	}
}

// Lookup returns the live session for identity, if any.
func (r *Registry) Lookup(identity string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[identity]
	return s, ok
}

// Snapshot copies the current mapping so callers can iterate without holding
// the registry lock.
func (r *Registry) Snapshot() map[string]SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]SessionInfo, len(r.sessions))
	for identity, s := range r.sessions {
		snapshot[identity] = SessionInfo{
			ID:          s.ID,
			User:        s.User,
			ConnectedAt: s.ConnectedAt,
		}
	}
	return snapshot
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
