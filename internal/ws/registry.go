package ws

import "sync"

// Registry tracks every live connection by user identity, backing
// "is this user online" lookups and the Redis presence mirror.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*clientConn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*clientConn)}
}

// Register stores the connection for userID. A prior connection for the same
// user is silently superseded and NOT closed; the stale socket lingers until
// its own reader notices the transport is gone. Known gap, kept as-is pending
// a product decision on multi-device sessions.
func (r *Registry) Register(userID string, c *clientConn) {
	r.mu.Lock()
	r.conns[userID] = c
	r.mu.Unlock()
}

// Unregister removes the entry if present. Idempotent.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.conns, userID)
	r.mu.Unlock()
}

func (r *Registry) Lookup(userID string) (*clientConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// Online returns a snapshot of the currently connected user ids.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.conns))
	for id := range r.conns {
		users = append(users, id)
	}
	return users
}
