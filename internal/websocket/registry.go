package websocket

import "sync"

// Registry tracks every live connection by its connection id, plus a per-user
// live-connection count so presence only flips offline when a user's last
// connection drops.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	byUser  map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		byUser:  make(map[string]int),
	}
}

func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	r.byUser[c.UserID]++
}

// Remove drops the connection and reports whether it was the last live
// connection for its user. Removing an unknown id is a no-op.
func (r *Registry) Remove(connID string) (c *Client, lastForUser bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[connID]
	if !ok {
		return nil, false
	}
	delete(r.clients, connID)

	r.byUser[c.UserID]--
	if r.byUser[c.UserID] <= 0 {
		delete(r.byUser, c.UserID)
		return c, true
	}
	return c, false
}

func (r *Registry) Get(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connID]
	return c, ok
}

// Snapshot returns the current set of live clients. The slice is a copy and
// safe to iterate without holding the registry lock.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
