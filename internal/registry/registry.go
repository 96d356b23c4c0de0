// Package registry tracks every live transport connection and its
// role. It owns Connection lifetime; bindings between connections are
// weak references by id, resolved through lookups here.
package registry

import (
	"sync"

	"github.com/glasskit/broker/internal/shared/id"
	"github.com/glasskit/broker/internal/types"
)

// Sender delivers a named event to one client. Implemented by the
// websocket connection wrapper; tests substitute recorders.
type Sender interface {
	Emit(event string, data any) error
}

// Connection is one live transport session. Fields are mutated only
// through Registry methods.
type Connection struct {
	ID      id.ConnID
	Role    types.Role
	PeerID  id.ConnID // bound counterpart, zero when unbound
	AppInfo *types.AppInfo

	sender Sender
}

// Emit sends a named event to this connection's client
func (c *Connection) Emit(event string, data any) error {
	return c.sender.Emit(event, data)
}

// Bound reports whether this connection has a live back-reference
func (c *Connection) Bound() bool {
	return c.PeerID != ""
}

// Registry is the sole owner of connections, keyed by id
type Registry struct {
	mu    sync.RWMutex
	conns map[id.ConnID]*Connection
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		conns: make(map[id.ConnID]*Connection),
	}
}

// Add registers a new connection with RoleUnbound
func (r *Registry) Add(connID id.ConnID, sender Sender) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn := &Connection{
		ID:     connID,
		Role:   types.RoleUnbound,
		sender: sender,
	}
	r.conns[connID] = conn
	return conn
}

// Remove drops a connection and returns it, nil if unknown
func (r *Registry) Remove(connID id.ConnID) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)
	return conn
}

// Get retrieves a connection by id
func (r *Registry) Get(connID id.ConnID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connID]
	return conn, ok
}

// Simulator returns the at-most-one connection holding RoleSimulator
func (r *Registry) Simulator() (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, conn := range r.conns {
		if conn.Role == types.RoleSimulator {
			return conn, true
		}
	}
	return nil, false
}

// PromoteSimulator makes connID the simulator. Last registrant wins: a
// previously registered simulator is demoted to RoleUnbound and its
// binding links are severed on both sides, with no notification to the
// displaced parties. Returns the displaced connection, if any.
func (r *Registry) PromoteSimulator(connID id.ConnID) (promoted, displaced *Connection, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, found := r.conns[connID]
	if !found {
		return nil, nil, false
	}

	for _, other := range r.conns {
		if other.Role == types.RoleSimulator && other.ID != connID {
			other.Role = types.RoleUnbound
			if app, bound := r.conns[other.PeerID]; bound {
				app.PeerID = ""
			}
			other.PeerID = ""
			displaced = other
		}
	}

	conn.Role = types.RoleSimulator
	return conn, displaced, true
}

// Bind links an application connection to the simulator connection with
// mutual back-references and records its app info. An application
// previously bound to the same simulator is orphaned: its back-reference
// is cleared so further relays from it are dropped. Returns false if
// either side is gone.
func (r *Registry) Bind(simID, appID id.ConnID, info types.AppInfo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sim, ok := r.conns[simID]
	if !ok {
		return false
	}
	app, ok := r.conns[appID]
	if !ok {
		return false
	}

	if old, bound := r.conns[sim.PeerID]; bound && old.ID != appID {
		old.PeerID = ""
	}

	app.Role = types.RoleApplication
	app.AppInfo = &info
	app.PeerID = simID
	sim.PeerID = appID
	return true
}

// Unlink clears the peer reference on one side only
func (r *Registry) Unlink(connID id.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[connID]; ok {
		conn.PeerID = ""
	}
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// CountByRole returns how many connections hold each role
func (r *Registry) CountByRole() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, 3)
	for _, conn := range r.conns {
		counts[conn.Role.String()]++
	}
	return counts
}
