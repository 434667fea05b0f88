package relay

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/emotewire/emotewire/internal/metrics"
)

// entry is one live (user id, connection) association.
type entry struct {
	writer       *clientWriter
	connection   *websocket.Conn
	connectionID string
}

// Registry owns the live set of user id → connection associations and is
// the only component that mutates it. The mutex guards only map access;
// websocket I/O and classification happen outside it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	clock   clockwork.Clock
}

// NewRegistry creates an empty registry.
func NewRegistry(clock clockwork.Clock) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		clock:   clock,
	}
}

// Connect registers conn under userID and starts its writer goroutine.
// A second connect for a live user id supersedes the old entry: the stale
// writer and its connection are closed before the new one is installed, so
// at most one connection is ever registered per user id.
func (r *Registry) Connect(userID string, conn *websocket.Conn) {
	e := &entry{
		writer:       newClientWriter(conn, r.clock),
		connection:   conn,
		connectionID: uuid.NewString(),
	}

	r.mu.Lock()
	old := r.entries[userID]
	r.entries[userID] = e
	total := len(r.entries)
	r.mu.Unlock()

	if old != nil {
		slog.Info("Superseding stale connection", "user_id", userID, "connection_id", old.connectionID)
		old.writer.stop()
	}

	metrics.RelayActiveConnections.Set(float64(total))
	slog.Info("Client connected", "user_id", userID, "connection_id", e.connectionID, "total", total)
}

// Disconnect removes the entry for userID. No-op if the id is absent, or
// if conn is non-nil and the entry has since been superseded by a newer
// connection (the stale read loop must not evict its replacement).
// Idempotent; always stops the removed writer.
func (r *Registry) Disconnect(userID string, conn *websocket.Conn) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	if !ok || (conn != nil && e.connection != conn) {
		r.mu.Unlock()
		return
	}
	delete(r.entries, userID)
	total := len(r.entries)
	r.mu.Unlock()

	e.writer.stop()
	metrics.RelayActiveConnections.Set(float64(total))
	slog.Info("Client disconnected", "user_id", userID, "connection_id", e.connectionID, "total", total)
}

// Send delivers one frame to the connection registered under userID.
// Returns false without side effect when the id is absent. A recipient
// that cannot accept the frame is treated as disconnected and evicted;
// the failure never reaches the caller as an error.
func (r *Registry) Send(userID string, frame any) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("Failed to marshal outbound frame", "error", err)
		return false
	}
	return r.deliver(userID, data)
}

// Broadcast delivers one frame to every registered connection, including
// the sender's own. Each delivery attempt is independent; a failed
// recipient is evicted without affecting the others. Connections racing in
// during delivery may miss the frame.
func (r *Registry) Broadcast(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("Failed to marshal broadcast frame", "error", err)
		return
	}

	type target struct {
		userID string
		e      *entry
	}

	r.mu.RLock()
	targets := make([]target, 0, len(r.entries))
	for userID, e := range r.entries {
		targets = append(targets, target{userID: userID, e: e})
	}
	r.mu.RUnlock()

	for _, t := range targets {
		if !t.e.writer.enqueue(data) {
			r.evict(t.userID, t.e)
		}
	}
	metrics.RelayBroadcastFanout.Observe(float64(len(targets)))
}

func (r *Registry) deliver(userID string, data []byte) bool {
	r.mu.RLock()
	e, ok := r.entries[userID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if !e.writer.enqueue(data) {
		r.evict(userID, e)
		return false
	}
	return true
}

// evict handles a failed delivery: the recipient takes its own disconnect
// path while the sender's pipeline continues untouched.
func (r *Registry) evict(userID string, e *entry) {
	metrics.RelayDeliveryFailures.Inc()
	slog.Warn("Evicting unresponsive client", "user_id", userID, "connection_id", e.connectionID)
	r.Disconnect(userID, e.connection)
}

// ClientCount returns the number of registered connections.
func (r *Registry) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Connected reports whether userID has a live entry.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[userID]
	return ok
}

// Stop closes every registered connection and empties the registry.
func (r *Registry) Stop() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.writer.stop()
	}
	metrics.RelayActiveConnections.Set(0)
}
