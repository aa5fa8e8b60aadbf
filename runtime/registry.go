package runtime

import (
	"sync"
	"sync/atomic"

	"quicktalk/contract"
	"quicktalk/domain"
)

var _ contract.IRegistry = (*Registry)(nil)

// chatGroup holds the live connections of one chat.
// Once retired (emptied and removed from the registry) a group never accepts
// connections again, a concurrent Subscribe retries with a fresh group.
type chatGroup struct {
	mu          sync.RWMutex
	connections map[string]contract.Connection // map connection id -> connection
	retired     bool
}

// Registry maps a chat to its live connections.
// Each chat owns its lock: operations on different chats never contend,
// and the chat lookup itself goes through a sync.Map.
type Registry struct {
	groups sync.Map // domain.ChatID -> *chatGroup
	total  atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{}
}

// GetConnections returns a snapshot of the connections of a chat.
// The snapshot may be stale as soon as it is returned: a connection can go away
// before anything is delivered to it.
// Returns nil if the chat has no live connection.
func (r *Registry) GetConnections(chatID domain.ChatID) []contract.Connection {
	value, ok := r.groups.Load(chatID)
	if !ok {
		return nil
	}
	group := value.(*chatGroup)
	group.mu.RLock()
	defer group.mu.RUnlock()

	if len(group.connections) == 0 {
		return nil
	}
	snapshot := make([]contract.Connection, 0, len(group.connections))
	for _, conn := range group.connections {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// Subscribe adds a connection to the live set of a chat.
// Subscribing the same connection twice keeps a single entry.
// If the chat has no group yet, it is initialized on the fly.
func (r *Registry) Subscribe(chatID domain.ChatID, conn contract.Connection) {
	for {
		value, _ := r.groups.LoadOrStore(chatID, &chatGroup{connections: make(map[string]contract.Connection)})
		group := value.(*chatGroup)

		group.mu.Lock()
		if group.retired {
			group.mu.Unlock()
			continue
		}
		if _, ok := group.connections[conn.ID()]; !ok {
			group.connections[conn.ID()] = conn
			r.total.Add(1)
		}
		group.mu.Unlock()
		return
	}
}

// Unsubscribe removes a connection from a chat.
// Removing an unknown connection is a no-op. When no one is left the group is
// retired and removed so the registry does not grow with every chat ever opened.
func (r *Registry) Unsubscribe(chatID domain.ChatID, conn contract.Connection) {
	value, ok := r.groups.Load(chatID)
	if !ok {
		return
	}
	group := value.(*chatGroup)

	group.mu.Lock()
	defer group.mu.Unlock()

	if _, ok = group.connections[conn.ID()]; !ok {
		return
	}
	delete(group.connections, conn.ID())
	r.total.Add(-1)

	if len(group.connections) == 0 && !group.retired {
		group.retired = true
		r.groups.CompareAndDelete(chatID, group)
	}
}

// Count returns the number of live connections across all chats.
func (r *Registry) Count() int {
	return int(r.total.Load())
}

func (r *Registry) CountForChat(chatID domain.ChatID) int {
	value, ok := r.groups.Load(chatID)
	if !ok {
		return 0
	}
	group := value.(*chatGroup)
	group.mu.RLock()
	defer group.mu.RUnlock()
	return len(group.connections)
}

// Chats returns the number of chats holding at least one live connection.
func (r *Registry) Chats() int {
	count := 0
	r.groups.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
