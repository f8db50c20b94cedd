// Package router implements the process-wide user-id -> live-session
// routing table. It is the only shared mutable state in the core; every
// other cross-session interaction goes through storage instead.
package router

import (
	"sync"

	"github.com/roomrelay/server/internal/session"
	"github.com/roomrelay/server/internal/types"
)

// Router maps a user id to that user's live inbox. At most one entry
// exists per user id at any time.
type Router struct {
	mu    sync.RWMutex
	boxes map[types.Uid]*session.Inbox
}

// New builds an empty Router.
func New() *Router {
	return &Router{boxes: make(map[types.Uid]*session.Inbox)}
}

// Register inserts inbox for userID, replacing any prior entry. This is
// the eviction policy for a second connection by the same user: the
// earlier session is not notified, it simply becomes unreachable through
// the table (see Unregister for how it avoids clobbering a replacement).
func (r *Router) Register(userID types.Uid, inbox *session.Inbox) {
	r.mu.Lock()
	r.boxes[userID] = inbox
	r.mu.Unlock()
}

// Lookup returns the inbox currently registered for userID, if any. The
// caller enqueues to it after the lock has already been released.
func (r *Router) Lookup(userID types.Uid) (*session.Inbox, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inbox, ok := r.boxes[userID]
	return inbox, ok
}

// Unregister removes userID's entry only if it is still mine. This
// avoids the race where a late disconnect of an evicted session erases
// a newer session's entry that has already replaced it in the table.
func (r *Router) Unregister(userID types.Uid, mine *session.Inbox) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.boxes[userID]; ok && current == mine {
		delete(r.boxes, userID)
	}
}
