package session

import (
	"container/list"
	"sync"
)

// Inbox is an unbounded single-consumer queue of ThreadEvents. A native
// Go channel is always capacity-bounded, so the queue itself is a
// mutex-guarded container/list.List; a capacity-1 signal channel wakes a
// blocked Recv without the sender ever blocking. Many sessions may hold
// a cloned *Inbox handle and Send to it concurrently; only the owning
// Actor calls Recv.
type Inbox struct {
	mu     sync.Mutex
	queue  *list.List
	signal chan struct{}
	closed bool
}

// NewInbox allocates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{
		queue:  list.New(),
		signal: make(chan struct{}, 1),
	}
}

// Send enqueues ev. It never blocks. Send on a closed inbox is a no-op:
// the owning session is gone and the event is simply dropped, which
// covers the moment between unregister and the owning goroutine
// actually exiting.
func (b *Inbox) Send(ev ThreadEvent) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue.PushBack(ev)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// tryRecv pops the front event if one is queued.
func (b *Inbox) tryRecv() (ThreadEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	front := b.queue.Front()
	if front == nil {
		return ThreadEvent{}, false
	}
	b.queue.Remove(front)
	return front.Value.(ThreadEvent), true
}

// Signal exposes the wake channel so the Actor's select loop can treat
// the inbox as one of its two waitable sources.
func (b *Inbox) Signal() <-chan struct{} {
	return b.signal
}

// Recv returns the next queued event without blocking, or ok=false if
// the queue is currently empty. Callers select on Signal() first.
func (b *Inbox) Recv() (ThreadEvent, bool) {
	return b.tryRecv()
}

// Close marks the inbox closed; further Sends are dropped.
func (b *Inbox) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
