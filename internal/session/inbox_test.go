package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestInboxSendRecvOrder(t *testing.T) {
	b := NewInbox()

	first := ThreadEvent{UserMessage: &UserMessageEvent{UUID: uuid.New(), Content: "first"}}
	second := ThreadEvent{UserMessage: &UserMessageEvent{UUID: uuid.New(), Content: "second"}}

	b.Send(first)
	b.Send(second)

	select {
	case <-b.Signal():
	case <-time.After(time.Second):
		t.Fatal("Signal never fired after Send")
	}

	got1, ok := b.Recv()
	if !ok || got1.UserMessage.Content != "first" {
		t.Fatalf("first Recv = %+v, %v", got1, ok)
	}
	got2, ok := b.Recv()
	if !ok || got2.UserMessage.Content != "second" {
		t.Fatalf("second Recv = %+v, %v", got2, ok)
	}
	if _, ok := b.Recv(); ok {
		t.Fatal("Recv returned a third event from an empty queue")
	}
}

func TestInboxSendNeverBlocks(t *testing.T) {
	b := NewInbox()
	done := make(chan struct{})

	go func() {
		for i := 0; i < 10_000; i++ {
			b.Send(ThreadEvent{UserMessage: &UserMessageEvent{UUID: uuid.New()}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Send blocked under a burst with no consumer draining the queue")
	}
}

func TestInboxSendAfterCloseIsDropped(t *testing.T) {
	b := NewInbox()
	b.Close()
	b.Send(ThreadEvent{UserMessage: &UserMessageEvent{UUID: uuid.New()}})

	if _, ok := b.Recv(); ok {
		t.Fatal("Send after Close enqueued an event")
	}
}
