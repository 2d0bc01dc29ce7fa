package hub

import (
	"testing"
	"time"

	"github.com/atikulmunna/deskwatch/internal/model"
)

func batch(content string) model.Event {
	return model.BatchUpdateEvent([]model.LogEntry{{Kind: model.KindMessage, Content: content}}, nil)
}

func TestHubBroadcast(t *testing.T) {
	h := New(nil)
	sub1 := h.Subscribe()
	sub2 := h.Subscribe()

	h.Emit(model.Topic, batch("hello"))

	for i, sub := range []<-chan Message{sub1, sub2} {
		select {
		case msg := <-sub:
			if msg.Topic != model.Topic || msg.Event.Type != model.EventBatchUpdate {
				t.Errorf("sub%d: unexpected message %+v", i+1, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub%d: timed out", i+1)
		}
	}
}

func TestHubSlowConsumer(t *testing.T) {
	h := New(nil)

	// Subscribe but never read.
	_ = h.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+100; i++ {
			h.Emit(model.Topic, batch("line"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a slow subscriber")
	}

	if got := h.Dropped(); got != 100 {
		t.Errorf("expected 100 dropped events, got %d", got)
	}
}

func TestHubReplaysWatcherStatus(t *testing.T) {
	h := New(nil)
	h.Emit(model.Topic, model.WatcherStatusEvent(true, "/home/u/.claude"))
	h.Emit(model.Topic, batch("before subscribe"))

	sub := h.Subscribe()
	select {
	case msg := <-sub:
		status, ok := msg.Event.Payload.(model.WatcherStatus)
		if !ok || !status.Active || status.Path != "/home/u/.claude" {
			t.Errorf("expected replayed watcher status, got %+v", msg.Event)
		}
	default:
		t.Fatal("expected status to be delivered on subscribe")
	}

	select {
	case msg := <-sub:
		t.Errorf("batches are not replayed, got %+v", msg.Event)
	default:
	}
}

func TestHubUnsubscribeAndClose(t *testing.T) {
	h := New(nil)
	sub := h.Subscribe()
	other := h.Subscribe()

	h.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Error("expected unsubscribed channel to be closed")
	}
	if h.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber, got %d", h.Subscribers())
	}

	h.Close()
	if _, ok := <-other; ok {
		t.Error("expected channel closed by Close")
	}

	// Emitting and subscribing after close must be harmless.
	h.Emit(model.Topic, batch("late"))
	if _, ok := <-h.Subscribe(); ok {
		t.Error("expected subscribe after close to return a closed channel")
	}
}
