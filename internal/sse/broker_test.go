package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("v1")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	return ""
}

func TestPublish_TopicScoped(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	mine := b.Subscribe("v1")
	defer b.Unsubscribe(mine)
	other := b.Subscribe("v2")
	defer b.Unsubscribe(other)

	b.Publish(Event{Type: TypeLedgerViewed, Topic: "v1", Data: map[string]any{"kind": "notes", "id": 3}})

	s := recv(t, mine)
	if !strings.Contains(s, "event: ledger.viewed") {
		t.Errorf("missing event type in %q", s)
	}
	if !strings.Contains(s, `"id":3`) {
		t.Errorf("missing data in %q", s)
	}

	// A broadcast reaches both; the other visitor must not have seen v1's event first.
	b.Publish(Event{Type: TypeLedgerReset, Data: map[string]string{}})
	if s := recv(t, other); !strings.Contains(s, "ledger.reset") {
		t.Errorf("other client got %q, want the broadcast", s)
	}
	if s := recv(t, mine); !strings.Contains(s, "ledger.reset") {
		t.Errorf("own client got %q", s)
	}
}

func TestPublishContentUpdated_Throttle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("v1")
	defer b.Unsubscribe(ch)

	b.PublishContentUpdated("aaa")
	b.PublishContentUpdated("bbb")

	time.Sleep(50 * time.Millisecond)
	count := 0
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), TypeContentUpdated) {
				count++
			}
		default:
			break loop
		}
	}
	if count != 1 {
		t.Errorf("content events = %d, want 1 (throttled)", count)
	}
}

func TestServe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.Serve(w, req, "v1")
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeLedgerFlag, Topic: "v1", Data: map[string]any{"flag": "visited", "value": true}})
	b.Publish(Event{Type: TypeLedgerFlag, Topic: "v2", Data: map[string]any{"flag": "other"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: ledger.flag") || !strings.Contains(body, `"visited"`) {
		t.Errorf("handler output missing event: %q", body)
	}
	if strings.Contains(body, `"other"`) {
		t.Errorf("handler leaked another visitor's event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then some; publishing must not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]int{"i": i}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("v1")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: TypeLedgerViewed})
	b.PublishContentUpdated("x")
}
