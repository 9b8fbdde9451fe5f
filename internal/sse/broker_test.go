package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if got := b.ClientCount(); got != 0 {
		t.Fatalf("clients = %d, want 0", got)
	}
	ch := b.Subscribe()
	if got := b.ClientCount(); got != 1 {
		t.Fatalf("clients = %d, want 1", got)
	}
	b.Unsubscribe(ch)
	if got := b.ClientCount(); got != 0 {
		t.Fatalf("clients after unsubscribe = %d, want 0", got)
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "run.finished", Data: map[string]int{"total": 3}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: run.finished\n") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `data: {"total":3}`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestPublishChartEvent_CatalogThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChartEvent(KindCompiled, "a.xml", "")
	b.PublishChartEvent(KindFailed, "b.xml", "no notes")

	time.Sleep(50 * time.Millisecond)
	catalog, charts := 0, 0
	var failed string
	for _, s := range drain(ch) {
		switch {
		case strings.Contains(s, "catalog.updated"):
			catalog++
		case strings.Contains(s, "chart.failed"):
			failed = s
			charts++
		default:
			charts++
		}
	}

	if charts != 2 {
		t.Errorf("chart events = %d, want 2", charts)
	}
	if catalog != 1 {
		t.Errorf("catalog events = %d, want 1 (throttled)", catalog)
	}
	if !strings.Contains(failed, `"error":"no notes"`) {
		t.Errorf("failed event = %q, want error message", failed)
	}
}

func TestPublishChartEvent_UnknownKindIgnored(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChartEvent("renamed", "a.xml", "")
	time.Sleep(50 * time.Millisecond)
	if got := drain(ch); len(got) != 0 {
		t.Errorf("messages = %q, want none", got)
	}
}

// flushRecorder guards the recorder body so the test can read it while the
// handler is still writing.
type flushRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (r *flushRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *flushRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if got := b.ClientCount(); got != 1 {
		t.Fatalf("clients = %d, want 1", got)
	}

	b.PublishChartEvent(KindDeleted, "x.xml", "")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if body := w.body(); !strings.Contains(body, "event: chart.deleted") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if got := b.ClientCount(); got != 0 {
		t.Errorf("clients after disconnect = %d, want 0", got)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("subscriber channel should be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if got := b.ClientCount(); got != 0 {
		t.Fatalf("clients after close = %d, want 0", got)
	}
	b.Publish(Event{Type: "chart.compiled"})
	b.PublishChartEvent(KindCompiled, "x.xml", "")
	b.Close()
}
