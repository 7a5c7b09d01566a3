package order_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/webcungs/order-relay/internal/logger"
	"github.com/webcungs/order-relay/internal/order"
)

func testNotification() order.Notification {
	return order.Notification{
		OrderID:   "482",
		Group:     "WEB CUNGS",
		Sender:    "6281234567890@s.whatsapp.net",
		Message:   "Please confirm d/482 thanks",
		Timestamp: 1721988000,
	}
}

func TestNotifier_Success(t *testing.T) {
	var got order.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	n := order.NewNotifier(srv.URL, 2*time.Second, logger.New("disabled", "json"))
	if err := n.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	if got.OrderID != "482" {
		t.Errorf("posted order_id = %q, want 482", got.OrderID)
	}
	if got.Group != "WEB CUNGS" {
		t.Errorf("posted group = %q", got.Group)
	}
}

func TestNotifier_Non2xxIsErrorWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
	}))
	defer srv.Close()

	n := order.NewNotifier(srv.URL, 2*time.Second, logger.New("disabled", "json"))
	err := n.Notify(context.Background(), testNotification())
	if err == nil {
		t.Fatal("Notify() error = nil, want error on 502")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retry)", calls.Load())
	}
}

func TestNotifier_NetworkErrorWithoutRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	n := order.NewNotifier(srv.URL, time.Second, logger.New("disabled", "json"))
	if err := n.Notify(context.Background(), testNotification()); err == nil {
		t.Fatal("Notify() error = nil, want transport error")
	}
}
