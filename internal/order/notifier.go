package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/webcungs/order-relay/internal/logger"
	"github.com/webcungs/order-relay/internal/metrics"
)

// Notification is the payload posted to the order-management API. Created
// per matched message, sent once, then discarded.
type Notification struct {
	OrderID   string `json:"order_id"`
	Group     string `json:"group"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Notifier posts order notifications to the configured endpoint. Delivery is
// fire-and-forget: one POST, no retry. The caller decides what a failure
// means (the relay logs it and skips the chat confirmation).
type Notifier struct {
	endpoint string
	client   *http.Client
	log      *logger.Logger
}

// NewNotifier creates a notifier for the given endpoint
func NewNotifier(endpoint string, timeout time.Duration, log *logger.Logger) *Notifier {
	return &Notifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Notify issues a single POST with the notification payload. Any non-2xx
// response or transport error is returned as an error; nothing is retried.
func (n *Notifier) Notify(ctx context.Context, notif Notification) error {
	body, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.OrderNotifyFailures.Inc()
		return fmt.Errorf("order API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		metrics.OrdersRelayed.Inc()
		n.log.Infof("Order %s relayed to %s", notif.OrderID, n.endpoint)
		return nil
	}

	metrics.OrderNotifyFailures.Inc()
	return fmt.Errorf("order API returned %d: %s", resp.StatusCode, apiErrorMessage(resp.Body))
}

// apiErrorMessage pulls the "message" field out of a failure payload for
// logging. Anything unparseable is reported as-is, truncated.
func apiErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no error payload"
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}

	return string(raw)
}
