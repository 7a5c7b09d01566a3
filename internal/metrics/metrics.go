package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OrdersRelayed counts order notifications successfully delivered to the API
	OrdersRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "orders_relayed_total", Help: "Order notifications delivered to the order API."},
	)
	// OrderNotifyFailures counts order notifications that were dropped
	OrderNotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "order_notify_failures_total", Help: "Order notifications dropped after a failed POST."},
	)
	// Reconnects counts reconnect cycles by trigger (auth_failure, disconnected)
	Reconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reconnects_total", Help: "WhatsApp reconnect cycles by trigger."},
		[]string{"trigger"},
	)
	// MessagesSent counts outbound WhatsApp messages by outcome
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "messages_sent_total", Help: "Outbound WhatsApp messages by outcome."},
		[]string{"outcome"},
	)
)

var regOnce sync.Once

// Register registers all collectors on the service registry
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OrdersRelayed)
		Registry.MustRegister(OrderNotifyFailures)
		Registry.MustRegister(Reconnects)
		Registry.MustRegister(MessagesSent)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
