package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Suppression and refresh outcome label values.
const (
	ReasonOwnEcho            = "own_echo"
	ReasonActiveConversation = "active_conversation"
	ReasonStaleSession       = "stale_session"
	ReasonInvalidPayload     = "invalid_payload"

	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCoalesced = "coalesced"
	OutcomeStale     = "stale"
)

// Metrics holds the notification core's instrumentation.
type Metrics struct {
	Emitted      prometheus.Counter
	Suppressed   *prometheus.CounterVec
	Refreshes    *prometheus.CounterVec
	Reconnects   prometheus.Counter
	ToastDropped prometheus.Counter
	UnreadTotal  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatnotify_notifications_emitted_total",
			Help: "Notifications broadcast to subscribers.",
		}),
		Suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatnotify_notifications_suppressed_total",
			Help: "Message events that did not produce a notification.",
		}, []string{"reason"}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatnotify_unread_refreshes_total",
			Help: "Unread-total refresh attempts by outcome.",
		}, []string{"outcome"}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatnotify_session_reconnects_total",
			Help: "Transport reconnect events observed by the core.",
		}),
		ToastDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatnotify_toast_dropped_total",
			Help: "Notifications dropped because the toast queue was full.",
		}),
		UnreadTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatnotify_unread_total",
			Help: "Last known aggregate unread count.",
		}),
	}
}

// NewRegistry builds the process registry with the standard collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
