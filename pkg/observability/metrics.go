package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "leadchat"

// Metrics groups all Prometheus instruments used by the engine.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	Events          *prometheus.CounterVec
	FieldRejections *prometheus.CounterVec
	LeadsCaptured   prometheus.Counter
	Handoffs        *prometheus.CounterVec
	SinkDeliveries  *prometheus.CounterVec
	SinkLatency     *prometheus.HistogramVec
	LedgerSwept     prometheus.Counter
}

// NewMetrics registers the instruments on reg.
// A nil reg registers on the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of chat sessions that have not been shut down.",
		}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Analytics events by type.",
		}, []string{"event"}),
		FieldRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_rejections_total",
			Help:      "Submitted values rejected by a validator, by field.",
		}, []string{"field"}),
		LeadsCaptured: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_captured_total",
			Help:      "Leads finalized and written to the ledger.",
		}),
		Handoffs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Hand-offs by channel and method.",
		}, []string{"channel", "method"}),
		SinkDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_deliveries_total",
			Help:      "Lead deliveries by sink and outcome.",
		}, []string{"sink", "outcome"}),
		SinkLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sink_delivery_seconds",
			Help:      "Duration of lead deliveries by sink.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"sink"}),
		LedgerSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_swept_total",
			Help:      "Expired or corrupt ledger entries evicted by sweeps.",
		}),
	}
}

// Emit counts ev by type. It lets Metrics act as an analytics sink.
func (m *Metrics) Emit(_ context.Context, ev domain.Event) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(string(ev.Type)).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) FieldRejected(field domain.Field) {
	if m == nil {
		return
	}
	m.FieldRejections.WithLabelValues(string(field)).Inc()
}

func (m *Metrics) LeadCaptured() {
	if m == nil {
		return
	}
	m.LeadsCaptured.Inc()
}

func (m *Metrics) HandedOff(ch domain.Channel, method string) {
	if m == nil {
		return
	}
	m.Handoffs.WithLabelValues(string(ch), method).Inc()
}

// ObserveDelivery records one sink attempt. err decides the outcome label.
func (m *Metrics) ObserveDelivery(sink string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SinkDeliveries.WithLabelValues(sink, outcome).Inc()
	m.SinkLatency.WithLabelValues(sink).Observe(d.Seconds())
}

func (m *Metrics) Swept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.LedgerSwept.Add(float64(n))
}

// Handler serves the metrics gathered by g.
// A nil g serves the default Prometheus registry.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
