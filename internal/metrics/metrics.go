package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notifyhub/opencdp-go/internal/domain"
	"github.com/notifyhub/opencdp-go/internal/provider"
)

// Metrics groups all Prometheus instruments used by the client.
// A nil *Metrics is valid and records nothing, so callers never need to
// check whether metrics were configured.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationLatency  *prometheus.HistogramVec
	GatewayResponses  *prometheus.CounterVec
	GatewayLatency    *prometheus.HistogramVec
	DualWriteFailures *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct. Passing a dedicated registry keeps
// several clients (and tests) from colliding on the default one.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opencdp",
			Name:      "operations_total",
			Help:      "Client operations by outcome.",
		}, []string{"operation", "outcome"}),

		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opencdp",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in a client operation, validation to result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		GatewayResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opencdp",
			Name:      "gateway_responses_total",
			Help:      "HTTP responses from the CDP gateway. code is 0 when no response arrived.",
		}, []string{"path", "code"}),

		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opencdp",
			Name:      "gateway_request_seconds",
			Help:      "Round-trip latency of CDP gateway requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		DualWriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opencdp",
			Name:      "dual_write_failures_total",
			Help:      "Failed writes to the secondary provider.",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.Operations,
		m.OperationLatency,
		m.GatewayResponses,
		m.GatewayLatency,
		m.DualWriteFailures,
	)

	return m
}

// ObserveOperation records one finished client call.
func (m *Metrics) ObserveOperation(op domain.Operation, outcome domain.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(string(op), string(outcome)).Inc()
	m.OperationLatency.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

func (m *Metrics) DualWriteFailed(op domain.Operation) {
	if m == nil {
		return
	}
	m.DualWriteFailures.WithLabelValues(string(op)).Inc()
}

// GatewayHook returns the callback expected by provider.GatewayConfig.
// Centralises the prometheus observation calls so the gateway stays import-free.
func (m *Metrics) GatewayHook() provider.ResponseHook {
	if m == nil {
		return nil
	}
	return func(_, path string, status int, elapsed time.Duration) {
		m.GatewayResponses.WithLabelValues(path, strconv.Itoa(status)).Inc()
		m.GatewayLatency.WithLabelValues(path).Observe(elapsed.Seconds())
	}
}
