package observability

import (
	"context"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway collectors.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Evictions   *prometheus.CounterVec
}

// NewMetrics creates the gateway collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scopes_gateway_invocations_total",
				Help: "Total number of tool invocations by outcome",
			},
			[]string{"tool", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scopes_gateway_invocation_duration_seconds",
				Help:    "Duration of tool invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		Evictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scopes_gateway_idempotency_evictions_total",
				Help: "Idempotency entries removed by sweeps",
			},
			[]string{"reason"},
		),
	}

	for _, c := range []prometheus.Collector{m.Invocations, m.Duration, m.Evictions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns gateway hooks recording invocation counts and durations.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnComplete: func(ctx context.Context, e *domain.InvocationEvent) {
			m.Invocations.WithLabelValues(e.ToolName, string(e.Outcome)).Inc()
			m.Duration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
		},
	}
}

// RecordEvictions counts entries removed by an idempotency sweep.
// Its signature matches idempotency.EvictionHook.
func (m *Metrics) RecordEvictions(ctx context.Context, stats ports.PruneStats) {
	if stats.Expired > 0 {
		m.Evictions.WithLabelValues("expired").Add(float64(stats.Expired))
	}
	if stats.Capacity > 0 {
		m.Evictions.WithLabelValues("capacity").Add(float64(stats.Capacity))
	}
}
