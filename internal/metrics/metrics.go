// Package metrics exports bridge call counts and latencies to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robbyt/go-chartbridge/bridge"
)

const namespace = "chartbridge"

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeMarshal     = "marshal_error"
	OutcomeHostFailure = "host_failure"
	OutcomeError       = "error"
)

// Collector counts guest-to-host calls by role, operation and outcome. It implements
// bridge.Observer.
type Collector struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ bridge.Observer = (*Collector)(nil)

// New creates a Collector and registers it with reg. A nil reg skips registration.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "calls_total",
			Help:      "Guest calls into host operations.",
		}, []string{"role", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "call_duration_seconds",
			Help:      "Time spent in host operations, marshalling included.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"role", "operation"}),
	}
	if reg == nil {
		return c, nil
	}
	var err error
	if c.calls, err = register(reg, c.calls); err != nil {
		return nil, err
	}
	if c.duration, err = register(reg, c.duration); err != nil {
		return nil, err
	}
	return c, nil
}

// register adds col to reg, reusing the collector already registered under the same name.
func register[C prometheus.Collector](reg prometheus.Registerer, col C) (C, error) {
	err := reg.Register(col)
	if err == nil {
		return col, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return col, fmt.Errorf("registering metrics: %w", err)
}

// ObserveCall records one call.
func (c *Collector) ObserveCall(role bridge.Role, op string, elapsed time.Duration, err error) {
	c.calls.WithLabelValues(role.String(), op, Outcome(err)).Inc()
	c.duration.WithLabelValues(role.String(), op).Observe(elapsed.Seconds())
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.calls.Describe(ch)
	c.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.calls.Collect(ch)
	c.duration.Collect(ch)
}

// Outcome maps a call error to its label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, bridge.ErrMarshal):
		return OutcomeMarshal
	case errors.Is(err, bridge.ErrHostFailure):
		return OutcomeHostFailure
	default:
		return OutcomeError
	}
}
