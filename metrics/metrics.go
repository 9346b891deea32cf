// Package metrics defines the optional prometheus instrumentation an Engine
// can be configured to emit (§6 EngineOption). Collectors are registered
// only when a host opts in; nothing in this package touches a default
// registry implicitly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jex-lang/jex/errors"
)

// Collectors bundles every metric the engine can emit. The zero value is
// usable: every method becomes a no-op so engine code never needs a nil
// check before recording.
type Collectors struct {
	CompileTotal       *prometheus.CounterVec
	ExecuteDuration    prometheus.Histogram
	LimitExceededTotal *prometheus.CounterVec
}

// New builds a Collectors bundle and registers it against reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		CompileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jex_compile_total",
			Help: "Total number of Compile calls, partitioned by outcome.",
		}, []string{"outcome"}),
		ExecuteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jex_execute_duration_seconds",
			Help:    "Execution wall-clock duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		LimitExceededTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jex_limit_exceeded_total",
			Help: "Total number of executions that raised LimitExceeded, partitioned by limit kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(c.CompileTotal, c.ExecuteDuration, c.LimitExceededTotal)
	return c
}

func (c *Collectors) ObserveCompile(err error) {
	if c == nil || c.CompileTotal == nil {
		return
	}
	if err != nil {
		c.CompileTotal.WithLabelValues("error").Inc()
		return
	}
	c.CompileTotal.WithLabelValues("ok").Inc()
}

func (c *Collectors) ObserveExecuteDuration(seconds float64) {
	if c == nil || c.ExecuteDuration == nil {
		return
	}
	c.ExecuteDuration.Observe(seconds)
}

// ObserveError inspects err for a LimitExceeded and, when found, bumps the
// limit-exceeded counter under that limit's kind.
func (c *Collectors) ObserveError(err error) {
	if c == nil || c.LimitExceededTotal == nil || err == nil {
		return
	}
	if le, ok := err.(*errors.LimitExceeded); ok {
		c.LimitExceededTotal.WithLabelValues(string(le.Kind)).Inc()
	}
}
