package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InstructionMetrics records every settlement instruction processed by the
// node, segmented by module, instruction name, and outcome.
type InstructionMetrics struct {
	instructions *prometheus.CounterVec
	failures     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

var (
	instructionOnce sync.Once
	instructionReg  *InstructionMetrics
)

// Instructions returns the lazily-initialised instruction metrics registry.
func Instructions() *InstructionMetrics {
	instructionOnce.Do(func() {
		instructionReg = &InstructionMetrics{
			instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "basketchain",
				Subsystem: "engine",
				Name:      "instructions_total",
				Help:      "Total settlement instructions segmented by module, instruction, and outcome.",
			}, []string{"module", "instruction", "outcome"}),
			failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "basketchain",
				Subsystem: "engine",
				Name:      "instruction_failures_total",
				Help:      "Total failed settlement instructions segmented by module and instruction.",
			}, []string{"module", "instruction"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "basketchain",
				Subsystem: "engine",
				Name:      "instruction_duration_seconds",
				Help:      "Latency distribution for settlement instructions.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "instruction"}),
		}
		prometheus.MustRegister(instructionReg.instructions, instructionReg.failures, instructionReg.latency)
	})
	return instructionReg
}

// Observe records one processed instruction.
func (m *InstructionMetrics) Observe(module, instruction string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.failures.WithLabelValues(module, instruction).Inc()
	}
	m.instructions.WithLabelValues(module, instruction, outcome).Inc()
	m.latency.WithLabelValues(module, instruction).Observe(elapsed.Seconds())
}
