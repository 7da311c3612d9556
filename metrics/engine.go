package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/turnact/activity"
)

// EngineMetrics counts scheduler turns and tracks backlog depth.
// It implements activity.Observer and world.BacklogObserver.
type EngineMetrics struct {
	turns   CounterVec
	resumes CounterVec
	backlog GaugeVec
}

// NewEngineMetrics registers the engine metrics with reg.
func NewEngineMetrics(reg Registry) (*EngineMetrics, error) {
	turns, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "turns_total",
		Help: "Activity turns run, by kind and outcome",
	}, []string{"kind", "outcome"})
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}
	resumes, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "resumes_total",
		Help: "Backlogged activities resumed automatically, by kind",
	}, []string{"kind"})
	if err != nil {
		return nil, fmt.Errorf("creating resumes counter: %w", err)
	}
	backlog, err := reg.NewGaugeVec(prometheus.GaugeOpts{
		Name: "backlog_depth",
		Help: "Number of suspended activities per actor",
	}, []string{"actor"})
	if err != nil {
		return nil, fmt.Errorf("creating backlog gauge: %w", err)
	}
	return &EngineMetrics{turns: turns, resumes: resumes, backlog: backlog}, nil
}

func (m *EngineMetrics) ObserveTurn(_, kindID string, outcome activity.Outcome) {
	m.turns.With(prometheus.Labels{"kind": kindID, "outcome": outcome.String()}).Inc()
}

func (m *EngineMetrics) ObserveResume(_, kindID string) {
	m.resumes.With(prometheus.Labels{"kind": kindID}).Inc()
}

func (m *EngineMetrics) ObserveBacklog(actorID string, depth int) {
	m.backlog.With(prometheus.Labels{"actor": actorID}).Set(float64(depth))
}

var _ activity.Observer = (*EngineMetrics)(nil)
