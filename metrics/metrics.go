// Package metrics exposes prometheus instrumentation for the governance
// engine and its serving layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commondao/governance-backend/types"
)

// Finalization outcomes.
const (
	OutcomePassed    = "passed"
	OutcomeFailed    = "failed"
	OutcomeEmergency = "emergency"
)

// Provider owns a private registry so two providers never collide on
// metric names, which matters in tests.
type Provider struct {
	registry *prometheus.Registry

	operations    *prometheus.CounterVec
	finalizations *prometheus.CounterVec
	execFailures  prometheus.Counter

	activeParticipants prometheus.Gauge
	totalDeposited     prometheus.Gauge
	openProposals      prometheus.Gauge
	journalSeq         prometheus.Gauge
}

func New(namespace string) (*Provider, error) {
	p := &Provider{
		registry: prometheus.NewRegistry(),

		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Governance operations handled, by operation and result",
			},
			[]string{"op", "result"},
		),
		finalizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "finalizations_total",
				Help:      "Finished ballots by outcome",
			},
			[]string{"outcome"},
		),
		execFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "execution_failures_total",
			Help:      "Finalizations aborted by a failing target call",
		}),

		activeParticipants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_participants",
			Help:      "Current activeUsers counter of the engine",
		}),
		totalDeposited: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_deposited",
			Help:      "Voting tokens held by the contract",
		}),
		openProposals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_proposals",
			Help:      "Ballots created and not yet finished",
		}),
		journalSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "journal_seq",
			Help:      "Highest journal sequence drained by the indexer",
		}),
	}

	for _, c := range []prometheus.Collector{
		p.operations,
		p.finalizations,
		p.execFailures,
		p.activeParticipants,
		p.totalDeposited,
		p.openProposals,
		p.journalSeq,
	} {
		if err := p.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Handler serves the provider's registry in the prometheus text format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Provider) MarkOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.operations.WithLabelValues(op, result).Inc()
}

func (p *Provider) MarkFinalization(outcome string) {
	p.finalizations.WithLabelValues(outcome).Inc()
}

func (p *Provider) MarkExecutionFailure() {
	p.execFailures.Inc()
}

func (p *Provider) SetJournalSeq(seq uint64) {
	p.journalSeq.Set(float64(seq))
}

// ObserveSnapshot pushes an engine snapshot into the gauges.
func (p *Provider) ObserveSnapshot(stats *types.GovernanceStats) {
	p.activeParticipants.Set(float64(stats.ActiveParticipants))
	p.totalDeposited.Set(float64(stats.TotalDeposited))
	p.openProposals.Set(float64(stats.OpenProposals))
}
