package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velvetlabs/doorman/internal/engines/policy"
	"github.com/velvetlabs/doorman/pkg/core"
)

// Prometheus exposes decision-loop metrics on an injected registry.
type Prometheus struct {
	decisions      *prometheus.CounterVec
	seatsRemaining prometheus.Gauge
	rejected       prometheus.Gauge
	deficit        *prometheus.GaugeVec
	shadowPrice    *prometheus.GaugeVec
	totalValue     prometheus.Histogram
}

// NewPrometheus registers the doorman collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doorman_decisions_total",
			Help: "Decisions made, partitioned by outcome and candidate kind.",
		}, []string{"outcome", "kind"}),
		seatsRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "doorman_seats_remaining",
			Help: "Unfilled seats in the venue.",
		}),
		rejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "doorman_rejected_count",
			Help: "People rejected so far.",
		}),
		deficit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "doorman_constraint_deficit",
			Help: "Remaining shortfall per constraint attribute.",
		}, []string{"attribute"}),
		shadowPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "doorman_shadow_price",
			Help: "Learned dual price per constraint attribute.",
		}, []string{"attribute"}),
		totalValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "doorman_candidate_value",
			Help:    "Distribution of candidate total values under dual pricing.",
			Buckets: prometheus.LinearBuckets(-5, 1, 16),
		}),
	}
	reg.MustRegister(p.decisions, p.seatsRemaining, p.rejected, p.deficit, p.shadowPrice, p.totalValue)
	return p
}

func (p *Prometheus) OnDecision(state *core.GameState, person core.Person, decision policy.Decision) {
	outcome := "reject"
	if decision.Accept {
		outcome = "accept"
	}
	kind := "filler"
	if decision.Scoring != nil && decision.Scoring.Helper {
		kind = "helper"
	}
	p.decisions.WithLabelValues(outcome, kind).Inc()

	if decision.Scoring == nil {
		return
	}
	for attribute, price := range decision.Scoring.ShadowPrices {
		p.shadowPrice.WithLabelValues(attribute).Set(price)
	}
	if decision.Scoring.Policy == string(policy.KindDual) {
		p.totalValue.Observe(decision.Scoring.TotalValue)
	}
}

func (p *Prometheus) OnStateUpdate(state *core.GameState) {
	p.seatsRemaining.Set(float64(state.SeatsRemaining()))
	p.rejected.Set(float64(state.RejectedCount))
	for attribute, d := range state.Deficits() {
		p.deficit.WithLabelValues(attribute).Set(float64(d))
	}
}

func (p *Prometheus) OnGameEnd(status string, admitted, rejected int, constraintsMet bool) {
	p.rejected.Set(float64(rejected))
}
