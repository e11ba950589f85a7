// Package metrics exposes operator-facing Prometheus metrics for the
// returns pipeline.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/refset/returns-assistant/internal/returns"
)

const namespace = "returns"

// Metrics holds every collector on a private registry
type Metrics struct {
	registry *prometheus.Registry

	decisions   *prometheus.CounterVec
	fraudScores prometheus.Histogram
	refunds     prometheus.Counter
	messages    *prometheus.CounterVec
	escalations prometheus.Counter
	lookups     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Claims evaluated, by seller and outcome.",
		}, []string{"seller_id", "eligible"}),
		fraudScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fraud_score",
			Help:      "Fraud score of evaluated claims.",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.5, 0.7, 1},
		}),
		refunds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refund_amount_total",
			Help:      "Sum of refunds granted to eligible claims.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Customer messages handled, by intent and sentiment.",
		}, []string{"intent", "sentiment"}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Conversations handed to a human.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Unknown sellers, policies or conversations.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.decisions, m.fraudScores, m.refunds, m.messages, m.escalations, m.lookups,
	)
	return m
}

// ObserveDecision records one evaluated claim
func (m *Metrics) ObserveDecision(sellerID string, v *returns.EligibilityVerdict, refund float64) {
	m.decisions.WithLabelValues(sellerID, strconv.FormatBool(v.IsEligible)).Inc()
	m.fraudScores.Observe(v.FraudScore)
	if v.IsEligible {
		m.refunds.Add(refund)
	}
}

// ObserveMessage records one routed customer message
func (m *Metrics) ObserveMessage(intent string, sentiment returns.Sentiment, escalated bool) {
	m.messages.WithLabelValues(intent, string(sentiment)).Inc()
	if escalated {
		m.escalations.Inc()
	}
}

// LookupFailed counts a missing seller policy or conversation
func (m *Metrics) LookupFailed(kind string) {
	m.lookups.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
