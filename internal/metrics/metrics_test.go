package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/refset/returns-assistant/internal/returns"
)

func TestMetrics(t *testing.T) {
	t.Run("Should count decisions and refunds", func(t *testing.T) {
		m := New()
		m.ObserveDecision("seller_1", &returns.EligibilityVerdict{IsEligible: true, FraudScore: 0.15}, 84.5)
		m.ObserveDecision("seller_1", &returns.EligibilityVerdict{IsEligible: false, FraudScore: 0.3}, 50)

		assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("seller_1", "true")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("seller_1", "false")))
		assert.Equal(t, 84.5, testutil.ToFloat64(m.refunds))
	})

	t.Run("Should count messages and escalations", func(t *testing.T) {
		m := New()
		m.ObserveMessage("escalation", returns.SentimentAngry, true)
		m.ObserveMessage("policy_question", returns.SentimentNeutral, false)
		m.LookupFailed("policy")

		assert.Equal(t, 1.0, testutil.ToFloat64(m.escalations))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.messages.WithLabelValues("policy_question", "neutral")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("policy")))
	})

	t.Run("Should expose collectors over HTTP", func(t *testing.T) {
		m := New()
		m.ObserveMessage("general_query", returns.SentimentSatisfied, false)
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), `returns_messages_total{intent="general_query",sentiment="satisfied"} 1`)
	})
}
