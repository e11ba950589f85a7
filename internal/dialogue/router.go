// Package dialogue routes customer chat messages about returns. Each turn is
// a pure transition from one ConversationState to the next: the router keeps
// no per-conversation state of its own and never mutates its input, so
// callers persist the returned state and serialize turns per conversation.
package dialogue

import (
	"fmt"
	"time"

	"github.com/refset/returns-assistant/internal/eligibility"
	"github.com/refset/returns-assistant/internal/returns"
)

// DefaultEscalationThreshold is the frustration level above which a
// conversation is handed to a human
const DefaultEscalationThreshold = 0.7

// Reply is the router's answer to one customer message
type Reply struct {
	Text      string                      `json:"text"`
	Intent    Intent                      `json:"intent"`
	Entities  Entities                    `json:"entities"`
	Escalated bool                        `json:"escalated"`
	Verdict   *returns.EligibilityVerdict `json:"verdict,omitempty"`
}

// Router classifies messages and builds templated responses
type Router struct {
	threshold float64
	evaluator *eligibility.Evaluator
	now       func() time.Time
}

// Option configures a Router
type Option func(*Router)

// WithEscalationThreshold sets the frustration level that triggers a hand-off
func WithEscalationThreshold(threshold float64) Option {
	return func(r *Router) {
		r.threshold = threshold
	}
}

// WithEvaluator sets the evaluator used for eligibility questions
func WithEvaluator(e *eligibility.Evaluator) Option {
	return func(r *Router) {
		r.evaluator = e
	}
}

// WithClock sets the time source for UpdatedAt stamps
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// NewRouter creates a Router with the default threshold and evaluator
func NewRouter(opts ...Option) *Router {
	r := &Router{
		threshold: DefaultEscalationThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.evaluator == nil {
		r.evaluator = eligibility.New(eligibility.WithClock(r.now))
	}
	return r
}

// Threshold returns the configured escalation threshold
func (r *Router) Threshold() float64 {
	return r.threshold
}

// Handle processes one customer message against state and returns the reply
// together with the next state. The input state is left untouched.
//
// Sentiment is recomputed for every message. When frustration exceeds the
// threshold the conversation is flagged for escalation and intent routing is
// skipped for that turn. The flag is never cleared here; later turns route
// normally but keep it set.
func (r *Router) Handle(state returns.ConversationState, text string) (Reply, returns.ConversationState) {
	next := state.Clone()
	next.Messages = append(next.Messages, returns.Message{Role: returns.RoleUser, Content: text})
	next.MessageCount++
	next.UpdatedAt = r.now()
	next.Sentiment, next.FrustrationLevel = DetectSentiment(text)

	var reply Reply
	if next.FrustrationLevel > r.threshold {
		next.EscalationRequired = true
		next.EscalationReason = fmt.Sprintf("High frustration detected (%.1f%%)", next.FrustrationLevel*100)
		reply = Reply{Text: escalationMessage, Intent: IntentEscalation, Escalated: true}
	} else {
		intent := ClassifyIntent(text)
		reply = r.respond(&next, intent, ExtractEntities(intent, text), text)
	}

	next.Messages = append(next.Messages, returns.Message{Role: returns.RoleAssistant, Content: reply.Text})
	return reply, next
}

func (r *Router) respond(state *returns.ConversationState, intent Intent, entities Entities, text string) Reply {
	reply := Reply{Intent: intent, Entities: entities}
	switch intent {
	case IntentCheckEligibility:
		reply.Text, reply.Verdict = r.eligibilityResponse(state)
	case IntentPolicyQuestion:
		reply.Text = policyResponse(state)
	case IntentInitiateReturn:
		reply.Text = initiateReturnResponse(entities)
	case IntentRefundStatus:
		reply.Text = refundStatusResponse(state)
	case IntentReplacementRequest:
		reply.Text = replacementResponse(state)
	case IntentPickupScheduling:
		reply.Text = pickupResponse(state, entities)
	case IntentTrackReturn:
		reply.Text = trackReturnResponse(state)
	default:
		reply.Text = generalResponse(text)
	}
	return reply
}
