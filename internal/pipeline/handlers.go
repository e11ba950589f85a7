package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/refset/returns-assistant/internal/eligibility"
	"github.com/refset/returns-assistant/internal/kafka"
	"github.com/refset/returns-assistant/internal/returns"
	"github.com/refset/returns-assistant/internal/store"
)

// PollClaims evaluates one batch of pending claims and publishes a decision
// for each
func (p *Pipeline) PollClaims(ctx context.Context) error {
	claims, err := p.deps.Claims.Poll(ctx)
	if err != nil {
		return err
	}
	if len(claims) == 0 {
		return nil
	}
	p.log.Debug("Polled pending claims", "count", len(claims))

	for i := range claims {
		if err := p.decide(ctx, &claims[i]); err != nil {
			p.log.Error("Claim decision failed", "claim_id", claims[i].ClaimID, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) decide(ctx context.Context, claim *returns.ReturnClaim) error {
	sellerID := claim.Product.SellerID
	now := p.deps.Now()
	decision := kafka.Decision{
		ClaimID:    claim.ClaimID,
		SellerID:   sellerID,
		CustomerID: claim.CustomerID,
		DecidedAt:  now,
	}

	policy, err := p.deps.Policies.Get(ctx, sellerID)
	if errors.Is(err, store.ErrPolicyNotFound) {
		p.log.Warn("No policy for seller", "seller_id", sellerID, "claim_id", claim.ClaimID)
		p.deps.Metrics.LookupFailed("policy")
		decision.Error = store.ErrPolicyNotFound.Error()
		return p.deps.Publisher.PublishDecision(ctx, decision)
	}
	if err != nil {
		return err
	}

	verdict := p.evaluator.Evaluate(policy, claim)
	refund, why := p.evaluator.Refund(policy, claim)
	if !verdict.IsEligible {
		refund, why = 0, ""
	}
	decision.PolicyID = policy.PolicyID
	decision.Verdict = &verdict
	decision.RefundAmount = refund
	decision.RefundReason = why
	decision.NextSteps = eligibility.NextSteps(policy, &verdict)

	if err := p.deps.Claims.Decide(ctx, claim.ClaimID, verdict.IsEligible, refund, now); err != nil {
		return err
	}
	if err := p.deps.Publisher.PublishDecision(ctx, decision); err != nil {
		return fmt.Errorf("publish decision: %w", err)
	}
	p.deps.Metrics.ObserveDecision(sellerID, &verdict, refund)
	p.log.Info("Claim decided",
		"claim_id", claim.ClaimID,
		"seller_id", sellerID,
		"eligible", verdict.IsEligible,
		"fraud_score", verdict.FraudScore,
		"refund", refund)
	return nil
}

// HandleMessage runs one chat turn: load or start the conversation, attach
// seller policy and claim context, route, publish, then persist. A message
// whose id matches the last one stored for the conversation has already been
// handled and is skipped, so redelivery never appends a turn twice.
func (p *Pipeline) HandleMessage(ctx context.Context, msg kafka.ChatMessage) error {
	log := p.log.With("conversation_id", msg.ConversationID)

	state, err := p.deps.Conversations.Get(ctx, msg.ConversationID)
	if errors.Is(err, store.ErrConversationNotFound) {
		state = returns.NewConversation(msg.ConversationID, p.deps.Now())
		state.CustomerID = msg.CustomerID
		state.SellerID = msg.SellerID
		log.Debug("Started conversation", "seller_id", msg.SellerID)
	} else if err != nil {
		return err
	}
	if msg.MessageID != "" && msg.MessageID == state.LastMessageID {
		log.Debug("Skipping handled message", "message_id", msg.MessageID)
		return nil
	}

	if err := p.attachContext(ctx, &state, msg); err != nil {
		return err
	}

	reply, next := p.router.Handle(state, msg.Text)

	err = p.deps.Publisher.PublishReply(ctx, kafka.ChatReply{
		ConversationID: next.ConversationID,
		Text:           reply.Text,
		Intent:         string(reply.Intent),
		Sentiment:      next.Sentiment,
		Escalated:      reply.Escalated,
		RepliedAt:      next.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("publish reply: %w", err)
	}
	if reply.Escalated {
		err := p.deps.Publisher.PublishEscalation(ctx, kafka.Escalation{
			ConversationID:   next.ConversationID,
			CustomerID:       next.CustomerID,
			SellerID:         next.SellerID,
			Reason:           next.EscalationReason,
			Sentiment:        next.Sentiment,
			FrustrationLevel: next.FrustrationLevel,
			LastMessage:      msg.Text,
			MessageCount:     next.MessageCount,
			EscalatedAt:      next.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("publish escalation: %w", err)
		}
		log.Warn("Conversation escalated", "reason", next.EscalationReason)
	}

	next.LastMessageID = msg.MessageID
	if err := p.deps.Conversations.Save(ctx, next); err != nil {
		return err
	}
	p.deps.Metrics.ObserveMessage(string(reply.Intent), next.Sentiment, reply.Escalated)
	return nil
}

// attachContext loads the seller policy and the claim the conversation refers
// to. Both are reloaded every turn because sellers update policies and claims
// change status outside the conversation. Unknown sellers and claims are
// logged and left out; the router then asks the customer for what is missing.
func (p *Pipeline) attachContext(ctx context.Context, state *returns.ConversationState, msg kafka.ChatMessage) error {
	if state.SellerID == "" {
		state.SellerID = msg.SellerID
	}
	if state.SellerID != "" {
		policy, err := p.deps.Policies.Get(ctx, state.SellerID)
		switch {
		case errors.Is(err, store.ErrPolicyNotFound):
			p.log.Warn("No policy for seller", "seller_id", state.SellerID, "conversation_id", state.ConversationID)
			p.deps.Metrics.LookupFailed("policy")
		case err != nil:
			return err
		default:
			state.Policy = policy
		}
	}

	if msg.ClaimID != "" {
		state.ClaimID = msg.ClaimID
	}
	if state.ClaimID == "" {
		return nil
	}
	claim, err := p.deps.Claims.Get(ctx, state.ClaimID)
	switch {
	case errors.Is(err, store.ErrClaimNotFound):
		p.log.Warn("Unknown claim", "claim_id", state.ClaimID, "conversation_id", state.ConversationID)
		p.deps.Metrics.LookupFailed("claim")
	case err != nil:
		return err
	default:
		state.Claim = claim
	}
	return nil
}
