package kafka

import (
	"time"

	"github.com/refset/returns-assistant/internal/returns"
)

// Decision is published for every claim the pipeline evaluates. When the
// seller's policy could not be found Verdict is nil and Error says why.
type Decision struct {
	ClaimID      string                      `json:"claim_id"`
	SellerID     string                      `json:"seller_id"`
	CustomerID   string                      `json:"customer_id,omitempty"`
	PolicyID     string                      `json:"policy_id,omitempty"`
	Verdict      *returns.EligibilityVerdict `json:"verdict,omitempty"`
	RefundAmount float64                     `json:"refund_amount"`
	RefundReason string                      `json:"refund_reason,omitempty"`
	NextSteps    []string                    `json:"next_steps,omitempty"`
	Error        string                      `json:"error,omitempty"`
	DecidedAt    time.Time                   `json:"decided_at"`
}

// ChatMessage is an inbound customer message. MessageID defaults to the
// record's topic/partition/offset when the sender leaves it empty.
type ChatMessage struct {
	MessageID      string    `json:"message_id,omitempty"`
	ConversationID string    `json:"conversation_id"`
	CustomerID     string    `json:"customer_id,omitempty"`
	SellerID       string    `json:"seller_id,omitempty"`
	ClaimID        string    `json:"claim_id,omitempty"`
	Text           string    `json:"text"`
	SentAt         time.Time `json:"sent_at"`
}

// ChatReply is the assistant's answer to one ChatMessage
type ChatReply struct {
	ConversationID string            `json:"conversation_id"`
	Text           string            `json:"text"`
	Intent         string            `json:"intent"`
	Sentiment      returns.Sentiment `json:"sentiment"`
	Escalated      bool              `json:"escalated"`
	RepliedAt      time.Time         `json:"replied_at"`
}

// Escalation hands a conversation to the human support queue
type Escalation struct {
	ConversationID   string            `json:"conversation_id"`
	CustomerID       string            `json:"customer_id,omitempty"`
	SellerID         string            `json:"seller_id,omitempty"`
	Reason           string            `json:"reason"`
	Sentiment        returns.Sentiment `json:"sentiment"`
	FrustrationLevel float64           `json:"frustration_level"`
	LastMessage      string            `json:"last_message"`
	MessageCount     int               `json:"message_count"`
	EscalatedAt      time.Time         `json:"escalated_at"`
}
