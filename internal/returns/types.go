package returns

import (
	"slices"
	"time"
)

// RefundType is how a seller pays out an accepted return
type RefundType string

const (
	RefundFull        RefundType = "full"
	RefundPartial     RefundType = "partial"
	RefundStoreCredit RefundType = "store_credit"
	RefundReplacement RefundType = "replacement"
)

// Wildcards accepted in eligible categories and conditions
const (
	AllCategories = "all"
	AnyCondition  = "*"
)

// Reason is the customer's stated reason for a return
type Reason string

const (
	ReasonDefective        Reason = "defective"
	ReasonDamagedInTransit Reason = "damaged_in_transit"
	ReasonNotAsDescribed   Reason = "not_as_described"
	ReasonWrongItem        Reason = "wrong_item"
	ReasonChangedMind      Reason = "changed_mind"
	ReasonTooSmall         Reason = "too_small"
	ReasonTooLarge         Reason = "too_large"
	ReasonOther            Reason = "other"
)

// Reasons lists every valid return reason in declaration order
var Reasons = []Reason{
	ReasonDefective,
	ReasonDamagedInTransit,
	ReasonNotAsDescribed,
	ReasonWrongItem,
	ReasonChangedMind,
	ReasonTooSmall,
	ReasonTooLarge,
	ReasonOther,
}

// Valid reports whether r is one of the known reasons
func (r Reason) Valid() bool {
	return slices.Contains(Reasons, r)
}

// ReturnStatus tracks a return through fulfilment
type ReturnStatus string

const (
	StatusInitiated      ReturnStatus = "initiated"
	StatusLabelGenerated ReturnStatus = "label_generated"
	StatusInTransit      ReturnStatus = "in_transit"
	StatusReceived       ReturnStatus = "received"
	StatusInspecting     ReturnStatus = "inspecting"
	StatusApproved       ReturnStatus = "approved"
	StatusRejected       ReturnStatus = "rejected"
	StatusRefunded       ReturnStatus = "refunded"
)

// RefundStatus tracks the payout for a return
type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundApproved   RefundStatus = "approved"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundRejected   RefundStatus = "rejected"
)

// StructuredPolicy is the machine-checkable rule set extracted from a
// seller's free-text return policy. Values are never mutated after
// extraction; share them freely across goroutines.
type StructuredPolicy struct {
	PolicyID   string `json:"policy_id,omitempty" yaml:"-"`
	SellerID   string `json:"seller_id,omitempty" yaml:"-"`
	PolicyName string `json:"policy_name,omitempty" yaml:"-"`

	ReturnWindowDays   int        `json:"return_window_days" yaml:"return_window_days"`
	RefundType         RefundType `json:"refund_type" yaml:"refund_type"`
	RefundDeductionPct float64    `json:"refund_deduction_pct" yaml:"refund_deduction_pct"`

	EligibleCategories []string `json:"eligible_categories" yaml:"eligible_categories"`
	EligibleConditions []string `json:"eligible_conditions" yaml:"eligible_conditions"`
	Exclusions         []string `json:"exclusions" yaml:"exclusions,omitempty"`
	FinalSaleItems     []string `json:"final_sale_items" yaml:"final_sale_items,omitempty"`

	ApprovalTimeHours int `json:"approval_time_hours" yaml:"approval_time_hours"`
	RefundTimeDays    int `json:"refund_time_days" yaml:"refund_time_days"`

	SupportsReplacement       bool `json:"supports_replacement" yaml:"supports_replacement"`
	SupportsPickup            bool `json:"supports_pickup" yaml:"supports_pickup"`
	RequiresOriginalPackaging bool `json:"requires_original_packaging" yaml:"requires_original_packaging"`

	OriginalText         string    `json:"original_text,omitempty" yaml:"-"`
	OriginalTokenCount   int       `json:"original_token_count" yaml:"-"`
	CompressedTokenCount int       `json:"compressed_token_count" yaml:"-"`
	CreatedAt            time.Time `json:"created_at" yaml:"-"`
}

// CompressionRatio is compressed tokens over original tokens, zero when the
// original text was empty. Used for reporting only.
func (p *StructuredPolicy) CompressionRatio() float64 {
	if p.OriginalTokenCount == 0 {
		return 0
	}
	return float64(p.CompressedTokenCount) / float64(p.OriginalTokenCount)
}

// AcceptsAnyCategory reports whether the category list holds the wildcard
func (p *StructuredPolicy) AcceptsAnyCategory() bool {
	return slices.Contains(p.EligibleCategories, AllCategories)
}

// AcceptsAnyCondition reports whether the condition list holds a wildcard
func (p *StructuredPolicy) AcceptsAnyCondition() bool {
	return slices.Contains(p.EligibleConditions, AllCategories) ||
		slices.Contains(p.EligibleConditions, AnyCondition)
}

// Product is the purchased item a claim refers to
type Product struct {
	ProductID    string    `json:"product_id,omitempty"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	PurchaseDate time.Time `json:"purchase_date"`
	Condition    string    `json:"condition"`
	SKU          string    `json:"sku,omitempty"`
	SellerID     string    `json:"seller_id,omitempty"`
}

// ReturnClaim is a customer's request to return one product
type ReturnClaim struct {
	ClaimID     string  `json:"claim_id"`
	CustomerID  string  `json:"customer_id,omitempty"`
	Product     Product `json:"product"`
	Reason      Reason  `json:"reason"`
	Description string  `json:"description,omitempty"`

	Status       ReturnStatus `json:"status"`
	RefundStatus RefundStatus `json:"refund_status"`
	RefundAmount float64      `json:"refund_amount,omitempty"`
	LabelURL     string       `json:"label_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	ReceivedAt   *time.Time   `json:"received_at,omitempty"`
	RefundedAt   *time.Time   `json:"refunded_at,omitempty"`
}

// EligibilityVerdict is the explainable outcome of evaluating a claim.
// IsEligible is true exactly when ChecksFailed is empty.
type EligibilityVerdict struct {
	IsEligible       bool     `json:"is_eligible"`
	ChecksPassed     []string `json:"checks_passed"`
	ChecksFailed     []string `json:"checks_failed"`
	Reasons          []string `json:"reasons"`
	Warnings         []string `json:"warnings"`
	Suggestions      []string `json:"suggestions"`
	FraudScore       float64  `json:"fraud_score"`
	FraudExplanation string   `json:"fraud_explanation"`
}

// Sentiment is the coarse mood detected in a customer message
type Sentiment string

const (
	SentimentSatisfied  Sentiment = "satisfied"
	SentimentNeutral    Sentiment = "neutral"
	SentimentFrustrated Sentiment = "frustrated"
	SentimentAngry      Sentiment = "angry"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a conversation log
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is everything the dialogue router knows about one
// conversation. It is keyed by ConversationID in the conversation store.
// Claim and Policy are attached fresh for every turn and never stored;
// ClaimID remembers which claim to attach.
type ConversationState struct {
	ConversationID     string            `json:"conversation_id"`
	CustomerID         string            `json:"customer_id,omitempty"`
	SellerID           string            `json:"seller_id,omitempty"`
	ClaimID            string            `json:"claim_id,omitempty"`
	Messages           []Message         `json:"messages"`
	Sentiment          Sentiment         `json:"sentiment"`
	FrustrationLevel   float64           `json:"frustration_level"`
	EscalationRequired bool              `json:"escalation_required"`
	EscalationReason   string            `json:"escalation_reason,omitempty"`
	MessageCount       int               `json:"message_count"`
	LastMessageID      string            `json:"last_message_id,omitempty"`
	Claim              *ReturnClaim      `json:"-"`
	Policy             *StructuredPolicy `json:"-"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// NewConversation starts an empty conversation in the neutral state
func NewConversation(id string, now time.Time) ConversationState {
	return ConversationState{
		ConversationID: id,
		Sentiment:      SentimentNeutral,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a copy whose message log can be appended to without
// touching the receiver. Claim and Policy are shared; both are treated
// as read-only by the router.
func (s ConversationState) Clone() ConversationState {
	out := s
	out.Messages = slices.Clone(s.Messages)
	return out
}
