// Package claims turns loosely typed external input into a ReturnClaim.
// Everything downstream assumes a well-formed claim, so malformed dates,
// unknown reason tokens and missing fields are rejected here.
package claims

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/refset/returns-assistant/internal/returns"
)

// ErrInvalidClaim wraps every rejection from Build
var ErrInvalidClaim = errors.New("invalid return claim")

// Defaults applied to optional request fields
const (
	DefaultProductName = "Product"
	DefaultCategory    = "electronics"
	DefaultCondition   = "new"
	DefaultSKU         = "SKU-001"
	DefaultReason      = returns.ReasonChangedMind
)

// Request is a return claim as submitted by a customer-facing client
type Request struct {
	SellerID     string  `json:"seller_id"     validate:"required"`
	CustomerID   string  `json:"customer_id"`
	ProductName  string  `json:"product_name"  validate:"max=200"`
	Category     string  `json:"category"      validate:"max=100"`
	Price        float64 `json:"price"         validate:"gte=0"`
	PurchaseDate string  `json:"purchase_date" validate:"required"`
	Condition    string  `json:"condition"     validate:"max=50"`
	SKU          string  `json:"sku"`
	Reason       string  `json:"reason"`
	Description  string  `json:"description"   validate:"max=2000"`
}

// Builder validates requests and assembles claims
type Builder struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewBuilder creates a Builder stamping claims with now
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
}

// Build validates req and returns a new claim in the initiated state
func (b *Builder) Build(req Request) (*returns.ReturnClaim, error) {
	if err := b.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
	purchased, err := ParseDate(req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	reason := DefaultReason
	if strings.TrimSpace(req.Reason) != "" {
		if reason, err = ParseReason(req.Reason); err != nil {
			return nil, err
		}
	}

	now := b.now()
	if purchased.After(now) {
		return nil, fmt.Errorf("%w: purchase date %s is in the future", ErrInvalidClaim, req.PurchaseDate)
	}
	customerID := req.CustomerID
	if customerID == "" {
		customerID = NewID("cust")
	}

	return &returns.ReturnClaim{
		ClaimID:    NewID("ret"),
		CustomerID: customerID,
		Product: returns.Product{
			ProductID:    NewID("prod"),
			Name:         orDefault(req.ProductName, DefaultProductName),
			Category:     strings.ToLower(orDefault(req.Category, DefaultCategory)),
			Price:        req.Price,
			PurchaseDate: purchased,
			Condition:    strings.ToLower(orDefault(req.Condition, DefaultCondition)),
			SKU:          orDefault(req.SKU, DefaultSKU),
			SellerID:     req.SellerID,
		},
		Reason:       reason,
		Description:  req.Description,
		Status:       returns.StatusInitiated,
		RefundStatus: returns.RefundPending,
		CreatedAt:    now,
	}, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 timestamps
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparseable purchase date %q", ErrInvalidClaim, s)
	}
	return t, nil
}

// ParseReason maps a reason token such as "CHANGED_MIND" or "changed mind"
// onto a Reason
func ParseReason(s string) (returns.Reason, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	token = strings.NewReplacer(" ", "_", "-", "_").Replace(token)
	r := returns.Reason(token)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown reason %q", ErrInvalidClaim, s)
	}
	return r, nil
}

// NewID returns prefix_ followed by eight hex characters
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
