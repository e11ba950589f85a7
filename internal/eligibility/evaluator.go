// Package eligibility decides whether a return claim satisfies a seller's
// structured policy, how risky it looks, and how much to refund.
//
// An Evaluator holds no per-call state: Evaluate and Refund are pure
// functions of the policy, the claim and the evaluator's clock, and a single
// Evaluator may be shared by any number of goroutines.
package eligibility

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/refset/returns-assistant/internal/returns"
)

// Check names recorded in EligibilityVerdict.ChecksPassed / ChecksFailed
const (
	CheckWindowPassed     = "Return within policy window"
	CheckWindowFailed     = "Return outside policy window"
	CheckCategoryPassed   = "Product category is eligible"
	CheckCategoryFailed   = "Product category not eligible"
	CheckConditionPassed  = "Product condition meets requirements"
	CheckConditionWaived  = "Defective/damaged items covered"
	CheckConditionFailed  = "Product condition doesn't meet requirements"
	CheckExclusionPassed  = "Product is not on exclusion list"
	CheckExclusionFailed  = "Product is on exclusion list"
	CheckFraudPassed      = "Fraud check passed"
	CheckFraudFailed      = "High fraud risk detected"
	ReasonFlaggedForFraud = "This return has been flagged for review"
)

// Suggestions attached to verdicts
const (
	SuggestFinalSale   = "This item is final sale. No returns are accepted."
	SuggestReplacement = "You can choose a replacement instead of refund if preferred"
	SuggestPickup      = "Free pickup available if you prefer not to ship"
)

// Evaluator runs the eligibility checks
type Evaluator struct {
	now        func() time.Time
	indicators []FraudIndicator
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithClock sets the time source used to age claims
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// WithFraudIndicators replaces the fraud signal table
func WithFraudIndicators(indicators ...FraudIndicator) Option {
	return func(e *Evaluator) {
		e.indicators = indicators
	}
}

// New creates an Evaluator using the wall clock and the default fraud
// indicators unless overridden.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		now:        time.Now,
		indicators: DefaultFraudIndicators,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ElapsedDays is the number of whole days between purchase and now,
// truncated toward zero.
func ElapsedDays(purchase, now time.Time) int {
	return int(now.Sub(purchase) / (24 * time.Hour))
}

// Evaluate runs the checks in order: return window, category, condition,
// exclusions, fraud. The claim is eligible when no check failed.
func (e *Evaluator) Evaluate(policy *returns.StructuredPolicy, claim *returns.ReturnClaim) returns.EligibilityVerdict {
	v := returns.EligibilityVerdict{
		ChecksPassed: []string{},
		ChecksFailed: []string{},
		Reasons:      []string{},
		Warnings:     []string{},
		Suggestions:  []string{},
	}
	elapsed := ElapsedDays(claim.Product.PurchaseDate, e.now())

	if ok, msg := checkWindow(policy, elapsed); ok {
		v.ChecksPassed = append(v.ChecksPassed, CheckWindowPassed)
	} else {
		v.ChecksFailed = append(v.ChecksFailed, CheckWindowFailed)
		v.Reasons = append(v.Reasons, msg)
	}

	if ok, msg := checkCategory(policy, claim); ok {
		v.ChecksPassed = append(v.ChecksPassed, CheckCategoryPassed)
	} else {
		v.ChecksFailed = append(v.ChecksFailed, CheckCategoryFailed)
		v.Reasons = append(v.Reasons, msg)
	}

	if ok, msg := checkCondition(policy, claim); ok {
		v.ChecksPassed = append(v.ChecksPassed, CheckConditionPassed)
	} else if conditionExempt(claim.Reason) {
		v.Warnings = append(v.Warnings, msg)
		v.ChecksPassed = append(v.ChecksPassed, CheckConditionWaived)
	} else {
		v.ChecksFailed = append(v.ChecksFailed, CheckConditionFailed)
		v.Reasons = append(v.Reasons, msg)
	}

	if ok, msg := checkExclusions(policy, claim); ok {
		v.ChecksPassed = append(v.ChecksPassed, CheckExclusionPassed)
	} else {
		v.ChecksFailed = append(v.ChecksFailed, CheckExclusionFailed)
		v.Reasons = append(v.Reasons, msg)
		v.Suggestions = append(v.Suggestions, SuggestFinalSale)
	}

	v.FraudScore, v.FraudExplanation = scoreFraud(e.indicators, claim, elapsed)
	switch {
	case v.FraudScore < FraudWarnThreshold:
		v.ChecksPassed = append(v.ChecksPassed, CheckFraudPassed)
	case v.FraudScore <= FraudFailThreshold:
		v.Warnings = append(v.Warnings, v.FraudExplanation)
	default:
		v.Warnings = append(v.Warnings, v.FraudExplanation)
		v.ChecksFailed = append(v.ChecksFailed, CheckFraudFailed)
		v.Reasons = append(v.Reasons, ReasonFlaggedForFraud)
	}

	v.IsEligible = len(v.ChecksFailed) == 0
	if v.IsEligible {
		if policy.SupportsReplacement {
			v.Suggestions = append(v.Suggestions, SuggestReplacement)
		}
		if policy.SupportsPickup {
			v.Suggestions = append(v.Suggestions, SuggestPickup)
		}
	}
	return v
}

// FraudScore returns the claim's fraud score and the triggered indicators
// joined by " | ".
func (e *Evaluator) FraudScore(claim *returns.ReturnClaim) (float64, string) {
	return scoreFraud(e.indicators, claim, ElapsedDays(claim.Product.PurchaseDate, e.now()))
}

func checkWindow(policy *returns.StructuredPolicy, elapsed int) (bool, string) {
	if elapsed <= policy.ReturnWindowDays {
		return true, fmt.Sprintf("Return submitted %d days after purchase (within %d-day window)", elapsed, policy.ReturnWindowDays)
	}
	return false, fmt.Sprintf("Return submitted %d days after purchase (exceeds %d-day window)", elapsed, policy.ReturnWindowDays)
}

func checkCategory(policy *returns.StructuredPolicy, claim *returns.ReturnClaim) (bool, string) {
	if policy.AcceptsAnyCategory() {
		return true, "All categories are eligible"
	}
	category := claim.Product.Category
	if slices.Contains(policy.EligibleCategories, category) {
		return true, fmt.Sprintf("Category '%s' is eligible", category)
	}
	return false, fmt.Sprintf("Category '%s' is not in eligible list: %s", category, strings.Join(policy.EligibleCategories, ", "))
}

func checkCondition(policy *returns.StructuredPolicy, claim *returns.ReturnClaim) (bool, string) {
	if policy.AcceptsAnyCondition() {
		return true, "All conditions are acceptable"
	}
	condition := claim.Product.Condition
	if slices.Contains(policy.EligibleConditions, condition) {
		return true, fmt.Sprintf("Condition '%s' is acceptable", condition)
	}
	return false, fmt.Sprintf("Condition '%s' doesn't match acceptable conditions: %s", condition, strings.Join(policy.EligibleConditions, ", "))
}

// conditionExempt reports whether the reason bypasses the condition gate
func conditionExempt(r returns.Reason) bool {
	return r == returns.ReasonDefective || r == returns.ReasonDamagedInTransit
}

func checkExclusions(policy *returns.StructuredPolicy, claim *returns.ReturnClaim) (bool, string) {
	name := strings.ToLower(claim.Product.Name)
	category := strings.ToLower(claim.Product.Category)
	for _, ex := range policy.Exclusions {
		if needle := strings.ToLower(ex); needle != "" && strings.Contains(name, needle) {
			return false, fmt.Sprintf("Product matches exclusion pattern: %s", ex)
		}
	}
	for _, fs := range policy.FinalSaleItems {
		needle := strings.ToLower(fs)
		if needle != "" && (strings.Contains(name, needle) || strings.Contains(category, needle)) {
			return false, fmt.Sprintf("Product is in final sale category: %s", fs)
		}
	}
	return true, "Product is not on exclusion list"
}
