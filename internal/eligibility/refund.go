package eligibility

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/refset/returns-assistant/internal/returns"
)

// DamagedCondition is the product condition that triggers the damage deduction
const DamagedCondition = "damaged"

var damagedRefundRate = decimal.RequireFromString("0.7")

// Refund computes the amount to refund and explains how it was derived.
//
// The policy deduction is applied first. Reason and condition overrides are
// then applied on top and replace (never stack with) the deducted amount:
// defective and wrong-item claims get the full price, damaged items get 70%.
// A configured restocking fee therefore has no effect on those claims.
func (e *Evaluator) Refund(policy *returns.StructuredPolicy, claim *returns.ReturnClaim) (float64, string) {
	price := decimal.NewFromFloat(claim.Product.Price)

	amount := price
	explanation := "Full refund (no deductions)"
	if policy.RefundDeductionPct > 0 {
		pct := decimal.NewFromFloat(policy.RefundDeductionPct)
		amount = price.Sub(price.Mul(pct).Div(decimal.NewFromInt(100)))
		explanation = fmt.Sprintf("Restocking fee of %s%% applied", pct.String())
	}

	switch {
	case claim.Reason == returns.ReasonDefective:
		amount = price
		explanation = "Full refund for defective item"
	case claim.Reason == returns.ReasonWrongItem:
		amount = price
		explanation = "Full refund for wrong item shipped"
	case claim.Product.Condition == DamagedCondition:
		amount = price.Mul(damagedRefundRate)
		explanation = "30% deduction applied for item damage"
	}
	return amount.InexactFloat64(), explanation
}
