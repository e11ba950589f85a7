package eligibility

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/refset/returns-assistant/internal/returns"
)

// Fraud score bands
const (
	FraudWarnThreshold = 0.5
	FraudFailThreshold = 0.7
)

// NoFraudIndicators is the explanation when no indicator fires
const NoFraudIndicators = "No fraud indicators detected"

// FraudIndicator is one additive risk signal. Weight is added to the score
// when Applies reports true; Describe explains the hit.
type FraudIndicator struct {
	Name     string
	Weight   float64
	Applies  func(claim *returns.ReturnClaim, elapsedDays int) bool
	Describe func(claim *returns.ReturnClaim) string
}

// DefaultFraudIndicators are the built-in signals, evaluated in order
var DefaultFraudIndicators = []FraudIndicator{
	{
		Name:   "high_value",
		Weight: 0.10,
		Applies: func(c *returns.ReturnClaim, _ int) bool {
			return c.Product.Price > 500
		},
		Describe: func(c *returns.ReturnClaim) string {
			return fmt.Sprintf("High-value item ($%.2f)", c.Product.Price)
		},
	},
	{
		Name:   "quick_return",
		Weight: 0.15,
		Applies: func(_ *returns.ReturnClaim, elapsed int) bool {
			return elapsed <= 1
		},
		Describe: func(*returns.ReturnClaim) string {
			return "Return submitted very quickly after purchase"
		},
	},
	{
		Name:   "abuse_prone_reason",
		Weight: 0.05,
		Applies: func(c *returns.ReturnClaim, _ int) bool {
			return slices.Contains([]returns.Reason{returns.ReasonChangedMind, returns.ReasonOther}, c.Reason)
		},
		Describe: func(c *returns.ReturnClaim) string {
			return fmt.Sprintf("Reason '%s' is common for returns abuse", c.Reason)
		},
	},
}

// scoreFraud sums the weights of every indicator that applies. Weights are
// summed as decimals so the score is exactly the sum of its parts.
func scoreFraud(indicators []FraudIndicator, claim *returns.ReturnClaim, elapsedDays int) (float64, string) {
	score := decimal.Zero
	var hits []string
	for _, ind := range indicators {
		if !ind.Applies(claim, elapsedDays) {
			continue
		}
		score = score.Add(decimal.NewFromFloat(ind.Weight))
		hits = append(hits, ind.Describe(claim))
	}
	if len(hits) == 0 {
		return 0, NoFraudIndicators
	}
	return score.InexactFloat64(), strings.Join(hits, " | ")
}
