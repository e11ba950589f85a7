// Package policy turns free-text merchant return policies into
// StructuredPolicy values. Every field is extracted by an independent rule
// with a documented default, so extraction never fails.
package policy

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/refset/returns-assistant/internal/returns"
)

// Extract runs every field rule over text and assembles the result.
// Identity fields (PolicyID, SellerID, PolicyName, CreatedAt) are left empty;
// use Parse to fill them.
func Extract(text string) returns.StructuredPolicy {
	p := returns.StructuredPolicy{
		ReturnWindowDays:          ExtractReturnWindow(text),
		RefundType:                ExtractRefundType(text),
		RefundDeductionPct:        ExtractDeductionPct(text),
		EligibleCategories:        ExtractCategories(text),
		EligibleConditions:        ExtractConditions(text),
		Exclusions:                ExtractExclusions(text),
		FinalSaleItems:            ExtractFinalSale(text),
		ApprovalTimeHours:         ExtractApprovalHours(text),
		RefundTimeDays:            ExtractRefundDays(text),
		SupportsReplacement:       ExtractSupportsReplacement(text),
		SupportsPickup:            ExtractSupportsPickup(text),
		RequiresOriginalPackaging: ExtractRequiresPackaging(text),
		OriginalText:              text,
	}
	p.OriginalTokenCount = CountTokens(text)
	p.CompressedTokenCount = CountTokens(Compact(&p))
	return p
}

// Parse extracts text and stamps it with a fresh policy id for sellerID
func Parse(text, sellerID, name string, now time.Time) returns.StructuredPolicy {
	return stamp(Extract(text), sellerID, name, now)
}

func stamp(p returns.StructuredPolicy, sellerID, name string, now time.Time) returns.StructuredPolicy {
	p.PolicyID = NewPolicyID()
	p.SellerID = sellerID
	p.PolicyName = name
	p.CreatedAt = now
	return p
}

// NewPolicyID returns an id of the form policy_<12 hex chars>
func NewPolicyID() string {
	return "policy_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Compact renders the actionable rules of p as YAML. This is the compressed
// representation used for token accounting.
func Compact(p *returns.StructuredPolicy) string {
	out, err := yaml.Marshal(p)
	if err != nil {
		return ""
	}
	return string(out)
}

// CountTokens approximates model tokens as 1.3 per whitespace separated word
func CountTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
