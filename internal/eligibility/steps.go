package eligibility

import (
	"fmt"

	"github.com/refset/returns-assistant/internal/returns"
)

// SupportContact is shown whenever a customer is pointed to human support
const SupportContact = "support@example.com"

// NextSteps lists what the customer should do after a verdict, in order
func NextSteps(policy *returns.StructuredPolicy, v *returns.EligibilityVerdict) []string {
	if v.IsEligible {
		packaging := "Package your item securely"
		if policy.RequiresOriginalPackaging {
			packaging += " in its original packaging"
		}
		return []string{
			"1. Return approved!",
			"2. A return shipping label will be sent to your email",
			"3. " + packaging,
			"4. Drop off at your nearest carrier location",
			fmt.Sprintf("5. We'll inspect and process your refund within %d business days", policy.RefundTimeDays),
		}
	}

	steps := []string{"Unfortunately, this return doesn't meet our policy requirements."}
	if len(v.Suggestions) > 0 {
		steps = append(steps, "But we can help! Here are some alternatives:")
		steps = append(steps, v.Suggestions...)
	}
	return append(steps, "Need help? Contact our support team at "+SupportContact)
}
