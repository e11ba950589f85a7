package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/refset/returns-assistant/internal/eligibility"
	"github.com/refset/returns-assistant/internal/returns"
)

// Clarification prompts used when the conversation lacks context
const (
	NeedClaimDetails  = "I need more information about your return. Could you tell me:\n1. Which product are you returning?\n2. What's the reason for the return?\n3. When did you purchase it?"
	NeedSellerPolicy  = "I don't have your seller's policy information. Could you tell me which seller this is for?"
	NoActiveReturn    = "I don't have an active return request for you. Would you like to initiate a new return?"
	NoReturnToTrack   = "I don't have a return to track. Do you have a return ID or order number?"
	NoReplacements    = "Unfortunately, replacements are not available for this seller's products."
	NoPickupAvailable = "Pickup service is not available for this seller. You'll need to ship your return."
)

const escalationMessage = "I can tell this has been frustrating, and I want to make sure you get the best help.\n\n" +
	"I'm connecting you with our human support team who can provide personalized assistance.\n\n" +
	"**Support Team Contact:**\n" +
	"Email: " + eligibility.SupportContact + "\n" +
	"Phone: 1-800-RETURNS\n" +
	"Chat: A specialist will be with you shortly\n\n" +
	"We appreciate your patience and will resolve this as quickly as possible."

const capabilitiesMenu = "I'm here to help with returns! You can ask me about:\n" +
	"- Return eligibility\n" +
	"- Our return policy\n" +
	"- How to start a return\n" +
	"- Refund status\n" +
	"- Replacement options\n" +
	"- Pickup scheduling\n\n" +
	"What would you like to know?"

const dateLayout = "2006-01-02"

// faqEntries answer common general questions, checked in order
var faqEntries = []struct {
	keywords []string
	answer   string
}{
	{[]string{"how long"}, "Our typical refund processing takes 5-7 business days after we receive your return. The return shipping itself may take 3-5 days."},
	{[]string{"condition"}, "Your item should ideally be in its original condition. Minor wear is usually acceptable, but items should not be damaged."},
	{[]string{"shipping"}, "We'll provide you with a prepaid return shipping label. Most carriers offer free pickup options!"},
	{[]string{"contact", "support"}, "Our support team is available:\nEmail: " + eligibility.SupportContact + "\nPhone: 1-800-RETURNS (1-800-738-8767)\nLive chat: Mon-Fri, 9 AM - 6 PM"},
}

func bullets(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func formatPct(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

func (r *Router) eligibilityResponse(state *returns.ConversationState) (string, *returns.EligibilityVerdict) {
	if state.Claim == nil || state.Policy == nil {
		return NeedClaimDetails, nil
	}
	v := r.evaluator.Evaluate(state.Policy, state.Claim)

	var b strings.Builder
	if v.IsEligible {
		b.WriteString("Great news! Your return is eligible.\n\n**Why this return is accepted:**\n")
		bullets(&b, v.ChecksPassed)
		amount, explanation := r.evaluator.Refund(state.Policy, state.Claim)
		fmt.Fprintf(&b, "\n**Estimated refund:** $%.2f (%s)\n", amount, explanation)
		b.WriteString("\n**What's next:**\n")
		for _, step := range eligibility.NextSteps(state.Policy, &v) {
			b.WriteString(step)
			b.WriteString("\n")
		}
		if len(v.Suggestions) > 0 {
			b.WriteString("\n**Your options:**\n")
			bullets(&b, v.Suggestions)
		}
	} else {
		b.WriteString("Unfortunately, this return doesn't meet our policy requirements.\n\n**Reasons:**\n")
		bullets(&b, v.Reasons)
		if len(v.Warnings) > 0 {
			b.WriteString("\n**Note:**\n")
			bullets(&b, v.Warnings)
		}
		if len(v.Suggestions) > 0 {
			b.WriteString("\n**Alternative options:**\n")
			bullets(&b, v.Suggestions)
		}
	}
	return b.String(), &v
}

func policyResponse(state *returns.ConversationState) string {
	p := state.Policy
	if p == nil {
		return NeedSellerPolicy
	}
	var b strings.Builder
	b.WriteString("**Our Return Policy:**\n\n")
	fmt.Fprintf(&b, "**Return Window:** %d days from purchase\n", p.ReturnWindowDays)
	fmt.Fprintf(&b, "**Refund Type:** %s\n", strings.ToUpper(string(p.RefundType)))
	if p.RefundDeductionPct > 0 {
		fmt.Fprintf(&b, "**Restocking Fee:** %s%%\n", formatPct(p.RefundDeductionPct))
	} else {
		b.WriteString("**Restocking Fee:** none\n")
	}
	fmt.Fprintf(&b, "**Eligible Categories:** %s\n", strings.Join(p.EligibleCategories, ", "))
	fmt.Fprintf(&b, "**Eligible Conditions:** %s\n", strings.Join(p.EligibleConditions, ", "))
	if len(p.Exclusions) > 0 {
		fmt.Fprintf(&b, "**Cannot Return:** %s\n", strings.Join(p.Exclusions, ", "))
	}
	fmt.Fprintf(&b, "**Refund Processing:** %d business days\n", p.RefundTimeDays)
	if p.SupportsReplacement {
		b.WriteString("**Supports:** Replacements\n")
	}
	if p.SupportsPickup {
		b.WriteString("**Supports:** Free pickup\n")
	}
	return b.String()
}

func initiateReturnResponse(e Entities) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Got it! You'd like to return %s (reason: %s).\n\n", e.ProductName, e.Reason)
	b.WriteString("To complete your return request, I need a bit more info:\n")
	b.WriteString("1. What's the product's current condition? (new, unopened, gently used, damaged)\n")
	b.WriteString("2. When did you purchase it?\n")
	b.WriteString("3. What's your order number? (optional)\n\n")
	b.WriteString("Once I have these details, I can check if your return is eligible!")
	return b.String()
}

func refundStatusResponse(state *returns.ConversationState) string {
	c := state.Claim
	if c == nil {
		return NoActiveReturn
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Return Status for %s**\n\n", c.Product.Name)
	fmt.Fprintf(&b, "**Current Status:** %s\n", strings.ToUpper(string(c.Status)))
	fmt.Fprintf(&b, "**Refund Status:** %s\n", strings.ToUpper(string(c.RefundStatus)))
	if c.RefundAmount > 0 {
		fmt.Fprintf(&b, "**Refund Amount:** $%.2f\n", c.RefundAmount)
	}
	if c.ReceivedAt != nil {
		fmt.Fprintf(&b, "**Received Date:** %s\n", c.ReceivedAt.Format(dateLayout))
	}
	days := "5-7"
	if state.Policy != nil {
		days = strconv.Itoa(state.Policy.RefundTimeDays)
	}
	fmt.Fprintf(&b, "\nExpected refund processing: %s business days from receipt\n", days)
	return b.String()
}

func replacementResponse(state *returns.ConversationState) string {
	if state.Policy == nil || !state.Policy.SupportsReplacement {
		return NoReplacements
	}
	return "**Replacement Request**\n\n" +
		"Great! We can send you a replacement.\n\n" +
		"What would you like?\n" +
		"1. Same product (different unit)\n" +
		"2. Different size/color/variant\n" +
		"3. Different product at similar price point\n\n" +
		"Let me know your preference and I'll get it set up!"
}

func pickupResponse(state *returns.ConversationState, e Entities) string {
	if state.Policy == nil || !state.Policy.SupportsPickup {
		return NoPickupAvailable
	}
	var b strings.Builder
	b.WriteString("**Free Return Pickup**\n\nExcellent! We can arrange free pickup for you.\n\n")
	if e.PreferredDate != "" {
		fmt.Fprintf(&b, "Preferred date: %s (%s)\n\n", e.PreferredDate, e.TimeWindow)
	} else {
		b.WriteString("When would you like us to pick up?\n")
		b.WriteString("- Today (between 2-6 PM)\n")
		b.WriteString("- Tomorrow (morning or afternoon)\n")
		b.WriteString("- Specific date/time? (just let me know)\n\n")
	}
	b.WriteString("Also, what's the best address for pickup?")
	return b.String()
}

func trackReturnResponse(state *returns.ConversationState) string {
	c := state.Claim
	if c == nil {
		return NoReturnToTrack
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Tracking Return %s**\n\n", c.ClaimID)
	if c.LabelURL != "" {
		fmt.Fprintf(&b, "**Shipping Label:** [Download Label](%s)\n\n", c.LabelURL)
	}
	b.WriteString("**Timeline:**\n")
	fmt.Fprintf(&b, "[x] Return created: %s\n", c.CreatedAt.Format(dateLayout))
	if c.ReceivedAt != nil {
		fmt.Fprintf(&b, "[x] Received: %s\n", c.ReceivedAt.Format(dateLayout))
	} else {
		b.WriteString("[ ] In transit...\n")
	}
	if c.RefundedAt != nil {
		fmt.Fprintf(&b, "[x] Refunded: %s\n", c.RefundedAt.Format(dateLayout))
	} else {
		b.WriteString("[ ] Processing refund...\n")
	}
	return b.String()
}

func generalResponse(text string) string {
	lower := strings.ToLower(text)
	for _, faq := range faqEntries {
		for _, kw := range faq.keywords {
			if strings.Contains(lower, kw) {
				return faq.answer
			}
		}
	}
	return capabilitiesMenu
}
