package dialogue

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a customer message
type Intent string

const (
	IntentCheckEligibility   Intent = "check_eligibility"
	IntentPolicyQuestion     Intent = "policy_question"
	IntentInitiateReturn     Intent = "initiate_return"
	IntentRefundStatus       Intent = "refund_status"
	IntentReplacementRequest Intent = "replacement_request"
	IntentPickupScheduling   Intent = "pickup_scheduling"
	IntentTrackReturn        Intent = "track_return"
	IntentGeneralQuery       Intent = "general_query"

	// IntentEscalation tags replies produced by a hand-off instead of routing
	IntentEscalation Intent = "escalation"
)

type intentRule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// intentRules is in priority order: the first intent with any matching
// pattern wins.
var intentRules = []intentRule{
	{IntentCheckEligibility, patterns(
		`eligible|can i return|able to return|can i send back`,
		`will you accept|do you accept|acceptable condition`,
	)},
	{IntentPolicyQuestion, patterns(
		`policy|policies|return window|how long|how many days`,
		`refund|restocking fee|deduction`,
	)},
	{IntentInitiateReturn, patterns(
		`i want to return|i'd like to return|start a return|initiate return`,
		`return this|send back|get my money back`,
	)},
	{IntentRefundStatus, patterns(
		`refund status|where is my refund|when will i get|check status`,
		`payment|money back|received`,
	)},
	{IntentReplacementRequest, patterns(
		`replacement|different one|exchange|swap|different size|different color`,
	)},
	{IntentPickupScheduling, patterns(
		`pickup|pick up|come get|collect|arrange pickup|schedule pickup`,
	)},
	{IntentTrackReturn, patterns(
		`track|tracking|where is|status|arrived|received`,
	)},
}

// ClassifyIntent returns the first intent whose patterns match the
// lower-cased text, or IntentGeneralQuery.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				return rule.intent
			}
		}
	}
	return IntentGeneralQuery
}
