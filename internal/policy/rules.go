package policy

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/refset/returns-assistant/internal/returns"
)

// Defaults used when a field has no matching pattern in the policy text
const (
	DefaultReturnWindowDays  = 30
	DefaultRefundType        = returns.RefundFull
	DefaultApprovalTimeHours = 24
	DefaultRefundTimeDays    = 5
	DefaultCondition         = "new"
)

var returnWindowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:day|days)\s*(?:to\s*)?return`),
	regexp.MustCompile(`(?i)return\s*(?:within|for|in)\s*(\d+)\s*(?:day|days)`),
	regexp.MustCompile(`(?i)(?:window|period).*?(\d+)\s*(?:day|days)`),
}

// ExtractReturnWindow returns the number of days a customer has to return
// an item. The first matching pattern wins.
func ExtractReturnWindow(text string) int {
	for _, re := range returnWindowPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return DefaultReturnWindowDays
}

var refundTypePhrases = []struct {
	phrase string
	kind   returns.RefundType
}{
	{"full refund", returns.RefundFull},
	{"partial", returns.RefundPartial},
	{"store credit", returns.RefundStoreCredit},
	{"replacement only", returns.RefundReplacement},
}

// ExtractRefundType picks the refund type by phrase precedence
func ExtractRefundType(text string) returns.RefundType {
	lower := strings.ToLower(text)
	for _, p := range refundTypePhrases {
		if strings.Contains(lower, p.phrase) {
			return p.kind
		}
	}
	return DefaultRefundType
}

var deductionPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(?:deduction|restocking|handling)`)

// ExtractDeductionPct returns the restocking/handling deduction percentage
func ExtractDeductionPct(text string) float64 {
	m := deductionPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil || pct < 0 {
		return 0
	}
	return min(pct, 100)
}

// Categories is the vocabulary recognised in policy text, in report order
var Categories = []string{
	"electronics", "clothing", "shoes", "books", "furniture",
	"home goods", "sports", "toys", "beauty", "health",
}

// ExtractCategories collects every known category mentioned in the text,
// falling back to the "all" wildcard.
func ExtractCategories(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, c := range Categories {
		if strings.Contains(lower, c) {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return []string{returns.AllCategories}
	}
	return found
}

var conditionKeywords = []struct {
	condition string
	keywords  []string
}{
	{"new", []string{"new", "unopened"}},
	{"unopened", []string{"unopened", "sealed"}},
	{"gently_used", []string{"gently used", "lightly used", "worn"}},
	{"used", []string{"used", "worn"}},
}

// ExtractConditions returns the product conditions the policy accepts
func ExtractConditions(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, c := range conditionKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				found = append(found, c.condition)
				break
			}
		}
	}
	if len(found) == 0 {
		return []string{DefaultCondition}
	}
	return found
}

var exclusionPattern = regexp.MustCompile(`(?i)(?:non-?returnable|not\s+eligible|cannot\s+return|excluded|exclusions?)(?:\s+(?:items?|products?))?\s*:?\s*([^.]+)`)

// ExtractExclusions returns the comma separated items following each
// exclusion phrase up to the next period, deduplicated in first-seen order.
func ExtractExclusions(text string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, m := range exclusionPattern.FindAllStringSubmatch(text, -1) {
		for _, item := range strings.Split(m[1], ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// ExtractFinalSale returns the final-sale markers when the policy mentions
// final sale at all.
func ExtractFinalSale(text string) []string {
	if strings.Contains(strings.ToLower(text), "final sale") {
		return []string{"clearance", "final sale items"}
	}
	return []string{}
}

var approvalPattern = regexp.MustCompile(`(?i)(?:approv|review).*?(\d+)\s*(hours?|business\s+days?)`)

// ExtractApprovalHours returns how long approval takes, converting business
// days to hours.
func ExtractApprovalHours(text string) int {
	m := approvalPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultApprovalTimeHours
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultApprovalTimeHours
	}
	if strings.Contains(strings.ToLower(m[2]), "day") {
		return n * 24
	}
	return n
}

var refundTimePattern = regexp.MustCompile(`(?i)(?:refund|process).*?(\d+)\s*(?:business\s+)?(?:day|days)`)

// ExtractRefundDays returns the refund processing time in days
func ExtractRefundDays(text string) int {
	m := refundTimePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultRefundTimeDays
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultRefundTimeDays
	}
	return n
}

// ExtractSupportsReplacement reports whether replacements are offered
func ExtractSupportsReplacement(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "replacement") && !strings.Contains(lower, "no replacement")
}

// ExtractSupportsPickup reports whether free pickup is offered
func ExtractSupportsPickup(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "pickup") && !strings.Contains(lower, "no pickup")
}

// ExtractRequiresPackaging reports whether the original packaging is required
func ExtractRequiresPackaging(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "original packaging") || strings.Contains(lower, "original box")
}
