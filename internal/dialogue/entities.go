package dialogue

import (
	"regexp"
	"strings"

	"github.com/refset/returns-assistant/internal/returns"
)

// ReasonNotSpecified is reported when no reason keyword matches
const ReasonNotSpecified = "not specified"

// DefaultProductName is used when the customer did not quote a product
const DefaultProductName = "your item"

// Date and time-of-day tokens recognised for pickup scheduling
const (
	DateToday       = "today"
	DateTomorrow    = "tomorrow"
	DateCustom      = "custom_date"
	WindowMorning   = "morning"
	WindowAfternoon = "afternoon"
	WindowSpecific  = "specific_time"
	WindowFlexible  = "flexible"
)

// Entities holds whatever an intent's extractor pulled out of a message
type Entities struct {
	ProductName   string `json:"product_name,omitempty"`
	Reason        string `json:"reason,omitempty"`
	PreferredDate string `json:"preferred_date,omitempty"`
	TimeWindow    string `json:"time_window,omitempty"`
}

// ExtractEntities runs the extractor for intent. Intents without one
// yield the zero value.
func ExtractEntities(intent Intent, text string) Entities {
	switch intent {
	case IntentInitiateReturn:
		return Entities{
			ProductName: ExtractProductName(text),
			Reason:      ExtractReturnReason(text),
		}
	case IntentPickupScheduling:
		return Entities{
			PreferredDate: ExtractDate(text),
			TimeWindow:    ExtractTimeWindow(text),
		}
	default:
		return Entities{}
	}
}

var quotedPattern = regexp.MustCompile(`"([^"]*)"`)

// ExtractProductName returns the first double-quoted phrase in text
func ExtractProductName(text string) string {
	if m := quotedPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return DefaultProductName
}

var reasonRules = []struct {
	pattern *regexp.Regexp
	reason  returns.Reason
}{
	{regexp.MustCompile(`defective|broken|stopped working|not working`), returns.ReasonDefective},
	{regexp.MustCompile(`damaged|arrived damaged`), returns.ReasonDamagedInTransit},
	{regexp.MustCompile(`not as described|different|doesn't match`), returns.ReasonNotAsDescribed},
	{regexp.MustCompile(`wrong item|wrong product|wrong size|shipped wrong`), returns.ReasonWrongItem},
	{regexp.MustCompile(`changed my mind|don't want|don't need`), returns.ReasonChangedMind},
}

// ExtractReturnReason maps reason keywords onto a Reason value, or
// ReasonNotSpecified when nothing matches.
func ExtractReturnReason(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range reasonRules {
		if rule.pattern.MatchString(lower) {
			return string(rule.reason)
		}
	}
	return ReasonNotSpecified
}

var customDatePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}`)

// ExtractDate returns a coarse date token, or "" when no date is mentioned
func ExtractDate(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, DateToday):
		return DateToday
	case strings.Contains(lower, DateTomorrow):
		return DateTomorrow
	case customDatePattern.MatchString(lower):
		return DateCustom
	}
	return ""
}

var clockTimePattern = regexp.MustCompile(`\d{1,2}\s*(?:am|pm|a\.m|p\.m)`)

// ExtractTimeWindow returns the preferred time of day
func ExtractTimeWindow(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "morning"):
		return WindowMorning
	case strings.Contains(lower, "afternoon"), strings.Contains(lower, "evening"):
		return WindowAfternoon
	case clockTimePattern.MatchString(lower):
		return WindowSpecific
	}
	return WindowFlexible
}
