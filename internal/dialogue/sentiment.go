package dialogue

import (
	"strings"

	"github.com/refset/returns-assistant/internal/returns"
)

type sentimentRule struct {
	sentiment   returns.Sentiment
	frustration float64
	keywords    []string
}

// sentimentRules are checked top to bottom; the first rule with a keyword
// hit decides the sentiment.
var sentimentRules = []sentimentRule{
	{returns.SentimentAngry, 0.9, []string{"angry", "outrageous", "terrible", "worst", "scam", "fraud", "criminal"}},
	{returns.SentimentFrustrated, 0.7, []string{"frustrated", "disappointed", "upset", "annoyed", "fed up", "ridiculous"}},
	{returns.SentimentSatisfied, 0.1, []string{"thank", "appreciate", "grateful", "love", "perfect", "great", "excellent"}},
}

const neutralFrustration = 0.3

// DetectSentiment classifies a single message. It looks only at text, never
// at earlier turns.
func DetectSentiment(text string) (returns.Sentiment, float64) {
	lower := strings.ToLower(text)
	for _, rule := range sentimentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.sentiment, rule.frustration
			}
		}
	}
	return returns.SentimentNeutral, neutralFrustration
}
