package search

import (
	"regexp"
	"strings"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// recencyKeywords signal that the answer depends on information newer than a
// model's training data.
var recencyKeywords = []string{
	"latest",
	"today",
	"today's",
	"tonight",
	"yesterday",
	"tomorrow",
	"current",
	"currently",
	"this week",
	"this month",
	"this year",
	"right now",
	"news",
	"recent",
	"recently",
	"price",
	"score",
	"weather",
	"stock",
	"live",
	"trending",
	"election",
	"update",
	"breaking",
	"forecast",
	"exchange rate",
}

var yearToken = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// NeedsSearch reports whether a question looks time-sensitive. It is a static
// keyword heuristic; false positives and negatives are expected.
func NeedsSearch(query string) bool {
	q := domain.NormalizeQuery(query)
	if q == "" {
		return false
	}
	for _, kw := range recencyKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return yearToken.MatchString(q)
}
