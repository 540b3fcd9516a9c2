package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// MaxResults is the number of entries kept from a search response.
const MaxResults = 5

// resultPaths are tried in order; the first array found is the result list.
var resultPaths = []string{
	"data.results",
	"results",
	"data",
	"organic_results",
	"@this",
}

var errNoResultList = errors.New("no result list in response")

// parseResults extracts search results from a provider response of unknown
// shape.
func parseResults(body []byte) ([]domain.SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parse search response: invalid json")
	}

	var list gjson.Result
	found := false
	for _, path := range resultPaths {
		r := gjson.GetBytes(body, path)
		if r.IsArray() {
			list, found = r, true
			break
		}
	}
	if !found {
		return nil, errNoResultList
	}

	entries := list.Array()
	if len(entries) > MaxResults {
		entries = entries[:MaxResults]
	}

	results := make([]domain.SearchResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, domain.SearchResult{
			Title:       firstString(e, "Result", "title", "name"),
			Description: firstString(e, "", "snippet", "description", "content", "text"),
			URL:         firstString(e, "", "url", "link"),
		})
	}
	return results, nil
}

// firstString returns the first non-empty string field of e among keys.
func firstString(e gjson.Result, fallback string, keys ...string) string {
	if !e.IsObject() {
		return fallback
	}
	for _, k := range keys {
		if v := e.Get(k); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return fallback
}

// Citations returns the results that can be shown as source links.
func Citations(results []domain.SearchResult) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if strings.HasPrefix(r.URL, "http") {
			out = append(out, r)
		}
	}
	return out
}

// Context renders results as the text block appended to the prompt.
// Every result is included, even those without a usable URL.
func Context(results []domain.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Web Search Results:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, r.Title)
		if r.Description != "" {
			b.WriteString(r.Description)
			b.WriteByte('\n')
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "Source: %s\n", r.URL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
