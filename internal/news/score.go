package news

import (
	"strings"
	"time"

	"github.com/avelasco/bizpulse/internal/cache"
)

// trustedSources is the fixed allow-list that earns a source bonus. Matching
// is plain substring on the source name, not fuzzy.
var trustedSources = []string{
	"Bloomberg",
	"Reuters",
	"Financial Times",
	"Wall Street Journal",
	"CNBC",
	"Forbes",
	"The Economist",
	"Business Insider",
	"MarketWatch",
	"Fortune",
}

const maxRelevanceScore = 10

// CalculateRelevanceScore computes the additive relevance of an article for
// a keyword, capped at 10:
//
//	+3 keyword in title, +2 keyword in description,
//	+2 published within 6h / +1 within 24h (relative to call time),
//	+2 trusted source.
//
// The same function scores aggregation results (against the query or
// industry term) and search results (against the user's search term).
func CalculateRelevanceScore(a cache.Article, keyword string) int {
	score := 0
	kw := strings.ToLower(keyword)

	if kw != "" {
		if strings.Contains(strings.ToLower(a.Title), kw) {
			score += 3
		}
		if strings.Contains(strings.ToLower(a.Description), kw) {
			score += 2
		}
	}

	if !a.PublishedAt.IsZero() {
		age := time.Since(a.PublishedAt)
		switch {
		case age >= 0 && age <= 6*time.Hour:
			score += 2
		case age >= 0 && age <= 24*time.Hour:
			score++
		}
	}

	for _, src := range trustedSources {
		if strings.Contains(a.SourceName, src) {
			score += 2
			break
		}
	}

	if score > maxRelevanceScore {
		score = maxRelevanceScore
	}
	return score
}
