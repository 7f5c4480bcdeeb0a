package news

import "strings"

// industryKeywords maps a career field to the industry terms queried on its
// behalf. Unknown fields fall back to the literal field string.
var industryKeywords = map[string][]string{
	"technology":     {"tech industry", "software", "artificial intelligence"},
	"finance":        {"banking", "fintech", "stock market"},
	"healthcare":     {"healthcare industry", "pharmaceutical", "biotech"},
	"education":      {"education sector", "edtech"},
	"retail":         {"retail industry", "e-commerce"},
	"manufacturing":  {"manufacturing", "supply chain"},
	"energy":         {"energy sector", "renewable energy", "oil and gas"},
	"construction":   {"construction industry", "real estate"},
	"transportation": {"transportation industry", "logistics"},
	"marketing":      {"advertising", "digital marketing"},
	"legal":          {"legal industry", "law firms"},
	"agriculture":    {"agriculture", "farming"},
	"hospitality":    {"hospitality industry", "tourism"},
	"media":          {"media industry", "entertainment"},
}

// maxIndustriesPerRequest bounds external-call volume: at most the first two
// industries of a field are queried, whatever the table says.
const maxIndustriesPerRequest = 2

func industriesFor(careerField string) []string {
	field := strings.ToLower(strings.TrimSpace(careerField))
	industries, ok := industryKeywords[field]
	if !ok || len(industries) == 0 {
		return []string{careerField}
	}
	if len(industries) > maxIndustriesPerRequest {
		industries = industries[:maxIndustriesPerRequest]
	}
	return industries
}
