package cache

import "time"

// Article is the unit every part of the system exchanges. Identity is
// assigned when the article is fetched, never derived from content, so the
// same upstream story fetched twice gets two distinct ids.
type Article struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	URL            string    `json:"url"`
	ImageURL       string    `json:"image_url,omitempty"`
	PublishedAt    time.Time `json:"published_at"`
	SourceName     string    `json:"source_name"`
	SourceURL      string    `json:"source_url,omitempty"`
	Category       string    `json:"category"`
	LocationType   string    `json:"location_type,omitempty"`
	LocationValue  string    `json:"location_value,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	RelevanceScore int       `json:"relevance_score"`
	CachedAt       time.Time `json:"-"`
}
