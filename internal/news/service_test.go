package news

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avelasco/bizpulse/internal/cache"
	"github.com/avelasco/bizpulse/internal/newsclient"
)

// fakeSearcher returns canned results or fails every query.
type fakeSearcher struct {
	fail     bool
	articles []newsclient.Article
	queries  []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]newsclient.Article, error) {
	f.queries = append(f.queries, query)
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return f.articles, nil
}

func upstreamArticle(title, desc, source string, published time.Time) newsclient.Article {
	a := newsclient.Article{
		Title:       title,
		Description: desc,
		URL:         "https://example.com/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		PublishedAt: published,
	}
	a.Source.Name = source
	return a
}

func testService(t *testing.T, searcher Searcher) *Service {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return NewService(searcher, c, 6*time.Hour, zap.NewNop().Sugar())
}

func TestFetchNewsFromAPIFallsBackToPlaceholders(t *testing.T) {
	s := testService(t, &fakeSearcher{fail: true})

	got := s.FetchNewsFromAPI(context.Background(), "Ottawa business", 5)
	if len(got) == 0 {
		t.Fatal("expected non-empty placeholder list")
	}
	for _, a := range got {
		if !strings.Contains(a.Title, "Ottawa business") {
			t.Errorf("placeholder title %q does not embed the query", a.Title)
		}
		if a.ID == "" {
			t.Error("placeholder missing id")
		}
	}
}

func TestFetchNewsFromAPISanitizesAndAssignsIDs(t *testing.T) {
	searcher := &fakeSearcher{articles: []newsclient.Article{
		upstreamArticle("<b>Markets</b> rally", "Profits &amp; losses", "Reuters", time.Now()),
	}}
	s := testService(t, searcher)

	got := s.FetchNewsFromAPI(context.Background(), "markets", 5)
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].Title != "Markets rally" {
		t.Errorf("title not sanitized: %q", got[0].Title)
	}
	if strings.Contains(got[0].Description, "&amp;") {
		t.Errorf("description not sanitized: %q", got[0].Description)
	}
	if got[0].ID == "" {
		t.Error("expected an id assigned at fetch time")
	}

	// Same upstream story fetched twice gets a fresh identity.
	again := s.FetchNewsFromAPI(context.Background(), "markets", 5)
	if again[0].ID == got[0].ID {
		t.Error("expected distinct ids across fetches")
	}
}

func TestGetLocationBasedNewsQueriesAndLabels(t *testing.T) {
	searcher := &fakeSearcher{articles: []newsclient.Article{
		upstreamArticle("Local firms expand", "growth", "Gazette", time.Now()),
	}}
	s := testService(t, searcher)

	got := s.GetLocationBasedNews(context.Background(), "Ottawa", "ON", "CA", 0)

	wantQueries := []string{"Ottawa business", "ON economy", "CA business news"}
	if len(searcher.queries) != len(wantQueries) {
		t.Fatalf("issued %d queries, want %d", len(searcher.queries), len(wantQueries))
	}
	for i, q := range wantQueries {
		if searcher.queries[i] != q {
			t.Errorf("query[%d] = %q, want %q", i, searcher.queries[i], q)
		}
	}

	labels := map[string]int{}
	for _, a := range got {
		labels[a.LocationType]++
	}
	if labels["local"] != 1 || labels["regional"] != 1 || labels["national"] != 1 {
		t.Errorf("label distribution = %v, want one of each", labels)
	}
}

func TestLabelForQuery(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"Ottawa business", "local"},
		{"ON economy", "regional"},
		{"CA business news", "national"},
		{"something else", "national"},
	}
	for _, tc := range cases {
		if got := labelForQuery(tc.query); got != tc.want {
			t.Errorf("labelForQuery(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestGetIndustryNewsBoundsCalls(t *testing.T) {
	searcher := &fakeSearcher{articles: []newsclient.Article{
		upstreamArticle("Chips are back", "semis", "Reuters", time.Now()),
	}}
	s := testService(t, searcher)

	got := s.GetIndustryNews(context.Background(), "technology", 5)

	// technology maps to three industry terms; only the first two are used.
	if len(searcher.queries) != 2 {
		t.Fatalf("issued %d industry queries, want 2", len(searcher.queries))
	}
	if len(got) > 5 {
		t.Errorf("industry bucket exceeds limit: %d", len(got))
	}
	for _, a := range got {
		if a.Category != "industry" {
			t.Errorf("category = %q, want industry", a.Category)
		}
		if a.Industry == "" {
			t.Error("industry field not set")
		}
	}
}

func TestIndustriesForUnknownFieldFallsBack(t *testing.T) {
	got := industriesFor("falconry")
	if len(got) != 1 || got[0] != "falconry" {
		t.Errorf("industriesFor(falconry) = %v, want the literal field", got)
	}
}

func TestGetPersonalizedNewsShape(t *testing.T) {
	searcher := &fakeSearcher{articles: []newsclient.Article{
		upstreamArticle("Story one", "d", "Reuters", time.Now()),
		upstreamArticle("Story two", "d", "Gazette", time.Now()),
		upstreamArticle("Story three", "d", "Gazette", time.Now()),
		upstreamArticle("Story four", "d", "Gazette", time.Now()),
		upstreamArticle("Story five", "d", "Gazette", time.Now()),
		upstreamArticle("Story six", "d", "Gazette", time.Now()),
	}}
	s := testService(t, searcher)

	got, err := s.GetPersonalizedNews(context.Background(), Profile{
		City: "Ottawa", State: "ON", Country: "CA", CareerField: "technology",
	})
	if err != nil {
		t.Fatalf("personalized: %v", err)
	}

	buckets := map[string][]cache.Article{
		"local":    got.Local,
		"regional": got.Regional,
		"national": got.National,
		"industry": got.Industry,
		"global":   got.Global,
	}
	for name, b := range buckets {
		if b == nil {
			t.Errorf("bucket %s is nil, want empty slice at minimum", name)
		}
		if len(b) > 5 {
			t.Errorf("bucket %s has %d articles, want <=5", name, len(b))
		}
	}

	// 3 location + 2 industry + 1 global
	if len(searcher.queries) != 6 {
		t.Errorf("issued %d upstream calls, want 6", len(searcher.queries))
	}
}

func TestGetPersonalizedNewsAllUpstreamFailures(t *testing.T) {
	s := testService(t, &fakeSearcher{fail: true})

	got, err := s.GetPersonalizedNews(context.Background(), Profile{
		City: "Ottawa", State: "ON", Country: "CA", CareerField: "technology",
	})
	if err != nil {
		t.Fatalf("personalized must not fail on upstream errors: %v", err)
	}

	all := [][]cache.Article{got.Local, got.Regional, got.National, got.Industry, got.Global}
	allowed := []string{"Ottawa business", "ON economy", "CA business news", "tech industry", "software", "global business economy"}
	for _, bucket := range all {
		if len(bucket) == 0 {
			t.Error("expected placeholder articles in every bucket")
		}
		for _, a := range bucket {
			found := false
			for _, term := range allowed {
				if strings.Contains(a.Title, term) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("placeholder title %q embeds no expected query term", a.Title)
			}
		}
	}
}

func TestSearchNewsSortsByRelevance(t *testing.T) {
	now := time.Now()
	searcher := &fakeSearcher{articles: []newsclient.Article{
		upstreamArticle("Unrelated headline", "nothing here", "Blog", now.Add(-48*time.Hour)),
		upstreamArticle("fintech surges", "fintech adoption grows", "Bloomberg", now.Add(-1*time.Hour)),
	}}
	s := testService(t, searcher)

	got := s.SearchNews(context.Background(), "fintech", 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if !strings.Contains(got[0].Title, "fintech") {
		t.Errorf("expected the matching article first, got %q", got[0].Title)
	}
	if got[0].RelevanceScore <= got[1].RelevanceScore {
		t.Errorf("results not sorted by relevance: %d then %d",
			got[0].RelevanceScore, got[1].RelevanceScore)
	}
}

func TestGetTrendingNewsLimit(t *testing.T) {
	var many []newsclient.Article
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		many = append(many, upstreamArticle("story "+title, "d", "Gazette", time.Now()))
	}
	s := testService(t, &fakeSearcher{articles: many})

	got := s.GetTrendingNews(context.Background())
	if len(got) != 6 {
		t.Errorf("trending grid has %d articles, want 6", len(got))
	}
}

func TestFetchedArticlesAreCachedButPlaceholdersAreNot(t *testing.T) {
	searcher := &fakeSearcher{articles: []newsclient.Article{
		upstreamArticle("Real story", "d", "Reuters", time.Now()),
	}}
	s := testService(t, searcher)

	s.GetCategoryNews(context.Background(), "markets", 5)
	cached, err := s.CachedNews(50)
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("expected 1 cached article, got %d", len(cached))
	}

	searcher.fail = true
	s.GetCategoryNews(context.Background(), "markets", 5)
	cached, err = s.CachedNews(50)
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	if len(cached) != 1 {
		t.Errorf("placeholders must not be cached, got %d rows", len(cached))
	}
}

func TestRefreshNewsCachePrunesOldRows(t *testing.T) {
	s := testService(t, &fakeSearcher{})
	now := time.Now()

	s.SaveArticleToCache(cache.Article{ID: "old", Title: "Stale", URL: "u", PublishedAt: now, CachedAt: now.Add(-7 * time.Hour)})
	s.SaveArticleToCache(cache.Article{ID: "new", Title: "Fresh", URL: "u", PublishedAt: now, CachedAt: now.Add(-1 * time.Hour)})

	if err := s.RefreshNewsCache(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	cached, err := s.CachedNews(50)
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	if len(cached) != 1 || cached[0].ID != "new" {
		t.Errorf("expected only the 1h-old row to survive, got %+v", cached)
	}
}
