// Package news implements the aggregation engine: it derives a bounded set
// of queries from a user's location and career field, fetches them from the
// upstream with per-query fallback, scores and labels the results, and
// merges them into category buckets.
package news

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avelasco/bizpulse/internal/cache"
	"github.com/avelasco/bizpulse/internal/newsclient"
)

// Searcher is the upstream keyword-search dependency.
type Searcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]newsclient.Article, error)
}

const (
	personalizedLimit = 5
	trendingLimit     = 6
	defaultPageSize   = 5

	globalQuery = "global business economy"

	placeholderSourceName = "BizPulse Wire"
)

// Profile is the read-only input to the engine. The caller substitutes
// defaults for empty fields; the engine does not validate.
type Profile struct {
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	CareerField string `json:"careerField"`
}

// PersonalizedNews always carries exactly these five buckets, each at most
// personalizedLimit articles, whatever the upstream did.
type PersonalizedNews struct {
	Local    []cache.Article `json:"local"`
	Regional []cache.Article `json:"regional"`
	National []cache.Article `json:"national"`
	Industry []cache.Article `json:"industry"`
	Global   []cache.Article `json:"global"`
}

// Service is an explicitly constructed engine instance; it owns no state
// beyond the cache handle, so instances are safe for concurrent requests.
type Service struct {
	client    Searcher
	cache     *cache.Cache
	retention time.Duration
	log       *zap.SugaredLogger
}

func NewService(client Searcher, c *cache.Cache, retention time.Duration, log *zap.SugaredLogger) *Service {
	if retention <= 0 {
		retention = 6 * time.Hour
	}
	return &Service{client: client, cache: c, retention: retention, log: log}
}

// GetPersonalizedNews fans out the location, industry and global groups
// concurrently, waits for all of them to settle, and merges the results into
// the five buckets. Per-query upstream failures never surface here — they
// were already replaced by placeholders — so the only possible error is a
// programming fault inside the fan-out, returned as a single opaque failure.
func (s *Service) GetPersonalizedNews(ctx context.Context, p Profile) (*PersonalizedNews, error) {
	var (
		location []cache.Article
		industry []cache.Article
		global   []cache.Article

		wg     sync.WaitGroup
		mu     sync.Mutex
		fanErr error
	)

	run := func(name string, f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					fanErr = fmt.Errorf("%s group panicked: %v", name, r)
					mu.Unlock()
				}
			}()
			f()
		}()
	}

	run("location", func() {
		location = s.GetLocationBasedNews(ctx, p.City, p.State, p.Country, 0)
	})
	run("industry", func() {
		industry = s.GetIndustryNews(ctx, p.CareerField, personalizedLimit)
	})
	run("global", func() {
		global = s.globalNews(ctx, personalizedLimit)
	})

	wg.Wait()

	if fanErr != nil {
		s.log.Errorw("personalized news aggregation failed", "error", fanErr)
		return nil, errors.New("news aggregation failed")
	}

	return &PersonalizedNews{
		Local:    takeByLocationType(location, "local", personalizedLimit),
		Regional: takeByLocationType(location, "regional", personalizedLimit),
		National: takeByLocationType(location, "national", personalizedLimit),
		Industry: nonNil(industry),
		Global:   nonNil(global),
	}, nil
}

// GetLocationBasedNews issues the three fixed location query templates and
// labels the results. A limit of 0 means no truncation.
func (s *Service) GetLocationBasedNews(ctx context.Context, city, state, country string, limit int) []cache.Article {
	queries := []struct {
		query string
		value string
	}{
		{fmt.Sprintf("%s business", city), city},
		{fmt.Sprintf("%s economy", state), state},
		{fmt.Sprintf("%s business news", country), country},
	}

	var out []cache.Article
	for _, q := range queries {
		articles := s.FetchNewsFromAPI(ctx, q.query, defaultPageSize)
		label := labelForQuery(q.query)
		for i := range articles {
			articles[i].Category = label
			articles[i].LocationType = label
			articles[i].LocationValue = q.value
			articles[i].RelevanceScore = CalculateRelevanceScore(articles[i], q.query)
		}
		s.persist(articles)
		out = append(out, articles...)
	}
	return truncate(out, limit)
}

// GetIndustryNews maps the career field to at most two industry terms and
// queries each of them.
func (s *Service) GetIndustryNews(ctx context.Context, careerField string, limit int) []cache.Article {
	var out []cache.Article
	for _, industry := range industriesFor(careerField) {
		query := industry + " news"
		articles := s.FetchNewsFromAPI(ctx, query, defaultPageSize)
		for i := range articles {
			articles[i].Category = "industry"
			articles[i].Industry = industry
			articles[i].RelevanceScore = CalculateRelevanceScore(articles[i], industry)
		}
		s.persist(articles)
		out = append(out, articles...)
	}
	return truncate(out, limit)
}

// GetCategoryNews serves the category browse view with a single query.
func (s *Service) GetCategoryNews(ctx context.Context, category string, limit int) []cache.Article {
	query := category + " business news"
	articles := s.FetchNewsFromAPI(ctx, query, defaultPageSize)
	for i := range articles {
		articles[i].Category = strings.ToLower(category)
		articles[i].RelevanceScore = CalculateRelevanceScore(articles[i], category)
	}
	s.persist(articles)
	return truncate(articles, limit)
}

// SearchNews scores fetched articles against the user's search term and
// returns them most relevant first.
func (s *Service) SearchNews(ctx context.Context, term string, limit int) []cache.Article {
	articles := s.FetchNewsFromAPI(ctx, term, defaultPageSize*2)
	for i := range articles {
		articles[i].Category = "global"
		articles[i].RelevanceScore = CalculateRelevanceScore(articles[i], term)
	}
	s.persist(articles)

	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].RelevanceScore != articles[j].RelevanceScore {
			return articles[i].RelevanceScore > articles[j].RelevanceScore
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	return truncate(articles, limit)
}

// GetTrendingNews fills the trending grid (six slots).
func (s *Service) GetTrendingNews(ctx context.Context) []cache.Article {
	articles := s.FetchNewsFromAPI(ctx, "trending business news", trendingLimit)
	for i := range articles {
		articles[i].Category = "global"
		articles[i].RelevanceScore = CalculateRelevanceScore(articles[i], "business")
	}
	s.persist(articles)
	return truncate(articles, trendingLimit)
}

func (s *Service) globalNews(ctx context.Context, limit int) []cache.Article {
	articles := s.FetchNewsFromAPI(ctx, globalQuery, defaultPageSize)
	for i := range articles {
		articles[i].Category = "global"
		articles[i].RelevanceScore = CalculateRelevanceScore(articles[i], globalQuery)
	}
	s.persist(articles)
	return truncate(articles, limit)
}

// FetchNewsFromAPI runs one upstream query and never fails past this
// boundary: any upstream error is swallowed and replaced by a deterministic
// set of placeholder articles referencing the query term, so a single
// degraded query cannot abort an aggregate response. Text fields are
// sanitized and ids assigned before anything leaves the engine.
func (s *Service) FetchNewsFromAPI(ctx context.Context, query string, pageSize int) []cache.Article {
	raw, err := s.client.Search(ctx, query, pageSize)
	if err != nil {
		s.log.Warnw("upstream query failed, substituting placeholders",
			"query", query, "error", err)
		return placeholderArticles(query)
	}

	now := time.Now()
	out := make([]cache.Article, 0, len(raw))
	for _, r := range raw {
		out = append(out, cache.Article{
			ID:          uuid.NewString(),
			Title:       SanitizeText(r.Title),
			Description: SanitizeText(r.Description),
			URL:         r.URL,
			ImageURL:    r.URLToImage,
			PublishedAt: r.PublishedAt,
			SourceName:  r.Source.Name,
			CachedAt:    now,
		})
	}
	return out
}

// RefreshNewsCache prunes cache rows older than the retention window and
// stamps the refresh time.
func (s *Service) RefreshNewsCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.cache.DeleteOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("refreshing news cache: %w", err)
	}
	if err := s.cache.SetLastRefresh(); err != nil {
		s.log.Warnw("recording cache refresh time failed", "error", err)
	}
	s.log.Infow("news cache refreshed", "deleted", deleted, "retention", s.retention)
	return nil
}

// SaveArticleToCache upserts one article by id. Persistence failures are
// logged and swallowed; they never fail the enclosing request.
func (s *Service) SaveArticleToCache(a cache.Article) {
	if s.cache == nil {
		return
	}
	if err := s.cache.UpsertArticle(a); err != nil {
		s.log.Warnw("caching article failed", "id", a.ID, "error", err)
	}
}

// CachedNews returns recently cached articles, newest first.
func (s *Service) CachedNews(limit int) ([]cache.Article, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.Recent(limit)
}

func (s *Service) persist(articles []cache.Article) {
	for _, a := range articles {
		if isPlaceholder(a) {
			continue
		}
		s.SaveArticleToCache(a)
	}
}

func isPlaceholder(a cache.Article) bool {
	return a.SourceName == placeholderSourceName
}

// labelForQuery decides the location bucket from the query string itself,
// not from article content. The checks are order-dependent on the template
// markers: "business news" wins over "economy" wins over "business".
func labelForQuery(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "business news"):
		return "national"
	case strings.Contains(q, "economy"):
		return "regional"
	case strings.Contains(q, "business"):
		return "local"
	default:
		return "national"
	}
}

// takeByLocationType keeps the first limit articles of a label, in fetch
// order — truncation happens after concatenation, not after a sort.
func takeByLocationType(articles []cache.Article, label string, limit int) []cache.Article {
	out := []cache.Article{}
	for _, a := range articles {
		if a.LocationType != label {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out
}

func truncate(articles []cache.Article, limit int) []cache.Article {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

func nonNil(articles []cache.Article) []cache.Article {
	if articles == nil {
		return []cache.Article{}
	}
	return articles
}

var placeholderHeadlines = []string{
	"%s: top stories at a glance",
	"What to watch in %s today",
	"%s roundup: key developments",
}

// placeholderArticles builds the deterministic fallback set for a failed
// query. Every title embeds the query term.
func placeholderArticles(query string) []cache.Article {
	now := time.Now()
	out := make([]cache.Article, 0, len(placeholderHeadlines))
	for i, tpl := range placeholderHeadlines {
		out = append(out, cache.Article{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf(tpl, query),
			Description: fmt.Sprintf("Live coverage for %q is temporarily unavailable. Fresh headlines will appear once the news service recovers.", query),
			URL:         "https://bizpulse.app/updates/" + strconv.Itoa(i+1),
			PublishedAt: now,
			SourceName:  placeholderSourceName,
			CachedAt:    now,
		})
	}
	return out
}
