package store

import (
	"fmt"
	"time"
)

// ReadEvent records that a user opened an article.
type ReadEvent struct {
	ArticleID  string `json:"article_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	SourceName string `json:"source_name"`
}

// SourceCount pairs a source with how often it was read.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// ReadingAnalytics is the roll-up served by the analytics endpoint.
type ReadingAnalytics struct {
	TotalReads    int            `json:"total_reads"`
	ReadsLastWeek int            `json:"reads_last_week"`
	ByCategory    map[string]int `json:"by_category"`
	TopSources    []SourceCount  `json:"top_sources"`
}

func (s *Store) RecordRead(userID int64, ev ReadEvent) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO history (user_id, article_id, title, category, source_name, read_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, ev.ArticleID, ev.Title, ev.Category, ev.SourceName, time.Now())
	if err != nil {
		return fmt.Errorf("recording read: %w", err)
	}
	return nil
}

// Analytics summarizes a user's reading history.
func (s *Store) Analytics(userID int64) (*ReadingAnalytics, error) {
	a := &ReadingAnalytics{ByCategory: map[string]int{}}

	err := s.readDB.QueryRow(`SELECT COUNT(*) FROM history WHERE user_id = ?`, userID).
		Scan(&a.TotalReads)
	if err != nil {
		return nil, fmt.Errorf("counting reads: %w", err)
	}

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	err = s.readDB.QueryRow(`SELECT COUNT(*) FROM history WHERE user_id = ? AND read_at >= ?`,
		userID, weekAgo).Scan(&a.ReadsLastWeek)
	if err != nil {
		return nil, fmt.Errorf("counting recent reads: %w", err)
	}

	rows, err := s.readDB.Query(`
		SELECT category, COUNT(*) FROM history
		WHERE user_id = ? AND category != ''
		GROUP BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("grouping by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		a.ByCategory[cat] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srcRows, err := s.readDB.Query(`
		SELECT source_name, COUNT(*) AS n FROM history
		WHERE user_id = ? AND source_name != ''
		GROUP BY source_name
		ORDER BY n DESC, source_name ASC
		LIMIT 5
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ranking sources: %w", err)
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var sc SourceCount
		if err := srcRows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scanning source count: %w", err)
		}
		a.TopSources = append(a.TopSources, sc)
	}
	return a, srcRows.Err()
}
