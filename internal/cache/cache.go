package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is the persisted article table. Entries are write-once and
// age-expired; there is no update-in-place beyond the idempotent upsert.
type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			url            TEXT NOT NULL,
			image_url      TEXT NOT NULL DEFAULT '',
			published_at   DATETIME NOT NULL,
			source_name    TEXT NOT NULL DEFAULT '',
			source_url     TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			location_type  TEXT NOT NULL DEFAULT '',
			location_value TEXT NOT NULL DEFAULT '',
			industry       TEXT NOT NULL DEFAULT '',
			relevance      INTEGER NOT NULL DEFAULT 0,
			cached_at      DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_cached_at ON articles(cached_at);
		CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// UpsertArticle inserts or replaces an article keyed by id.
func (c *Cache) UpsertArticle(a Article) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO articles (id, title, description, url, image_url, published_at,
			source_name, source_url, category, location_type, location_value,
			industry, relevance, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			relevance = excluded.relevance,
			cached_at = excluded.cached_at
	`, a.ID, a.Title, a.Description, a.URL, a.ImageURL, a.PublishedAt,
		a.SourceName, a.SourceURL, a.Category, a.LocationType, a.LocationValue,
		a.Industry, a.RelevanceScore, a.CachedAt)
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", a.ID, err)
	}
	return nil
}

// UpsertArticles writes a batch in one transaction.
func (c *Cache) UpsertArticles(articles []Article) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (id, title, description, url, image_url, published_at,
			source_name, source_url, category, location_type, location_value,
			industry, relevance, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			relevance = excluded.relevance,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range articles {
		_, err := stmt.Exec(a.ID, a.Title, a.Description, a.URL, a.ImageURL,
			a.PublishedAt, a.SourceName, a.SourceURL, a.Category,
			a.LocationType, a.LocationValue, a.Industry, a.RelevanceScore, a.CachedAt)
		if err != nil {
			return fmt.Errorf("upserting article %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// Recent returns the most recently cached articles, newest first.
func (c *Cache) Recent(limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.readDB.Query(`
		SELECT id, title, description, url, image_url, published_at,
			source_name, source_url, category, location_type, location_value,
			industry, relevance, cached_at
		FROM articles
		ORDER BY cached_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.URL, &a.ImageURL,
			&a.PublishedAt, &a.SourceName, &a.SourceURL, &a.Category,
			&a.LocationType, &a.LocationValue, &a.Industry, &a.RelevanceScore,
			&a.CachedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// DeleteOlderThan removes entries cached before cutoff and reports how many
// rows went away. The prune is not coordinated with concurrent readers; a
// racing read simply sees fewer rows.
func (c *Cache) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := c.writeDB.Exec(`DELETE FROM articles WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning articles: %w", err)
	}
	return res.RowsAffected()
}

// LastRefresh returns the time of the last cache refresh, zero if never set.
func (c *Cache) LastRefresh() time.Time {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_refresh'").Scan(&value)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (c *Cache) SetLastRefresh() error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_refresh', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339))
	return err
}
