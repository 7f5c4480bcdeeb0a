package store

import (
	"fmt"
	"time"
)

// Bookmark is a per-user snapshot of an article; saving the same URL twice
// for a user refreshes the snapshot instead of duplicating it.
type Bookmark struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	ArticleID   string    `json:"article_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	SourceName  string    `json:"source_name,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Store) SaveBookmark(b Bookmark) (int64, error) {
	res, err := s.writeDB.Exec(`
		INSERT INTO bookmarks (user_id, article_id, title, description, url,
			image_url, source_name, category, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, url) DO UPDATE SET
			article_id = excluded.article_id,
			title = excluded.title,
			description = excluded.description,
			category = excluded.category
	`, b.UserID, b.ArticleID, b.Title, b.Description, b.URL,
		b.ImageURL, b.SourceName, b.Category, b.PublishedAt)
	if err != nil {
		return 0, fmt.Errorf("saving bookmark: %w", err)
	}
	return res.LastInsertId()
}

// Bookmarks lists a user's bookmarks, newest first.
func (s *Store) Bookmarks(userID int64) ([]Bookmark, error) {
	rows, err := s.readDB.Query(`
		SELECT id, user_id, article_id, title, description, url,
			image_url, source_name, category, published_at, created_at
		FROM bookmarks WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying bookmarks: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.ArticleID, &b.Title, &b.Description,
			&b.URL, &b.ImageURL, &b.SourceName, &b.Category, &b.PublishedAt,
			&b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBookmark removes a bookmark owned by the user.
func (s *Store) DeleteBookmark(userID, id int64) error {
	res, err := s.writeDB.Exec(`DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
