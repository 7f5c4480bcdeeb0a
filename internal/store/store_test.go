package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testUser(t *testing.T, s *Store) int64 {
	t.Helper()
	id, err := s.CreateUser("Ana", "ana@example.com", "hash")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return id
}

func TestCreateAndLookupUser(t *testing.T) {
	s := testStore(t)
	id := testUser(t, s)

	u, err := s.UserByEmail("ANA@example.com")
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if u.ID != id || u.Name != "Ana" {
		t.Errorf("unexpected user %+v", u)
	}

	byID, err := s.UserByID(id)
	if err != nil {
		t.Fatalf("lookup by id: %v", err)
	}
	if byID.Email != "ana@example.com" {
		t.Errorf("email = %q", byID.Email)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := testStore(t)
	testUser(t, s)

	if _, err := s.CreateUser("Other", "ana@example.com", "hash2"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.UserByEmail("missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.UserByID(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := testStore(t)
	id := testUser(t, s)

	if err := s.UpdateProfile(id, "Ottawa", "ON", "CA", "technology"); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	u, err := s.UserByID(id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.City != "Ottawa" || u.State != "ON" || u.Country != "CA" || u.CareerField != "technology" {
		t.Errorf("profile not updated: %+v", u)
	}

	if err := s.UpdateProfile(999, "a", "b", "c", "d"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestBookmarkSaveIsIdempotent(t *testing.T) {
	s := testStore(t)
	id := testUser(t, s)

	b := Bookmark{
		UserID:      id,
		ArticleID:   "art-1",
		Title:       "Markets rally",
		URL:         "https://example.com/story",
		PublishedAt: time.Now(),
	}
	if _, err := s.SaveBookmark(b); err != nil {
		t.Fatalf("first save: %v", err)
	}
	b.Title = "Markets rally again"
	if _, err := s.SaveBookmark(b); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Bookmarks(id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(got))
	}
	if got[0].Title != "Markets rally again" {
		t.Errorf("snapshot not refreshed: %q", got[0].Title)
	}
}

func TestDeleteBookmarkScopedToOwner(t *testing.T) {
	s := testStore(t)
	id := testUser(t, s)
	other, err := s.CreateUser("Ben", "ben@example.com", "hash")
	if err != nil {
		t.Fatalf("creating second user: %v", err)
	}

	bid, err := s.SaveBookmark(Bookmark{UserID: id, ArticleID: "a", Title: "T", URL: "https://x.com", PublishedAt: time.Now()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.DeleteBookmark(other, bid); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting someone else's bookmark, got %v", err)
	}
	if err := s.DeleteBookmark(id, bid); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	got, err := s.Bookmarks(id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no bookmarks after delete, got %d", len(got))
	}
}

func TestHistoryAnalytics(t *testing.T) {
	s := testStore(t)
	id := testUser(t, s)

	events := []ReadEvent{
		{ArticleID: "1", Title: "A", Category: "local", SourceName: "Gazette"},
		{ArticleID: "2", Title: "B", Category: "local", SourceName: "Gazette"},
		{ArticleID: "3", Title: "C", Category: "industry", SourceName: "Bloomberg"},
	}
	for _, ev := range events {
		if err := s.RecordRead(id, ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	a, err := s.Analytics(id)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalReads != 3 {
		t.Errorf("total = %d, want 3", a.TotalReads)
	}
	if a.ReadsLastWeek != 3 {
		t.Errorf("last week = %d, want 3", a.ReadsLastWeek)
	}
	if a.ByCategory["local"] != 2 || a.ByCategory["industry"] != 1 {
		t.Errorf("by category = %v", a.ByCategory)
	}
	if len(a.TopSources) == 0 || a.TopSources[0].Source != "Gazette" {
		t.Errorf("top sources = %v", a.TopSources)
	}
}

func TestAnalyticsEmptyHistory(t *testing.T) {
	s := testStore(t)
	id := testUser(t, s)

	a, err := s.Analytics(id)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalReads != 0 || len(a.ByCategory) != 0 || len(a.TopSources) != 0 {
		t.Errorf("expected empty analytics, got %+v", a)
	}
}
