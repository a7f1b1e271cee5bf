package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"firstwatch/internal/config"
	"firstwatch/internal/model"
)

// mockSearcher returns canned posts per query.
type mockSearcher struct {
	byQuery map[string][]model.Post
	fail    map[string]bool
}

func (m *mockSearcher) Search(_ context.Context, query string, _ int) ([]model.Post, error) {
	if m.fail[query] {
		return nil, errors.New("upstream unavailable")
	}
	return m.byQuery[query], nil
}

func TestCollectQueriesMergesAndDedupes(t *testing.T) {
	search := &mockSearcher{byQuery: map[string][]model.Post{
		"a": {{ID: "1", Text: "one"}, {ID: "2", Text: "two"}},
		"b": {{ID: "2", Text: "two"}, {ID: "3", Text: "three"}},
	}}
	c := NewCollector(search, nil, 50, 0)

	posts := c.CollectQueries(context.Background(), []string{"a", "b"})
	if len(posts) != 3 {
		t.Fatalf("expected 3 unique posts, got %d", len(posts))
	}
}

func TestCollectQueriesFailedQueryIsEmpty(t *testing.T) {
	search := &mockSearcher{
		byQuery: map[string][]model.Post{"good": {{ID: "1"}}},
		fail:    map[string]bool{"bad": true},
	}
	c := NewCollector(search, nil, 50, 0)

	posts := c.CollectQueries(context.Background(), []string{"bad", "good"})
	if len(posts) != 1 || posts[0].ID != "1" {
		t.Fatalf("expected failed query to contribute nothing, got %v", posts)
	}
}

func TestClientSearchMapsWireSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer testtoken" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{
			"status": "ok",
			"posts": [
				{
					"id": "p1",
					"text": "Shots fired downtown",
					"author": {"username": "witness1", "verified": true},
					"url": "https://social.example/p1",
					"created_at": "2026-03-14T20:00:00Z",
					"metrics": {"likes": 10, "reposts": 4, "replies": 2},
					"media": [{"type": "photo", "url": "https://img.example/1.jpg"}]
				},
				{"id": "p2", "text": "no author on this one"},
				{"id": "p1", "text": "duplicate id"}
			]
		}`))
	}))
	defer srv.Close()

	t.Setenv("FIRSTWATCH_TEST_TOKEN", "testtoken")
	client := NewClient(config.Search{
		BaseURL:    srv.URL,
		TokenEnv:   "FIRSTWATCH_TEST_TOKEN",
		ThrottleMS: 1,
	})

	posts, err := client.Search(context.Background(), "downtown", 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts after in-response dedup, got %d", len(posts))
	}

	p := posts[0]
	if p.Author.Username != "witness1" || !p.Author.Verified {
		t.Errorf("author = %+v", p.Author)
	}
	if p.Engagement.Likes != 10 || p.Engagement.Reshares != 4 {
		t.Errorf("engagement = %+v", p.Engagement)
	}
	if want := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC); !p.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v", p.Timestamp)
	}
	if len(p.Media) != 1 || p.Media[0].Kind != model.MediaPhoto {
		t.Errorf("media = %+v", p.Media)
	}
	if p.Source != model.SourceSearch {
		t.Errorf("source = %q", p.Source)
	}

	// Missing author fields are defaulted, not rejected.
	if posts[1].Author.Username != "unknown" || posts[1].Author.DisplayName != "Unknown User" {
		t.Errorf("defaulted author = %+v", posts[1].Author)
	}
}

func TestClientSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(config.Search{BaseURL: srv.URL, ThrottleMS: 1})
	if _, err := client.Search(context.Background(), "q", 50); err == nil {
		t.Error("expected error on HTTP 429")
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>Police &amp; Fire on scene</p>")
	if got != "Police & Fire on scene" {
		t.Errorf("stripHTML = %q", got)
	}
}

func TestTruncateRunesKeepsValidUTF8(t *testing.T) {
	s := strings.Repeat("é", 200) // 400 bytes
	got := truncateRunes(s, 301)
	if len(got) != 300 {
		t.Errorf("len = %d, want 300", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a multi-byte rune")
	}
	if got := truncateRunes("short", 300); got != "short" {
		t.Errorf("short string changed: %q", got)
	}
}

func TestHandleFor(t *testing.T) {
	if got := handleFor("SCC Alerts"); got != "scc_alerts" {
		t.Errorf("handleFor = %q", got)
	}
}
