// Package ingest fetches posts from the upstream social search API
// and from configured public-safety alert feeds, and hands the core a
// flat, deduplicated list of posts.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"firstwatch/internal/config"
	"firstwatch/internal/model"
)

// Searcher is the upstream post-search capability. Implementations
// must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.Post, error)
}

// Client talks to the upstream social search API. A shared limiter
// spaces out calls as a courtesy throttle; it is not a correctness
// requirement.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a search client from config. The bearer token is
// read from the configured environment variable.
func NewClient(cfg config.Search) *Client {
	throttle := time.Duration(cfg.ThrottleMS) * time.Millisecond
	if throttle <= 0 {
		throttle = 500 * time.Millisecond
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   os.Getenv(cfg.TokenEnv),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(throttle), 1),
	}
}

// IsConfigured returns whether the API token is available.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// wirePost is the upstream wire schema for one post.
type wirePost struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Verified    bool   `json:"verified"`
		AvatarURL   string `json:"avatar_url"`
	} `json:"author"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	Metrics   struct {
		Likes   int `json:"likes"`
		Reposts int `json:"reposts"`
		Replies int `json:"replies"`
		Quotes  int `json:"quotes"`
		Views   int `json:"views"`
	} `json:"metrics"`
	Media []struct {
		Type       string `json:"type"`
		URL        string `json:"url"`
		PreviewURL string `json:"preview_url"`
	} `json:"media"`
}

// Search issues one search query, deduplicating by post id within the
// response.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Post, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if limit < 10 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	params := url.Values{
		"q":     {query},
		"limit": {fmt.Sprintf("%d", limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: HTTP %d", query, resp.StatusCode)
	}

	var result struct {
		Status string     `json:"status"`
		Posts  []wirePost `json:"posts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("search %q: decoding response: %w", query, err)
	}
	if result.Status != "" && result.Status != "ok" {
		return nil, fmt.Errorf("search %q: upstream status %s", query, result.Status)
	}

	seen := make(map[string]struct{}, len(result.Posts))
	var posts []model.Post
	for _, wp := range result.Posts {
		if wp.ID == "" {
			continue
		}
		if _, ok := seen[wp.ID]; ok {
			continue
		}
		seen[wp.ID] = struct{}{}
		posts = append(posts, mapWirePost(wp))
	}
	return posts, nil
}

// mapWirePost converts the wire schema to the core Post, defaulting
// malformed fields instead of rejecting the post.
func mapWirePost(wp wirePost) model.Post {
	author := model.Author{
		Username:    wp.Author.Username,
		DisplayName: wp.Author.DisplayName,
		Verified:    wp.Author.Verified,
		AvatarURL:   wp.Author.AvatarURL,
	}
	if author.Username == "" {
		author.Username = "unknown"
	}
	if author.DisplayName == "" {
		author.DisplayName = "Unknown User"
	}

	var ts time.Time
	if wp.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, wp.CreatedAt); err == nil {
			ts = t
		}
	}

	var media []model.Media
	for _, m := range wp.Media {
		if m.URL == "" {
			continue
		}
		kind := model.MediaKind(m.Type)
		switch kind {
		case model.MediaPhoto, model.MediaVideo, model.MediaGIF:
		default:
			kind = model.MediaPhoto
		}
		media = append(media, model.Media{Kind: kind, URL: m.URL, PreviewURL: m.PreviewURL})
	}

	return model.Post{
		ID:        wp.ID,
		Text:      wp.Text,
		Author:    author,
		URL:       wp.URL,
		Timestamp: ts,
		Engagement: model.Engagement{
			Likes:    wp.Metrics.Likes,
			Reshares: wp.Metrics.Reposts,
			Replies:  wp.Metrics.Replies,
			Quotes:   wp.Metrics.Quotes,
			Views:    wp.Metrics.Views,
		},
		Media:  media,
		Source: model.SourceSearch,
	}
}
