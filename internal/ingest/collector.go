package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"firstwatch/internal/model"
)

// Collector fans search queries out concurrently and merges the
// results. Each fetch task owns its own result slot; nothing is
// shared until the join. A failed query contributes zero posts and a
// log line, never an error: the pipeline downstream must always get a
// batch.
type Collector struct {
	search   Searcher
	feeds    *FeedSource
	pageSize int
	window   time.Duration
}

// NewCollector creates a collector. feeds may be nil when no alert
// feeds are configured.
func NewCollector(search Searcher, feeds *FeedSource, pageSize int, window time.Duration) *Collector {
	if pageSize <= 0 {
		pageSize = 50
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Collector{search: search, feeds: feeds, pageSize: pageSize, window: window}
}

// CollectQueries runs all queries concurrently and returns the merged,
// id-deduplicated posts.
func (c *Collector) CollectQueries(ctx context.Context, queries []string) []model.Post {
	results := make([][]model.Post, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			posts, err := c.search.Search(ctx, query, c.pageSize)
			if err != nil {
				log.Printf("Query %q failed, treating as empty: %v", query, err)
				return nil
			}
			results[i] = posts
			return nil
		})
	}
	g.Wait() //nolint:errcheck // tasks never return errors

	var merged []model.Post
	for _, posts := range results {
		merged = append(merged, posts...)
	}
	return dedupeByID(merged)
}

// CollectLive gathers the live batch: standing queries, one generated
// query per monitored city, and the alert feeds.
func (c *Collector) CollectLive(ctx context.Context, queries, cities []string) []model.Post {
	all := make([]string, 0, len(queries)+len(cities))
	all = append(all, queries...)
	for _, city := range cities {
		all = append(all, cityQuery(city))
	}

	posts := c.CollectQueries(ctx, all)

	if c.feeds != nil {
		posts = append(posts, c.feeds.Fetch(c.window)...)
		posts = dedupeByID(posts)
	}

	log.Printf("Collected %d posts from %d queries and %d cities", len(posts), len(queries), len(cities))
	return posts
}

func cityQuery(city string) string {
	return fmt.Sprintf("(shooting OR police OR emergency OR lockdown) %s", city)
}

func dedupeByID(posts []model.Post) []model.Post {
	seen := make(map[string]struct{}, len(posts))
	var out []model.Post
	for _, p := range posts {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
