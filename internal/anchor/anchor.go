// Package anchor groups posts into location-bound incident clusters.
package anchor

import (
	"log"
	"strings"
	"time"

	"firstwatch/internal/location"
	"firstwatch/internal/model"
	"firstwatch/internal/topic"
)

const (
	// DefaultWindow is the recency window for cluster membership.
	DefaultWindow = 24 * time.Hour
	// DefaultMinSize is the minimum member count for a cluster to
	// survive into the output.
	DefaultMinSize = 1

	// Pass 1 ignores posts whose extracted location is weaker than
	// this.
	confidentThreshold = 0.5
	// A post may replace the cluster's anchored location only above
	// this confidence.
	upgradeThreshold = 0.8
)

// Cluster is the working accumulator for one incident. It is mutated
// in place in the engine's arena during a batch and read-only
// afterwards.
type Cluster struct {
	Posts    []model.Post
	Location string
	Topics   map[string]bool
	Latest   time.Time

	members map[string]bool
}

func newCluster(p model.Post, loc string, tags map[string]bool) *Cluster {
	c := &Cluster{
		Posts:    []model.Post{p},
		Location: loc,
		Topics:   make(map[string]bool),
		Latest:   p.Timestamp,
		members:  map[string]bool{p.ID: true},
	}
	for label := range tags {
		c.Topics[label] = true
	}
	return c
}

func (c *Cluster) attach(p model.Post, tags map[string]bool) {
	if c.members[p.ID] {
		return
	}
	c.members[p.ID] = true
	c.Posts = append(c.Posts, p)
	for label := range tags {
		c.Topics[label] = true
	}
}

// Engine clusters a batch of posts into incidents. Pass 1 seeds and
// grows clusters from posts with a confident extracted location;
// pass 2 folds the remaining posts in only when their text literally
// mentions an existing cluster's location. Posts matching neither are
// dropped.
type Engine struct {
	extractor *location.Extractor
	window    time.Duration
	minSize   int
}

// NewEngine creates an anchoring engine. Zero values select the
// defaults (24h window, minimum cluster size 1).
func NewEngine(extractor *location.Extractor, window time.Duration, minSize int) *Engine {
	if extractor == nil {
		extractor = location.NewExtractor()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if minSize <= 0 {
		minSize = DefaultMinSize
	}
	return &Engine{extractor: extractor, window: window, minSize: minSize}
}

// Anchor groups the batch into clusters and returns the survivors in
// seed order.
func (e *Engine) Anchor(posts []model.Post) []*Cluster {
	var arena []*Cluster
	processed := make([]bool, len(posts))

	// Pass 1: confident anchoring.
	for i, p := range posts {
		match := e.extractor.Extract(p.Text)
		if match.Confidence < confidentThreshold {
			continue
		}
		tags := topic.Tags(p.Text)

		idx := e.findCluster(arena, match.Name, tags, p.Timestamp)
		if idx >= 0 {
			c := arena[idx]
			c.attach(p, tags)
			if p.Timestamp.After(c.Latest) {
				c.Latest = p.Timestamp
			}
			if match.Confidence > upgradeThreshold && len(match.Name) > len(c.Location) {
				c.Location = match.Name
			}
		} else {
			arena = append(arena, newCluster(p, match.Name, tags))
		}
		processed[i] = true
	}

	// Pass 2: fallback anchoring by literal location mention.
	for i, p := range posts {
		if processed[i] {
			continue
		}
		tags := topic.Tags(p.Text)
		lower := strings.ToLower(p.Text)
		for _, c := range arena {
			if c.Location == "" || !strings.Contains(lower, strings.ToLower(c.Location)) {
				continue
			}
			if len(c.Topics) > 0 && len(tags) > 0 && !topic.Overlaps(c.Topics, tags) {
				continue
			}
			if absDuration(p.Timestamp.Sub(c.Latest)) > e.window {
				continue
			}
			c.attach(p, tags)
			processed[i] = true
			break
		}
	}

	var out []*Cluster
	dropped := 0
	for _, c := range arena {
		if len(c.Posts) >= e.minSize {
			out = append(out, c)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("Anchoring dropped %d clusters below minimum size %d", dropped, e.minSize)
	}
	return out
}

// findCluster returns the arena index of the first cluster the post
// belongs to, or -1.
func (e *Engine) findCluster(arena []*Cluster, loc string, tags map[string]bool, ts time.Time) int {
	for i, c := range arena {
		if !locationsRelated(c.Location, loc) {
			continue
		}
		// Shooting clusters only absorb topically compatible posts;
		// anything else matches on location and time alone.
		if len(c.Topics) > 0 && len(tags) > 0 &&
			(c.Topics[topic.Shooting] || tags[topic.Shooting]) &&
			!topic.Overlaps(c.Topics, tags) {
			continue
		}
		if absDuration(ts.Sub(c.Latest)) > e.window {
			continue
		}
		return i
	}
	return -1
}

// locationsRelated reports equality or substring containment in either
// direction, case-insensitive.
func locationsRelated(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return la == lb || strings.Contains(la, lb) || strings.Contains(lb, la)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
