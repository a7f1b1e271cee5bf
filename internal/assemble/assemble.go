// Package assemble orchestrates the incident pipeline: it refreshes
// the curated catalogue, anchors the live batch, scores and narrates
// every surviving cluster, and returns one sorted incident list.
package assemble

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"firstwatch/internal/anchor"
	"firstwatch/internal/config"
	"firstwatch/internal/ingest"
	"firstwatch/internal/model"
	"firstwatch/internal/narrative"
	"firstwatch/internal/score"
)

// Collector is the post-gathering dependency of the assembler.
type Collector interface {
	CollectQueries(ctx context.Context, queries []string) []model.Post
	CollectLive(ctx context.Context, queries, cities []string) []model.Post
}

var _ Collector = (*ingest.Collector)(nil)

// Result holds the outcome of one assembly run.
type Result struct {
	Incidents []model.Incident
	Catalogue int
	Live      int
}

// Assembler builds the final incident list. It is total: any input,
// including a fully failed fetch, yields a (possibly empty) list.
type Assembler struct {
	collector Collector
	engine    *anchor.Engine
	catalogue []config.KnownIncident
}

// New creates an assembler.
func New(collector Collector, engine *anchor.Engine, catalogue []config.KnownIncident) *Assembler {
	if engine == nil {
		engine = anchor.NewEngine(nil, 0, 0)
	}
	return &Assembler{collector: collector, engine: engine, catalogue: catalogue}
}

// Assemble runs both paths and merges them, catalogue incidents
// first, then sorts descending by severity rank and total reactions.
// The two groups are not cross-deduplicated.
func (a *Assembler) Assemble(ctx context.Context, queries, cities []string) *Result {
	r := &Result{}

	catIncidents := a.assembleCatalogue(ctx)
	r.Catalogue = len(catIncidents)

	liveIncidents := a.assembleLive(a.collector.CollectLive(ctx, queries, cities))
	r.Live = len(liveIncidents)

	r.Incidents = append(catIncidents, liveIncidents...)
	sort.SliceStable(r.Incidents, func(i, j int) bool {
		ri, rj := r.Incidents[i], r.Incidents[j]
		if ri.Severity.Rank() != rj.Severity.Rank() {
			return ri.Severity.Rank() > rj.Severity.Rank()
		}
		return ri.Discussion.Engagement.Reactions() > rj.Discussion.Engagement.Reactions()
	})

	log.Printf("Assembled %d incidents (%d catalogue, %d live)", len(r.Incidents), r.Catalogue, r.Live)
	return r
}

// assembleCatalogue re-queries, re-scores, and re-summarizes every
// catalogue entry. Entries with no surviving posts are silently
// omitted.
func (a *Assembler) assembleCatalogue(ctx context.Context) []model.Incident {
	var incidents []model.Incident
	for _, entry := range a.catalogue {
		posts := dropZeroEngagement(a.collector.CollectQueries(ctx, entry.Queries))
		if len(posts) == 0 {
			log.Printf("Catalogue entry %q: no surviving posts, skipping", entry.Title)
			continue
		}

		totals := score.Totals(posts)
		summary := narrative.Summarize(posts, entry.Location)
		severity := catalogueSeverity(entry.Description)

		ts := latestTimestamp(posts)
		if entry.Timestamp != "" {
			if t, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
				ts = t
			}
		}

		incidents = append(incidents, model.Incident{
			ID:          uuid.NewString(),
			Title:       entry.Title,
			Severity:    severity,
			Location:    entry.Location,
			Timestamp:   ts,
			Description: entry.Description,
			Coordinates: &model.Coordinates{Lat: entry.Lat, Lng: entry.Lng},
			Discussion: model.Discussion{
				Status:     statusFor(severity),
				Summary:    summary.Text,
				Citations:  summary.Citations,
				Sources:    posts,
				Engagement: totals,
			},
		})
	}
	return incidents
}

// assembleLive anchors the batch and builds one incident per
// surviving cluster.
func (a *Assembler) assembleLive(posts []model.Post) []model.Incident {
	posts = dropZeroEngagement(posts)
	clusters := a.engine.Anchor(posts)

	var incidents []model.Incident
	for _, c := range clusters {
		totals := score.Totals(c.Posts)
		sentiment := score.Analyze(c.Posts)
		if !sentiment.Reliable(len(c.Posts)) && len(c.Posts) < 2 {
			continue
		}

		severity := score.Severity(c.Posts, totals)
		summary := narrative.Summarize(c.Posts, c.Location)

		incidents = append(incidents, model.Incident{
			ID:        uuid.NewString(),
			Title:     narrative.Title(c.Posts, c.Location),
			Severity:  severity,
			Location:  c.Location,
			Timestamp: c.Latest,
			Discussion: model.Discussion{
				Status:     statusFor(severity),
				Summary:    summary.Text,
				Citations:  summary.Citations,
				Sources:    c.Posts,
				Engagement: totals,
			},
		})
	}
	return incidents
}

// Mass-casualty phrasing in a catalogue description forces critical;
// fatality phrasing forces high; everything else defaults to medium.
var massCasualtyPhrases = []string{"mass shooting", "4 people killed", "3 children killed"}
var fatalityPhrases = []string{"fatally", "died", "killed", "life-threatening"}

func catalogueSeverity(description string) model.Severity {
	lower := strings.ToLower(description)
	for _, phrase := range massCasualtyPhrases {
		if strings.Contains(lower, phrase) {
			return model.SeverityCritical
		}
	}
	for _, phrase := range fatalityPhrases {
		if strings.Contains(lower, phrase) {
			return model.SeverityHigh
		}
	}
	return model.SeverityMedium
}

func statusFor(severity model.Severity) string {
	if severity == model.SeverityCritical || severity == model.SeverityHigh {
		return "active"
	}
	return "monitoring"
}

// dropZeroEngagement filters out posts with no interactions at all.
// Alert-feed posts are exempt: those feeds carry no engagement
// metrics by nature.
func dropZeroEngagement(posts []model.Post) []model.Post {
	var out []model.Post
	for _, p := range posts {
		if p.Engagement.IsZero() && p.Source != model.SourceFeed {
			continue
		}
		out = append(out, p)
	}
	return out
}

func latestTimestamp(posts []model.Post) time.Time {
	var latest time.Time
	for _, p := range posts {
		if p.Timestamp.After(latest) {
			latest = p.Timestamp
		}
	}
	return latest
}
