package anchor

import (
	"testing"
	"time"

	"firstwatch/internal/model"
)

var t0 = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func post(id, text string, ts time.Time) model.Post {
	return model.Post{
		ID:        id,
		Text:      text,
		URL:       "https://example.com/p/" + id,
		Author:    model.Author{Username: "witness_" + id},
		Timestamp: ts,
	}
}

func TestSubstringLocationsSameCluster(t *testing.T) {
	e := NewEngine(nil, 0, 0)
	clusters := e.Anchor([]model.Post{
		post("1", "Shooting reported in San Jose, stay away from downtown", t0),
		post("2", "Shooting at San Jose State, police on scene", t0.Add(2*time.Hour)),
	})

	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if got := len(clusters[0].Posts); got != 2 {
		t.Errorf("expected 2 members, got %d", got)
	}
	// The more specific, higher-confidence location wins the anchor.
	if clusters[0].Location != "San Jose State University" {
		t.Errorf("cluster location = %q, want San Jose State University", clusters[0].Location)
	}
}

func TestPostsOutsideWindowSplit(t *testing.T) {
	e := NewEngine(nil, 0, 0)
	clusters := e.Anchor([]model.Post{
		post("1", "Shots fired in Milpitas", t0),
		post("2", "Shots fired in Milpitas", t0.Add(30*time.Hour)),
	})
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters for >24h gap, got %d", len(clusters))
	}
}

func TestFallbackPassJoinsByLiteralMention(t *testing.T) {
	e := NewEngine(nil, 0, 0)
	clusters := e.Anchor([]model.Post{
		post("1", "Fire burning in the Greenfield Acres neighborhood", t0),
		post("2", "greenfield acres is full of smoke right now", t0.Add(time.Hour)),
	})

	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if got := len(clusters[0].Posts); got != 2 {
		t.Errorf("expected fallback post to join, got %d members", got)
	}
	// Pass 2 must not disturb the anchored location.
	if clusters[0].Location != "Greenfield Acres" {
		t.Errorf("cluster location = %q, want Greenfield Acres", clusters[0].Location)
	}
}

func TestUnanchoredPostsDropped(t *testing.T) {
	e := NewEngine(nil, 0, 0)
	clusters := e.Anchor([]model.Post{
		post("1", "what a strange evening", t0),
	})
	if len(clusters) != 0 {
		t.Fatalf("expected no clusters, got %d", len(clusters))
	}
}

func TestShootingClusterRequiresTopicOverlap(t *testing.T) {
	e := NewEngine(nil, 0, 0)
	clusters := e.Anchor([]model.Post{
		post("1", "Active shooter near Oakridge Mall", t0),
		post("2", "Protest arrest at Oakridge Mall earlier today", t0.Add(time.Hour)),
	})
	if len(clusters) != 2 {
		t.Fatalf("expected shooting and arrest to stay separate, got %d clusters", len(clusters))
	}
}

func TestValleyFairPostsFormOneCluster(t *testing.T) {
	e := NewEngine(nil, 0, 0)
	clusters := e.Anchor([]model.Post{
		post("1", "Shooting at Valley Fair, everyone run", t0),
		post("2", "Shots fired at Valley Fair in San Jose", t0.Add(30*time.Minute)),
		post("3", "Valley Fair shooting confirmed by police", t0.Add(2*time.Hour)),
	})

	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if clusters[0].Location != "Westfield Valley Fair" {
		t.Errorf("cluster location = %q, want Westfield Valley Fair", clusters[0].Location)
	}
	if len(clusters[0].Posts) != 3 {
		t.Errorf("expected 3 members, got %d", len(clusters[0].Posts))
	}
	if !clusters[0].Topics["shooting"] {
		t.Error("expected shooting topic on cluster")
	}
}

func TestDuplicatePostIDsNotDoubleCounted(t *testing.T) {
	e := NewEngine(nil, 0, 0)
	p := post("1", "Lockdown at Santana Row", t0)
	clusters := e.Anchor([]model.Post{p, p})
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if len(clusters[0].Posts) != 1 {
		t.Errorf("expected duplicate id to be ignored, got %d members", len(clusters[0].Posts))
	}
}
