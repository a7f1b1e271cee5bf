package score

import (
	"testing"

	"firstwatch/internal/model"
)

func textPost(text string, likes, reshares int) model.Post {
	return model.Post{
		Text:       text,
		Engagement: model.Engagement{Likes: likes, Reshares: reshares},
	}
}

func TestTotals(t *testing.T) {
	posts := []model.Post{
		{Engagement: model.Engagement{Likes: 10, Reshares: 5, Replies: 2, Quotes: 1, Views: 100}},
		{Engagement: model.Engagement{Likes: 3, Reshares: 7}},
	}
	got := Totals(posts)
	want := model.Engagement{Likes: 13, Reshares: 12, Replies: 2, Quotes: 1, Views: 100}
	if got != want {
		t.Errorf("Totals = %+v, want %+v", got, want)
	}
	if got.Reactions() != 25 {
		t.Errorf("Reactions = %d, want 25", got.Reactions())
	}
}

func TestAnalyze(t *testing.T) {
	posts := []model.Post{
		{Text: "Police confirmed the incident", Author: model.Author{Verified: true}},
		{Text: "this is a hoax, totally fake"},
		{Text: "so scary out there"},
		{Text: "officials on scene, confirmed"},
	}
	s := Analyze(posts)
	if s.Positive != 2 || s.Negative != 1 || s.Neutral != 1 {
		t.Errorf("split = %d/%d/%d, want 2/1/1", s.Positive, s.Negative, s.Neutral)
	}
	if s.Overall != "positive" {
		t.Errorf("Overall = %q, want positive", s.Overall)
	}
	if s.Verified != 1 {
		t.Errorf("Verified = %d, want 1", s.Verified)
	}
	if s.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", s.Confidence)
	}
}

func TestAnalyzeNegativeMajority(t *testing.T) {
	s := Analyze([]model.Post{
		{Text: "debunked, this is false"},
		{Text: "rumor going around"},
		{Text: "police confirmed nothing"},
	})
	if s.Overall != "negative" {
		t.Errorf("Overall = %q, want negative", s.Overall)
	}
}

// The >=1 member arm makes the gate pass for any non-negative,
// non-empty cluster. This is observed production behavior, kept
// deliberately.
func TestReliableGateAlwaysPassesWithOnePost(t *testing.T) {
	s := Sentiment{Overall: "neutral", Confidence: 0.2}
	if !s.Reliable(1) {
		t.Error("single neutral post should pass the gate")
	}

	neg := Sentiment{Overall: "negative", Verified: 3, Confidence: 1}
	if neg.Reliable(5) {
		t.Error("negative sentiment must fail the gate")
	}
}

func TestSeverityCascade(t *testing.T) {
	tests := []struct {
		name  string
		posts []model.Post
		want  model.Severity
	}{
		{"shooting high engagement", []model.Post{textPost("shots fired downtown", 400, 200)}, model.SeverityCritical},
		{"shooting low engagement", []model.Post{textPost("shooting reported", 10, 0)}, model.SeverityHigh},
		{"critical keywords very high engagement", []model.Post{textPost("SWAT on scene, evacuate now", 900, 200)}, model.SeverityCritical},
		{"critical keywords high engagement", []model.Post{textPost("police lockdown", 400, 200)}, model.SeverityHigh},
		{"critical keywords low engagement", []model.Post{textPost("police activity nearby", 5, 0)}, model.SeverityLow},
		{"no keywords very high engagement", []model.Post{textPost("big crowd gathering", 800, 300)}, model.SeverityHigh},
		{"no keywords medium engagement", []model.Post{textPost("big crowd gathering", 400, 200)}, model.SeverityMedium},
		{"quiet", []model.Post{textPost("nothing much", 1, 1)}, model.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Severity(tt.posts, Totals(tt.posts)); got != tt.want {
				t.Errorf("Severity = %q, want %q", got, tt.want)
			}
		})
	}
}

// Holding keyword findings fixed, more reactions never lowers the
// tier.
func TestSeverityMonotonicInEngagement(t *testing.T) {
	for _, text := range []string{"shooting reported", "evacuate now", "crowds everywhere"} {
		prev := 0
		for _, likes := range []int{0, 501, 1001, 5000} {
			posts := []model.Post{textPost(text, likes, 0)}
			rank := Severity(posts, Totals(posts)).Rank()
			if rank < prev {
				t.Errorf("severity dropped for %q at %d likes", text, likes)
			}
			prev = rank
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	posts := []model.Post{
		{Text: "Police confirmed shooting", Author: model.Author{Verified: true}},
		{Text: "so scary"},
	}
	first := Analyze(posts)
	for i := 0; i < 3; i++ {
		if got := Analyze(posts); got != first {
			t.Fatalf("Analyze not idempotent: %+v vs %+v", got, first)
		}
	}
}
