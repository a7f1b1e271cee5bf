// Package score computes engagement totals, sentiment/reliability,
// and severity for a cluster of posts.
package score

import (
	"strings"

	"firstwatch/internal/model"
)

var negativeWords = []string{"false", "hoax", "fake", "debunked", "unconfirmed", "rumor"}
var positiveWords = []string{"confirmed", "verified", "official", "police", "authorities"}

var shootingKeywords = []string{"shooting", "shots fired", "active shooter", "gunfire"}
var criticalKeywords = []string{"emergency", "evacuate", "police", "swat", "lockdown"}

// Sentiment summarizes how the posts in a cluster talk about the
// incident and how trustworthy the cluster looks.
type Sentiment struct {
	Overall    string // positive, negative, or neutral
	Confidence float64
	Verified   int
	Positive   int
	Negative   int
	Neutral    int
}

// Totals sums engagement across all posts. Missing view counts are
// already zero on the Post.
func Totals(posts []model.Post) model.Engagement {
	var total model.Engagement
	for _, p := range posts {
		total.Add(p.Engagement)
	}
	return total
}

// Analyze classifies each post and aggregates. A post is negative if
// it carries debunking language, positive if it cites confirmation or
// authorities, else neutral.
func Analyze(posts []model.Post) Sentiment {
	var s Sentiment
	for _, p := range posts {
		if p.Author.Verified {
			s.Verified++
		}
		lower := strings.ToLower(p.Text)
		switch {
		case containsAny(lower, negativeWords):
			s.Negative++
		case containsAny(lower, positiveWords):
			s.Positive++
		default:
			s.Neutral++
		}
	}

	switch {
	case s.Negative > s.Positive:
		s.Overall = "negative"
	case s.Positive > s.Neutral:
		s.Overall = "positive"
	default:
		s.Overall = "neutral"
	}

	if len(posts) > 0 {
		s.Confidence = float64(max3(s.Positive, s.Negative, s.Neutral)) / float64(len(posts))
	}
	return s
}

// Reliable is the publication gate. Note the member-count arm: any
// cluster with at least one post passes it, so in practice the gate
// only fails for empty clusters. That mirrors the long-standing
// production behavior and is pinned by tests; do not tighten it.
func (s Sentiment) Reliable(postCount int) bool {
	if s.Overall == "negative" {
		return false
	}
	return s.Verified > 0 || s.Confidence > 0.6 || postCount >= 1
}

// Severity classifies urgency from keyword findings and total
// reactions (likes + reshares). The branches form a strict priority
// cascade; the first satisfied branch wins.
func Severity(posts []model.Post, total model.Engagement) model.Severity {
	reactions := total.Reactions()

	if anyPostContains(posts, shootingKeywords) {
		if reactions > 500 {
			return model.SeverityCritical
		}
		return model.SeverityHigh
	}

	if anyPostContains(posts, criticalKeywords) {
		if reactions > 1000 {
			return model.SeverityCritical
		}
		if reactions > 500 {
			return model.SeverityHigh
		}
	}

	if reactions > 1000 {
		return model.SeverityHigh
	}
	if reactions > 500 {
		return model.SeverityMedium
	}
	return model.SeverityLow
}

// IsShootingRelated reports whether a single post carries shooting
// language. Shared with the narrative synthesizer's candidate
// ordering.
func IsShootingRelated(p model.Post) bool {
	return containsAny(strings.ToLower(p.Text), shootingKeywords)
}

func anyPostContains(posts []model.Post, keywords []string) bool {
	for _, p := range posts {
		if containsAny(strings.ToLower(p.Text), keywords) {
			return true
		}
	}
	return false
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
