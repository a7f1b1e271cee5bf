package model

import "time"

// Severity classifies incident urgency. Levels are totally ordered
// critical > high > medium > low.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns the sort rank of a severity (critical=4 .. low=1).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// MediaKind is the type of an attached media item.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
	MediaGIF   MediaKind = "gif"
)

// Media is one attachment on a post.
type Media struct {
	Kind       MediaKind `json:"kind"`
	URL        string    `json:"url"`
	PreviewURL string    `json:"preview_url,omitempty"`
}

// Author identifies who wrote a post.
type Author struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Verified    bool   `json:"verified"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Engagement holds non-negative interaction counts for a post, or
// aggregate totals for an incident.
type Engagement struct {
	Likes    int `json:"likes"`
	Reshares int `json:"reshares"`
	Replies  int `json:"replies"`
	Quotes   int `json:"quotes"`
	Views    int `json:"views,omitempty"`
}

// Reactions returns likes + reshares, the signal used by severity
// scoring and incident ordering.
func (e Engagement) Reactions() int {
	return e.Likes + e.Reshares
}

// IsZero reports whether every count is zero.
func (e Engagement) IsZero() bool {
	return e.Likes == 0 && e.Reshares == 0 && e.Replies == 0 && e.Quotes == 0 && e.Views == 0
}

// Add accumulates another engagement record into this one.
func (e *Engagement) Add(other Engagement) {
	e.Likes += other.Likes
	e.Reshares += other.Reshares
	e.Replies += other.Replies
	e.Quotes += other.Quotes
	e.Views += other.Views
}

// Post source systems. Alert feeds carry no engagement metrics, so
// the zero-engagement filter exempts them.
const (
	SourceSearch = "search"
	SourceFeed   = "feed"
)

// Post is one social-media post as handed over by the ingest layer.
// Immutable once fetched; the pipeline only reads it.
type Post struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Author     Author     `json:"author"`
	URL        string     `json:"url"`
	Timestamp  time.Time  `json:"timestamp"`
	Engagement Engagement `json:"engagement"`
	Media      []Media    `json:"media,omitempty"`
	Source     string     `json:"source,omitempty"`
}

// Coordinates is a lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Citation references one source post used in a narrative summary.
// Seq numbers start at 1 and each source URL is cited at most once.
type Citation struct {
	Seq    int    `json:"seq"`
	URL    string `json:"url"`
	Handle string `json:"handle"`
}

// Discussion carries the synthesized narrative and its evidence.
type Discussion struct {
	Status     string     `json:"status"`
	Summary    string     `json:"summary"`
	Citations  []Citation `json:"citations,omitempty"`
	Sources    []Post     `json:"sources"`
	Engagement Engagement `json:"engagement"`
}

// Incident is one synthesized public-safety event. Constructed once
// per cluster or catalogue entry and immutable afterwards.
type Incident struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Severity    Severity     `json:"severity"`
	Location    string       `json:"location"`
	Timestamp   time.Time    `json:"timestamp"`
	Description string       `json:"description,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Discussion  Discussion   `json:"discussion"`
}
