// Package narrative builds the human-readable summary and headline
// for an anchored incident, with inline citations back to the source
// posts.
package narrative

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"firstwatch/internal/location"
	"firstwatch/internal/model"
	"firstwatch/internal/score"
)

const (
	maxCandidates = 7
	clauseContext = 200
)

// Summary is the synthesized narrative plus its citations. Citation
// sequence numbers start at 1 and each source URL appears at most
// once.
type Summary struct {
	Text      string
	Citations []model.Citation
}

// Clause extraction, one pattern per category. Each captures the
// sentence-ish span around the keyword.
var (
	shootingClauseRe   = regexp.MustCompile(`(?i)[^.!?\n]*(?:shooting|shots fired|gunfire|shooter)[^.!?\n]*`)
	suspectClauseRe    = regexp.MustCompile(`(?i)[^.!?\n]*(?:suspect|arrested|custody)[^.!?\n]*`)
	resolutionClauseRe = regexp.MustCompile(`(?i)[^.!?\n]*(?:resolved|cleared|evacuated|contained|arrested)[^.!?\n]*`)
	casualtyClauseRe   = regexp.MustCompile(`(?i)[^.!?\n]*(?:injured|killed|wounded|victim)[^.!?\n]*`)
)

// Summarize builds the narrative for a cluster anchored at loc.
func Summarize(posts []model.Post, loc string) Summary {
	if len(posts) == 0 {
		return Summary{Text: "No information available."}
	}

	candidates := rankCandidates(posts)
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	located := filterByLocation(candidates, loc)
	if len(located) > 0 {
		candidates = located
	}

	shootingClause := firstClause(candidates, shootingClauseRe)
	suspectClause := firstClause(candidates, suspectClauseRe)
	resolutionClause := firstClause(candidates, resolutionClauseRe)
	casualtyClause := firstClause(candidates, casualtyClauseRe)

	var b strings.Builder
	cites := newCiter()

	var lead model.Post
	if shootingClause != "" {
		lead = pickLead(candidates, loc, true)
		fmt.Fprintf(&b, "Shooting reported at %s. ", loc)
	} else {
		lead = pickLead(candidates, loc, false)
		fmt.Fprintf(&b, "Incident reported at %s. ", loc)
	}
	fmt.Fprintf(&b, "%s %s. ", citeLink(lead, cites), casualtyPhrase(casualtyClause))

	if suspectClause != "" {
		if other, ok := distinctFrom(candidates, lead); ok && indicatesCustody(suspectClause) {
			fmt.Fprintf(&b, "%s confirmed suspect in custody. ", citeLink(other, cites))
		}
	}

	if resolutionClause != "" && strings.Contains(strings.ToLower(resolutionClause), "cleared") {
		b.WriteString("Scene cleared.")
	}

	return Summary{
		Text:      strings.TrimSpace(b.String()),
		Citations: cites.all,
	}
}

// rankCandidates orders posts by shooting-keyword presence, then by
// reactions, without mutating the input.
func rankCandidates(posts []model.Post) []model.Post {
	ranked := make([]model.Post, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score.IsShootingRelated(ranked[i]), score.IsShootingRelated(ranked[j])
		if si != sj {
			return si
		}
		return ranked[i].Engagement.Reactions() > ranked[j].Engagement.Reactions()
	})
	return ranked
}

func filterByLocation(posts []model.Post, loc string) []model.Post {
	var out []model.Post
	for _, p := range posts {
		if mentionsLocation(p, loc) {
			out = append(out, p)
		}
	}
	return out
}

func mentionsLocation(p model.Post, loc string) bool {
	if loc == "" {
		return false
	}
	lower := strings.ToLower(p.Text)
	if strings.Contains(lower, strings.ToLower(loc)) {
		return true
	}
	for _, alias := range location.Aliases(loc) {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}

// pickLead selects the post the opening sentence cites: the first
// candidate that is shooting-related (when required) and mentions the
// location, falling back to the top candidate.
func pickLead(candidates []model.Post, loc string, wantShooting bool) model.Post {
	for _, p := range candidates {
		if wantShooting && !score.IsShootingRelated(p) {
			continue
		}
		if mentionsLocation(p, loc) {
			return p
		}
	}
	return candidates[0]
}

func distinctFrom(candidates []model.Post, used model.Post) (model.Post, bool) {
	for _, p := range candidates {
		if p.URL != used.URL {
			return p, true
		}
	}
	return model.Post{}, false
}

// firstClause scans the candidates in order and returns the first,
// deduplicated clause match for the pattern, trimmed to the context
// budget.
func firstClause(candidates []model.Post, re *regexp.Regexp) string {
	seen := make(map[string]bool)
	for _, p := range candidates {
		for _, m := range re.FindAllString(p.Text, -1) {
			clause := strings.TrimSpace(m)
			if clause == "" || seen[clause] {
				continue
			}
			seen[clause] = true
			return truncateRunes(clause, clauseContext)
		}
	}
	return ""
}

// truncateRunes trims s to at most limit bytes without splitting a
// multi-byte rune.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func casualtyPhrase(clause string) string {
	lower := strings.ToLower(clause)
	switch {
	case strings.Contains(lower, "killed") || strings.Contains(lower, "fatal"):
		return "reported fatalities"
	case strings.Contains(lower, "injured") || strings.Contains(lower, "wounded"):
		return "reported injuries"
	default:
		return "reported the incident"
	}
}

func indicatesCustody(clause string) bool {
	lower := strings.ToLower(clause)
	return strings.Contains(lower, "arrest") || strings.Contains(lower, "custody")
}

// citer assigns sequential citation numbers, one per distinct source
// URL, in order of first use.
type citer struct {
	byURL map[string]int
	all   []model.Citation
}

func newCiter() *citer {
	return &citer{byURL: make(map[string]int)}
}

func (c *citer) cite(p model.Post) int {
	if seq, ok := c.byURL[p.URL]; ok {
		return seq
	}
	seq := len(c.all) + 1
	c.byURL[p.URL] = seq
	c.all = append(c.all, model.Citation{
		Seq:    seq,
		URL:    p.URL,
		Handle: "@" + p.Author.Username,
	})
	return seq
}

func citeLink(p model.Post, c *citer) string {
	c.cite(p)
	return fmt.Sprintf("[@%s](%s)", p.Author.Username, p.URL)
}
