// Package topic tags post text with coarse incident-topic labels.
package topic

import "strings"

// Labels used across the anchoring and scoring pipeline.
const (
	Shooting      = "shooting"
	ActiveShooter = "active_shooter"
	Arrest        = "arrest"
	Suspect       = "suspect"
	Casualties    = "casualties"
	Evacuation    = "evacuation"
	Lockdown      = "lockdown"
)

// vocabulary maps each label to its trigger keywords.
var vocabulary = []struct {
	label    string
	keywords []string
}{
	{Shooting, []string{"shooting", "shots fired", "gunfire", "shot", "shooter"}},
	{ActiveShooter, []string{"active shooter"}},
	{Arrest, []string{"arrest", "arrested", "in custody"}},
	{Suspect, []string{"suspect"}},
	{Casualties, []string{"injured", "killed", "victim"}},
	{Evacuation, []string{"evacuation", "evacuate", "evacuated"}},
	{Lockdown, []string{"lockdown"}},
}

// Tags returns the set of topic labels matched by the text. The set
// may be empty and contains no duplicates.
func Tags(text string) map[string]bool {
	lower := strings.ToLower(text)
	tags := make(map[string]bool)
	for _, entry := range vocabulary {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				tags[entry.label] = true
				break
			}
		}
	}
	return tags
}

// Overlaps reports whether the two tag sets share at least one label.
func Overlaps(a, b map[string]bool) bool {
	for label := range a {
		if b[label] {
			return true
		}
	}
	return false
}
