package location

import (
	"regexp"
	"strings"
)

const (
	streetConfidence       = 0.9
	venueConfidence        = 0.85
	intersectionConfidence = 0.85
	neighborhoodConfidence = 0.7
)

const streetTypes = `(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Way|Lane|Ln|Circle|Cir|Court|Ct|Place|Pl)`

// Street-address pattern families: house number + street name + street
// type, optionally preceded by a preposition and followed by a city.
// The trailing city group is case-sensitive so ordinary prose after a
// comma is not mistaken for a city name.
const cityGroup = `(?:\s*,\s*((?-i:[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)))?`

var streetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:at|on|near|in)\s+(\d{1,6}\s+[a-z][a-z'.]*(?:\s+[a-z][a-z'.]*){0,3}\s+` + streetTypes + `)\b` + cityGroup),
	regexp.MustCompile(`(?i)\b(\d{1,6}\s+[a-z][a-z'.]*(?:\s+[a-z][a-z'.]*){0,3}\s+` + streetTypes + `)\b` + cityGroup),
}

// streetMatcher extracts street addresses. A guard rejects matches in
// texts containing "alert" unless the captured address itself carries
// a street token, which keeps "Emergency Alert" phrasing from being
// read as an address.
type streetMatcher struct{}

func (m *streetMatcher) Match(text string) (Match, bool) {
	lower := strings.ToLower(text)
	for _, re := range streetPatterns {
		groups := re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		address := strings.TrimSpace(groups[1])
		if strings.Contains(lower, "alert") && !strings.Contains(strings.ToLower(address), "st") {
			continue
		}
		if len(groups) > 2 && groups[2] != "" {
			address += ", " + strings.TrimSpace(groups[2])
		}
		return Match{Name: address, Confidence: streetConfidence}, true
	}
	return Match{}, false
}

const venueNouns = `(?:Mall|Center|Centre|Hospital|School|University|College|Stadium|Arena|Plaza|Library|Theater|Theatre|Station|Airport|Hotel|Church|Museum|Market)`

var venuePattern = regexp.MustCompile(`\b(?:[Tt]he\s+)?((?:[A-Z][A-Za-z'.]+\s+){1,5}` + venueNouns + `)\b`)

// actionWords inside a captured venue span mark it as a false
// positive ("Active Shooter Center" is not a place).
var actionWords = []string{
	"shooting", "arrested", "incident", "alert", "emergency", "police", "active", "reported",
}

type venueMatcher struct{}

func (m *venueMatcher) Match(text string) (Match, bool) {
	for _, groups := range venuePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(groups[1])
		if containsActionWord(name) {
			continue
		}
		return Match{Name: name, Confidence: venueConfidence}, true
	}
	return Match{}, false
}

func containsActionWord(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range actionWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

var intersectionPattern = regexp.MustCompile(
	`\b([A-Z][a-z'.]+(?:\s+` + streetTypes + `)?)\s+(?:and|&)\s+([A-Z][a-z'.]+(?:\s+` + streetTypes + `)?)\b`)

// intersectionMatcher extracts "Street A and Street B" forms and
// normalizes them to "A & B".
type intersectionMatcher struct{}

func (m *intersectionMatcher) Match(text string) (Match, bool) {
	groups := intersectionPattern.FindStringSubmatch(text)
	if groups == nil {
		return Match{}, false
	}
	name := strings.TrimSpace(groups[1]) + " & " + strings.TrimSpace(groups[2])
	return Match{Name: name, Confidence: intersectionConfidence}, true
}

var neighborhoodPattern = regexp.MustCompile(
	`\b([A-Z][a-z'.]+(?:\s+[A-Z][a-z'.]+){0,2})\s+(?:neighborhood|area|district|region|vicinity)\b`)

type neighborhoodMatcher struct{}

func (m *neighborhoodMatcher) Match(text string) (Match, bool) {
	groups := neighborhoodPattern.FindStringSubmatch(text)
	if groups == nil {
		return Match{}, false
	}
	return Match{Name: strings.TrimSpace(groups[1]), Confidence: neighborhoodConfidence}, true
}
