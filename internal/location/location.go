package location

// Match is a best-guess place name extracted from post text.
// An empty Name with Confidence 0 means no match.
type Match struct {
	Name       string
	Confidence float64
}

// Matcher is a single extraction strategy. ok is false when the
// strategy finds nothing.
type Matcher interface {
	Match(text string) (Match, bool)
}

// Extractor runs an ordered chain of matchers and returns the first
// hit. Order encodes priority: the place catalogue outranks street
// addresses, which outrank venue, intersection, and neighborhood
// patterns.
type Extractor struct {
	matchers []Matcher
}

// NewExtractor creates an extractor with the default matcher chain.
func NewExtractor() *Extractor {
	return &Extractor{
		matchers: []Matcher{
			&placeMatcher{places: defaultPlaces},
			&streetMatcher{},
			&venueMatcher{},
			&intersectionMatcher{},
			&neighborhoodMatcher{},
		},
	}
}

// Extract returns the best-guess location for the text, or a zero
// Match if no strategy fires.
func (e *Extractor) Extract(text string) Match {
	for _, m := range e.matchers {
		if match, ok := m.Match(text); ok {
			return match
		}
	}
	return Match{}
}
