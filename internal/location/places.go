package location

import "strings"

// Confidence by catalogue tier. Tier 1 is a specific venue or
// building, tier 2 is reserved for landmarks, tier 3 is a city name.
const (
	tier1Confidence = 0.95
	tier2Confidence = 0.85
	tier3Confidence = 0.75
)

// place is one named-place catalogue entry. Keywords are matched as
// case-insensitive substrings of the post text.
type place struct {
	name     string
	keywords []string
	tier     int
}

// defaultPlaces is ordered by ascending tier so a specific venue
// mention always outranks a city mention in the same text.
var defaultPlaces = []place{
	{"Westfield Valley Fair", []string{"valley fair", "westfield valley"}, 1},
	{"Santana Row", []string{"santana row"}, 1},
	{"Oakridge Mall", []string{"oakridge mall", "oakridge"}, 1},
	{"Eastridge Mall", []string{"eastridge mall", "eastridge"}, 1},
	{"Great Mall", []string{"great mall"}, 1},
	{"San Jose State University", []string{"san jose state", "sjsu"}, 1},
	{"Santa Clara University", []string{"santa clara university", "scu campus"}, 1},
	{"Stanford University", []string{"stanford university", "stanford campus"}, 1},
	{"SAP Center", []string{"sap center"}, 1},
	{"Levi's Stadium", []string{"levi's stadium", "levis stadium"}, 1},
	{"PayPal Park", []string{"paypal park"}, 1},
	{"San Jose City Hall", []string{"san jose city hall"}, 1},
	{"Mineta San Jose Airport", []string{"mineta", "san jose airport", "sjc airport"}, 1},
	{"Valley Medical Center", []string{"valley medical", "valley med"}, 1},
	{"Regional Medical Center", []string{"regional medical center"}, 1},
	{"Diridon Station", []string{"diridon"}, 1},
	{"San Jose", []string{"san jose"}, 3},
	{"Santa Clara", []string{"santa clara"}, 3},
	{"Sunnyvale", []string{"sunnyvale"}, 3},
	{"Mountain View", []string{"mountain view"}, 3},
	{"Palo Alto", []string{"palo alto"}, 3},
	{"Cupertino", []string{"cupertino"}, 3},
	{"Milpitas", []string{"milpitas"}, 3},
	{"Campbell", []string{"campbell"}, 3},
	{"Fremont", []string{"fremont"}, 3},
	{"Oakland", []string{"oakland"}, 3},
	{"San Francisco", []string{"san francisco"}, 3},
}

func tierConfidence(tier int) float64 {
	switch tier {
	case 1:
		return tier1Confidence
	case 2:
		return tier2Confidence
	default:
		return tier3Confidence
	}
}

// Aliases returns the catalogue keywords for a canonical place name,
// or nil when the name is not in the catalogue. Used by the narrative
// layer to recognize location mentions under informal names.
func Aliases(name string) []string {
	for _, p := range defaultPlaces {
		if strings.EqualFold(p.name, name) {
			return p.keywords
		}
	}
	return nil
}

// placeMatcher matches text against the named-place catalogue.
type placeMatcher struct {
	places []place
}

func (m *placeMatcher) Match(text string) (Match, bool) {
	lower := strings.ToLower(text)
	for tier := 1; tier <= 3; tier++ {
		for _, p := range m.places {
			if p.tier != tier {
				continue
			}
			for _, kw := range p.keywords {
				if strings.Contains(lower, kw) {
					return Match{Name: p.name, Confidence: tierConfidence(p.tier)}, true
				}
			}
		}
	}
	return Match{}, false
}
