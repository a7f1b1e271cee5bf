package narrative

import (
	"regexp"
	"sort"
	"strings"

	"firstwatch/internal/model"
)

var actorRe = regexp.MustCompile(
	`(?i)\b((?:\d{1,2}[- ]year[- ]old\s+)?(?:man|woman|teen(?:ager)?|juvenile|suspect|shooter|gunman|individual|person))\b`)

var victimsRe = regexp.MustCompile(
	`(?i)\b(\d+\s+(?:people|victims?|injured|killed|wounded|dead)|multiple\s+(?:people|victims|injuries)|several\s+(?:people|victims))\b`)

// actionFamily maps detection keywords to the verb used with an actor
// and the noun used without one.
type actionFamily struct {
	keywords []string
	verb     string
	noun     string
}

var actionFamilies = []actionFamily{
	{[]string{"shooting", "shots fired", "gunfire", "shot"}, "shoots", "Shooting"},
	{[]string{"stabbing", "stabbed", "stab"}, "stabs", "Stabbing"},
	{[]string{"arrested", "arrest"}, "arrested at", "Arrest"},
	{[]string{"assault"}, "assaults", "Assault"},
	{[]string{"attack"}, "attacks", "Attack"},
}

// Title composes a rule-based headline of the form
// "<Actor> <action> <victims> at <Location>", degrading to
// "<ActionNoun> at <Location>" and finally "Incident at <Location>".
func Title(posts []model.Post, loc string) string {
	ranked := make([]model.Post, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Engagement.Reactions() > ranked[j].Engagement.Reactions()
	})

	var actor, victims string
	var action *actionFamily
	for _, p := range ranked {
		if actor == "" {
			if m := actorRe.FindStringSubmatch(p.Text); m != nil {
				actor = m[1]
			}
		}
		if action == nil {
			action = findAction(p.Text)
		}
		if victims == "" {
			if m := victimsRe.FindStringSubmatch(p.Text); m != nil {
				victims = strings.ToLower(m[1])
			}
		}
	}

	switch {
	case actor != "" && action != nil:
		actor = capitalize(strings.ToLower(actor))
		// "arrested at" already carries its preposition.
		if strings.HasSuffix(action.verb, " at") {
			return actor + " " + action.verb + " " + loc
		}
		if victims != "" {
			return actor + " " + action.verb + " " + victims + " at " + loc
		}
		return actor + " " + action.verb + " at " + loc
	case action != nil:
		return action.noun + " at " + loc
	default:
		return "Incident at " + loc
	}
}

func findAction(text string) *actionFamily {
	lower := strings.ToLower(text)
	for i := range actionFamilies {
		for _, kw := range actionFamilies[i].keywords {
			if strings.Contains(lower, kw) {
				return &actionFamilies[i]
			}
		}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
