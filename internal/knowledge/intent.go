package knowledge

import "strings"

// Intent is the coarse query class used to pick a resolution strategy.
// This is a keyword heuristic, not a learned classifier; anything that
// matches no keyword set resolves to IntentGeneral.
type Intent string

const (
	// IntentEntityFact covers age/birth/founding style factual lookups
	// that structured sources answer well.
	IntentEntityFact Intent = "entity_fact"

	// IntentFresh covers queries about recent events where results should
	// be restricted to the last week.
	IntentFresh Intent = "fresh"

	// IntentDefinition covers "what is X" style queries.
	IntentDefinition Intent = "definition"

	// IntentGeneral is the default when nothing more specific matches.
	IntentGeneral Intent = "general"
)

var (
	entityFactKeys = []string{"age", "born", "birthdate", "founding date", "founded", "founded date"}
	freshKeys      = []string{"latest", "newest", "today", "this week", "just released", "video"}
	definitionKeys = []string{"what is", "define", "meaning of"}
)

// DetectIntent classifies a query by keyword match over its lower-cased
// form. Keyword sets are checked in priority order, so a query matching
// several sets takes the first.
func DetectIntent(query string) Intent {
	q := strings.ToLower(query)

	for _, k := range entityFactKeys {
		if strings.Contains(q, k) {
			return IntentEntityFact
		}
	}
	for _, k := range freshKeys {
		if strings.Contains(q, k) {
			return IntentFresh
		}
	}
	for _, k := range definitionKeys {
		if strings.Contains(q, k) {
			return IntentDefinition
		}
	}
	return IntentGeneral
}
