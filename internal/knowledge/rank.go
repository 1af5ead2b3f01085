package knowledge

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// minPassageChars drops fragments too short to carry an answer.
	minPassageChars = 60

	// termPresenceBonus rewards whole-word presence of a query term on
	// top of raw occurrence counting.
	termPresenceBonus = 0.3
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// queryTerms tokenizes a query into lower-cased alphanumeric terms,
// keeping only terms longer than two characters.
func queryTerms(query string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(query), -1)
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) > 2 {
			terms = append(terms, t)
		}
	}
	return terms
}

// scorePassage scores one passage against the query terms: the total
// occurrence count of every term, plus a fixed bonus per distinct term
// present as a whole word.
func scorePassage(terms []string, passage string) float64 {
	lower := strings.ToLower(passage)

	var score float64
	for _, term := range terms {
		score += float64(strings.Count(lower, term))
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(lower) {
		words[w] = struct{}{}
	}
	for _, term := range terms {
		if _, ok := words[term]; ok {
			score += termPresenceBonus
		}
	}
	return score
}

// TopPassages splits every document into line-delimited paragraphs,
// discards short ones, and returns the k highest-scoring passages.
// The sort is stable with first-seen order as the tie-break, so the
// result is deterministic for a given document set regardless of how
// the documents were fetched.
func TopPassages(query string, docs []string, k int) []string {
	terms := queryTerms(query)

	type scored struct {
		score   float64
		passage string
	}
	var passages []scored
	for _, doc := range docs {
		for _, para := range strings.Split(doc, "\n") {
			para = strings.TrimSpace(para)
			if len(para) < minPassageChars {
				continue
			}
			passages = append(passages, scored{score: scorePassage(terms, para), passage: para})
		}
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].score > passages[j].score
	})

	if k > len(passages) {
		k = len(passages)
	}
	out := make([]string, 0, k)
	for _, p := range passages[:k] {
		out = append(out, p.passage)
	}
	return out
}
