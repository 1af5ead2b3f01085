// Package knowledge resolves free-text queries into answers with source
// citations.
//
// The resolver layers progressively more expensive and less targeted
// strategies, stopping at the first that yields a usable result:
//
//  1. Intent classification (cheap keyword match)
//  2. Structured fast paths for entity facts (encyclopedia summary,
//     knowledge-graph date-of-birth → age computation)
//  3. Paginated web search recall, restricted to the last week for
//     fresh-intent queries
//  4. Parallel page fetch + readable-text extraction over the
//     de-duplicated result links
//  5. Passage ranking and synthesis of the top passages
//
// A single search strategy is neither precise (snippets are too short)
// nor universally available (structured sources cover narrow fact
// types); the tiering trades latency for precision by trying the cheap,
// precise paths first. Each tier is also the retry strategy for the
// previous one; there are no same-method retries.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/halvard/scout/internal/log"
)

const (
	// maxExtractLinks caps extraction work per query.
	maxExtractLinks = 12

	// rankTopK is how many ranked passages survive scoring.
	rankTopK = 6

	// synthesisPassages is how many top passages form the answer.
	synthesisPassages = 3

	// maxSnippetFallback caps raw snippets used when extraction fails.
	maxSnippetFallback = 5

	// maxCitations is how many links are reported as citations.
	maxCitations = 3
)

// Answer is a resolved query result: synthesized text plus the source
// links it was drawn from. Citations may be empty (fast-path answers
// carry a single canonical source; configuration errors carry none).
type Answer struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
}

// Consumer-side interfaces for the resolver's collaborators, satisfied by
// the concrete clients in this package and by test doubles.
type (
	summaryProvider interface {
		Summary(ctx context.Context, query string, sentences int) (string, error)
	}
	factProvider interface {
		BirthDate(ctx context.Context, name string) (string, error)
	}
	searchProvider interface {
		Search(ctx context.Context, query string, pages, perPage int, dateRestrict string) ([]SearchResult, error)
	}
	pageFetcher interface {
		Fetch(ctx context.Context, urls []string) map[string]string
	}
)

// Resolver orchestrates the resolution pipeline.
type Resolver struct {
	wiki      summaryProvider
	facts     factProvider
	search    searchProvider
	fetcher   pageFetcher
	extractor *Extractor
	logger    log.Logger

	pages   int
	perPage int

	// now is swappable so age computations are testable at a fixed date.
	now func() time.Time
}

// Config tunes the resolver's search recall.
type Config struct {
	// SearchPages is how many result pages to request per query.
	SearchPages int
	// SearchPerPage is results per page (provider caps at 10).
	SearchPerPage int
}

// NewResolver wires the pipeline from its collaborators.
func NewResolver(wiki *WikipediaClient, facts *WikidataClient, search *GoogleClient, fetcher *Fetcher, cfg Config, logger log.Logger) (*Resolver, error) {
	if wiki == nil || facts == nil || search == nil || fetcher == nil {
		return nil, fmt.Errorf("all resolver collaborators are required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	pages := cfg.SearchPages
	if pages < 1 {
		pages = 2
	}
	perPage := cfg.SearchPerPage
	if perPage < 1 {
		perPage = 10
	}

	return &Resolver{
		wiki:      wiki,
		facts:     facts,
		search:    search,
		fetcher:   fetcher,
		extractor: NewExtractor(logger),
		logger:    logger,
		pages:     pages,
		perPage:   perPage,
		now:       time.Now,
	}, nil
}

// Resolve answers a free-text query. It always returns an Answer: search
// provider failures and missing configuration become the answer text so
// the conversational caller can report them, never an error that aborts
// the turn.
func (r *Resolver) Resolve(ctx context.Context, query string, sentences int) Answer {
	tracer := otel.Tracer("scout/knowledge")
	ctx, span := tracer.Start(ctx, "knowledge.resolve")
	defer span.End()

	intent := DetectIntent(query)
	span.SetAttributes(attribute.String("query.intent", string(intent)))
	r.logger.Debug("resolving query", "query", query, "intent", intent)

	if intent == IntentEntityFact {
		if answer, ok := r.entityFastPath(ctx, query, sentences); ok {
			span.SetAttributes(attribute.String("resolve.strategy", "fast_path"))
			return answer
		}
	}

	dateRestrict := ""
	if intent == IntentFresh {
		dateRestrict = "d7"
	}

	results, err := r.search.Search(ctx, query, r.pages, r.perPage, dateRestrict)
	if err != nil {
		span.SetAttributes(attribute.String("resolve.strategy", "error"))
		return Answer{Text: describeSearchFailure(err), Citations: []string{}}
	}

	links := dedupeLinks(results)
	capped := links
	if len(capped) > maxExtractLinks {
		capped = capped[:maxExtractLinks]
	}

	docs := r.extractDocs(ctx, capped)

	if len(docs) == 0 {
		span.SetAttributes(attribute.String("resolve.strategy", "snippets"))
		return Answer{Text: snippetFallback(results), Citations: firstN(links, maxCitations)}
	}

	passages := TopPassages(query, docs, rankTopK)
	synthesis := strings.Join(firstN(passages, synthesisPassages), " ")
	if synthesis == "" {
		synthesis = "No high-relevance passages found."
	}

	span.SetAttributes(
		attribute.String("resolve.strategy", "ranked_passages"),
		attribute.Int("resolve.documents", len(docs)),
	)
	return Answer{Text: synthesis, Citations: firstN(links, maxCitations)}
}

// entityFastPath tries the structured sources: an encyclopedia summary of
// the literal query, then for age queries a date-of-birth lookup with a
// whole-year age computation.
func (r *Resolver) entityFastPath(ctx context.Context, query string, sentences int) (Answer, bool) {
	if text, err := r.wiki.Summary(ctx, query, sentences); err == nil {
		return Answer{Text: text, Citations: []string{PageURL(query)}}, true
	} else {
		r.logger.Debug("summary fast path missed", "query", query, "error", err)
	}

	if !strings.Contains(strings.ToLower(query), "age") {
		return Answer{}, false
	}

	name := SubjectName(query)
	dob, err := r.facts.BirthDate(ctx, name)
	if err != nil {
		r.logger.Debug("birth date fast path missed", "name", name, "error", err)
		return Answer{}, false
	}

	age, err := AgeOn(dob, r.now())
	if err != nil {
		r.logger.Debug("age computation failed", "dob", dob, "error", err)
		return Answer{}, false
	}

	return Answer{
		Text:      fmt.Sprintf("%s is %d years old (born %s).", name, age, dob),
		Citations: []string{"https://www.wikidata.org/"},
	}, true
}

// extractDocs fetches the capped link set in parallel and extracts text
// per page, preserving first-seen link order in the returned documents.
// Pages that fail to fetch or yield no usable text are skipped.
func (r *Resolver) extractDocs(ctx context.Context, links []string) []string {
	pages := r.fetcher.Fetch(ctx, links)

	docs := make([]string, 0, len(links))
	for _, link := range links {
		html, ok := pages[link]
		if !ok {
			continue
		}
		if text := r.extractor.Text(html, link); text != "" {
			docs = append(docs, text)
		}
	}
	return docs
}

// describeSearchFailure turns a search error into answer text. The
// missing-credential case keeps its exact sentinel wording so callers
// can tell configuration problems from transient ones.
func describeSearchFailure(err error) string {
	if errors.Is(err, ErrSearchNotConfigured) {
		return "Missing GOOGLE_API_KEY or GOOGLE_CSE_ID"
	}
	return fmt.Sprintf("Search failed: %v", err)
}

// snippetFallback joins raw search snippets when no page produced
// extractable text.
func snippetFallback(results []SearchResult) string {
	var snippets []string
	for _, res := range results {
		if res.Snippet == "" {
			continue
		}
		snippets = append(snippets, res.Snippet)
		if len(snippets) == maxSnippetFallback {
			break
		}
	}
	if len(snippets) == 0 {
		return "No useful text extracted."
	}
	return strings.Join(snippets, "\n\n")
}

// dedupeLinks collects result links in first-seen order, dropping exact
// duplicates and empty links.
func dedupeLinks(results []SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	links := make([]string, 0, len(results))
	for _, res := range results {
		if res.Link == "" {
			continue
		}
		if _, ok := seen[res.Link]; ok {
			continue
		}
		seen[res.Link] = struct{}{}
		links = append(links, res.Link)
	}
	return links
}

func firstN(items []string, n int) []string {
	if len(items) < n {
		n = len(items)
	}
	return items[:n]
}
