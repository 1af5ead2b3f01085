package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/halvard/scout/internal/log"
)

// defaultWikipediaBase is the REST endpoint for page summaries.
const defaultWikipediaBase = "https://en.wikipedia.org/api/rest_v1"

// userAgent identifies scout to the sites it fetches.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/124 Safari/537.36"

// WikipediaClient pulls structured page summaries as the cheapest
// entity-fact fast path.
type WikipediaClient struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// NewWikipediaClient creates a summary client against the public REST API.
func NewWikipediaClient(logger log.Logger) *WikipediaClient {
	if logger == nil {
		logger = log.NewNop()
	}
	return &WikipediaClient{
		baseURL: defaultWikipediaBase,
		http:    &http.Client{Timeout: 6 * time.Second},
		logger:  logger,
	}
}

type wikipediaSummary struct {
	Extract string `json:"extract"`
}

// Summary fetches the page summary for the literal query and returns up
// to sentences leading sentences of the extract. Any failure (network,
// missing page, empty extract) returns an error; the caller falls through
// to the next tier.
func (c *WikipediaClient) Summary(ctx context.Context, query string, sentences int) (string, error) {
	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building summary request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summary request failed: status %d", resp.StatusCode)
	}

	var parsed wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding summary: %w", err)
	}
	if parsed.Extract == "" {
		return "", fmt.Errorf("no extract for %q", query)
	}

	return leadingSentences(parsed.Extract, sentences), nil
}

// PageURL returns the citation URL for a summary answer.
func PageURL(query string) string {
	return "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(query, " ", "_")
}

// leadingSentences keeps the first n ". "-delimited sentences of text.
func leadingSentences(text string, n int) string {
	if n <= 0 {
		n = 3
	}
	parts := strings.Split(text, ". ")
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.Join(parts, ". ")
}
