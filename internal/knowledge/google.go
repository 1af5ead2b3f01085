package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/halvard/scout/internal/log"
)

const defaultCustomSearchBase = "https://www.googleapis.com/customsearch/v1"

// ErrSearchNotConfigured indicates the Google API key or engine ID is
// absent. This is a configuration error, not a transient one: it is
// surfaced directly to the caller instead of being retried or masked
// as an empty result set.
var ErrSearchNotConfigured = errors.New("missing GOOGLE_API_KEY or GOOGLE_CSE_ID")

// SearchResult is one web-search hit.
type SearchResult struct {
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// GoogleClient queries the Google Custom Search JSON API with pagination.
// Successive page requests are paced through a rate limiter so a deep
// query does not burst against the API quota.
type GoogleClient struct {
	apiKey   string
	engineID string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	logger   log.Logger
}

// NewGoogleClient creates a search client. Empty credentials are allowed
// at construction; Search reports ErrSearchNotConfigured when used.
func NewGoogleClient(apiKey, engineID string, logger log.Logger) *GoogleClient {
	if logger == nil {
		logger = log.NewNop()
	}
	return &GoogleClient{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  defaultCustomSearchBase,
		http:     &http.Client{Timeout: 10 * time.Second},
		// One page request per 200ms, first page immediate.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		logger:  logger,
	}
}

// Configured reports whether search credentials are present.
func (c *GoogleClient) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

type customSearchResponse struct {
	Items []struct {
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Queries struct {
		NextPage []struct {
			StartIndex int `json:"startIndex"`
		} `json:"nextPage"`
	} `json:"queries"`
}

// Search runs a paginated query: up to pages requests of perPage results
// each, stopping early when the API reports no next page. A non-empty
// dateRestrict (e.g. "d7") limits results by recency.
func (c *GoogleClient) Search(ctx context.Context, query string, pages, perPage int, dateRestrict string) ([]SearchResult, error) {
	if !c.Configured() {
		return nil, ErrSearchNotConfigured
	}
	if pages < 1 {
		pages = 1
	}
	if perPage < 1 || perPage > 10 {
		perPage = 10
	}

	var results []SearchResult
	start := 1
	for page := 0; page < pages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("waiting for search rate limit: %w", err)
		}

		body, err := c.searchPage(ctx, query, start, perPage, dateRestrict)
		if err != nil {
			// A failed first page fails the search; a failed later page
			// degrades to what was already collected.
			if page == 0 {
				return nil, err
			}
			c.logger.Warn("search pagination stopped early", "page", page, "error", err)
			break
		}

		for _, item := range body.Items {
			results = append(results, SearchResult{Link: item.Link, Snippet: item.Snippet})
		}

		if len(body.Queries.NextPage) == 0 {
			break
		}
		start += perPage
	}

	c.logger.Debug("web search completed", "query", query, "results", len(results))
	return results, nil
}

func (c *GoogleClient) searchPage(ctx context.Context, query string, start, num int, dateRestrict string) (*customSearchResponse, error) {
	params := url.Values{
		"key":   {c.apiKey},
		"cx":    {c.engineID},
		"q":     {query},
		"num":   {strconv.Itoa(num)},
		"start": {strconv.Itoa(start)},
		"hl":    {"en"},
		"gl":    {"us"},
	}
	if dateRestrict != "" {
		params.Set("dateRestrict", dateRestrict)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status %d", resp.StatusCode)
	}

	var parsed customSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return &parsed, nil
}
