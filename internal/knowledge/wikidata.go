package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/halvard/scout/internal/log"
)

const defaultWikidataBase = "https://www.wikidata.org"

// birthDateProperty is Wikidata's "date of birth" claim.
const birthDateProperty = "P569"

// ageFillerPattern strips age phrasing so the remaining text is the
// subject name, e.g. "Barack Obama current age" → "Barack Obama".
var ageFillerPattern = regexp.MustCompile(`(?i)\b(current|age|years old)\b`)

// WikidataClient resolves a subject name to its date-of-birth claim via
// the public entity search and entity data endpoints.
type WikidataClient struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// NewWikidataClient creates a client against the public Wikidata API.
func NewWikidataClient(logger log.Logger) *WikidataClient {
	if logger == nil {
		logger = log.NewNop()
	}
	return &WikidataClient{
		baseURL: defaultWikidataBase,
		http:    &http.Client{Timeout: 6 * time.Second},
		logger:  logger,
	}
}

// SubjectName derives the entity name from an age query by removing the
// age filler words. Returns the original query if stripping leaves nothing.
func SubjectName(query string) string {
	name := ageFillerPattern.ReplaceAllString(query, "")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return query
	}
	return name
}

type entitySearchResponse struct {
	Search []struct {
		ID string `json:"id"`
	} `json:"search"`
}

// entityData mirrors the fragment of Special:EntityData we consume:
// entities.<QID>.claims.P569[0].mainsnak.datavalue.value.time.
type entityData struct {
	Entities map[string]struct {
		Claims map[string][]struct {
			Mainsnak struct {
				Datavalue struct {
					Value struct {
						Time string `json:"time"`
					} `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		} `json:"claims"`
	} `json:"entities"`
}

// BirthDate looks up the subject's date of birth and returns it in
// ISO form (YYYY-MM-DD).
func (c *WikidataClient) BirthDate(ctx context.Context, name string) (string, error) {
	qid, err := c.searchEntity(ctx, name)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/wiki/Special:EntityData/%s.json", c.baseURL, qid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building entity data request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("entity data request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("entity data request failed: status %d", resp.StatusCode)
	}

	var parsed entityData
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding entity data: %w", err)
	}

	claims, ok := parsed.Entities[qid]
	if !ok {
		return "", fmt.Errorf("entity %s missing from response", qid)
	}
	dob, ok := claims.Claims[birthDateProperty]
	if !ok || len(dob) == 0 {
		return "", fmt.Errorf("entity %s has no birth date claim", qid)
	}

	// Wikidata time values look like "+1961-08-04T00:00:00Z".
	t := dob[0].Mainsnak.Datavalue.Value.Time
	if len(t) < 11 {
		return "", fmt.Errorf("malformed birth date value %q", t)
	}
	return t[1:11], nil
}

func (c *WikidataClient) searchEntity(ctx context.Context, name string) (string, error) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"language": {"en"},
		"format":   {"json"},
		"search":   {name},
	}
	endpoint := c.baseURL + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building entity search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("entity search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("entity search failed: status %d", resp.StatusCode)
	}

	var parsed entitySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding entity search: %w", err)
	}
	if len(parsed.Search) == 0 {
		return "", fmt.Errorf("no entity found for %q", name)
	}
	return parsed.Search[0].ID, nil
}

// AgeOn computes age in whole years on a given day. One year is
// subtracted when the birthday has not yet occurred that year; the
// month/day tuple comparison is the documented tie-break and must not
// be replaced with duration arithmetic.
func AgeOn(dobISO string, today time.Time) (int, error) {
	dob, err := time.Parse("2006-01-02", dobISO)
	if err != nil {
		return 0, fmt.Errorf("parsing date of birth %q: %w", dobISO, err)
	}

	age := today.Year() - dob.Year()
	if beforeInYear(today.Month(), today.Day(), dob.Month(), dob.Day()) {
		age--
	}
	return age, nil
}

// beforeInYear reports whether (m1, d1) sorts before (m2, d2).
func beforeInYear(m1 time.Month, d1 int, m2 time.Month, d2 int) bool {
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
