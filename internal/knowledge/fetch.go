package knowledge

import (
	"context"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/halvard/scout/internal/log"
)

// Fetcher downloads candidate pages in parallel. Each Fetch call builds a
// fresh async collector so one resolution's visited-URL cache never leaks
// into the next; parallelism is bounded by a collector limit rule.
//
// Per-page failures are logged and swallowed. One unreachable or slow
// page must never abort the batch.
type Fetcher struct {
	parallelism int
	timeout     time.Duration
	logger      log.Logger
}

// NewFetcher creates a fetcher with the given worker cap and per-page
// timeout.
func NewFetcher(parallelism int, timeout time.Duration, logger log.Logger) *Fetcher {
	if parallelism < 1 {
		parallelism = 1
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Fetcher{parallelism: parallelism, timeout: timeout, logger: logger}
}

// Fetch downloads the given URLs and returns raw page bodies keyed by the
// originally requested URL. Completion order is irrelevant to callers:
// they re-impose first-seen link order when walking the result map.
func (f *Fetcher) Fetch(ctx context.Context, urls []string) map[string]string {
	pages := make(map[string]string, len(urls))
	if len(urls) == 0 {
		return pages
	}

	c := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(userAgent),
		colly.MaxBodySize(2<<20),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.timeout)

	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: f.parallelism}); err != nil {
		f.logger.Warn("failed to set fetch limit rule", "error", err)
	}

	var mu sync.Mutex
	c.OnResponse(func(r *colly.Response) {
		// Key by the URL we asked for, not the post-redirect URL, so the
		// caller's link order lookup still matches.
		requested := r.Ctx.Get("requested")
		if requested == "" {
			requested = r.Request.URL.String()
		}
		mu.Lock()
		pages[requested] = string(r.Body)
		mu.Unlock()
	})
	c.OnError(func(r *colly.Response, err error) {
		f.logger.Debug("page fetch failed", "url", r.Request.URL.String(), "error", err)
	})

	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		reqCtx := colly.NewContext()
		reqCtx.Put("requested", u)
		if err := c.Request("GET", u, nil, reqCtx, nil); err != nil {
			f.logger.Debug("page fetch rejected", "url", u, "error", err)
		}
	}
	c.Wait()

	f.logger.Debug("fetch batch completed", "requested", len(urls), "fetched", len(pages))
	return pages
}
