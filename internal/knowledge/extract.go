package knowledge

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/halvard/scout/internal/log"
)

const (
	// minArticleChars is the threshold below which a readability result is
	// considered boilerplate-only and the paragraph fallback kicks in.
	minArticleChars = 300

	// minParagraphChars filters navigation crumbs and captions out of the
	// paragraph fallback.
	minParagraphChars = 80

	// maxFallbackParagraphs caps how many paragraph blocks the fallback
	// collects per page.
	maxFallbackParagraphs = 6
)

// Extractor turns raw page HTML into readable body text. The primary
// strategy is readability-style boilerplate removal; when that yields too
// little text it falls back to collecting long <p> blocks.
type Extractor struct {
	logger log.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(logger log.Logger) *Extractor {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Extractor{logger: logger}
}

// Text extracts readable text from html fetched at pageURL. An empty
// return means the page had nothing usable; the caller skips it.
func (e *Extractor) Text(html, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = nil
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err == nil {
		text := strings.TrimSpace(article.TextContent)
		if len(text) > minArticleChars {
			return text
		}
	} else {
		e.logger.Debug("readability extraction failed", "url", pageURL, "error", err)
	}

	return e.paragraphFallback(html, pageURL)
}

// paragraphFallback collects paragraph-like blocks above the length
// threshold, joined by newlines so the ranker can split them back apart.
func (e *Extractor) paragraphFallback(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Debug("paragraph fallback failed", "url", pageURL, "error", err)
		return ""
	}

	var paragraphs []string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if len(text) > minParagraphChars {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < maxFallbackParagraphs
	})

	return strings.Join(paragraphs, "\n")
}
