// Package feed fetches RSS/Atom feeds and normalizes every entry into the
// engine's RawItem shape. The engine never sees feed-format specifics.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/junefeed/pkg/domain"
)

// maxSummaryLen caps stored summaries, full article bodies are out of scope
const maxSummaryLen = 1000

// Parser fetches and parses RSS/Atom feeds
type Parser struct {
	client    *http.Client
	userAgent string
	sanitizer *bluemonday.Policy
}

// NewParser creates a new feed parser with the given per-request timeout
func NewParser(timeout time.Duration, userAgent string) *Parser {
	return &Parser{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Fetch retrieves the feed at url and returns its entries as raw items.
// Network and parse errors are reported uniformly, the caller does not
// distinguish between them.
func (p *Parser) Fetch(ctx context.Context, url string) ([]domain.RawItem, error) {
	body, err := p.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	parsed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.RawItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		raw := domain.RawItem{
			GUID:    entry.GUID,
			Link:    entry.Link,
			Title:   strings.TrimSpace(entry.Title),
			Summary: p.cleanSummary(entry),
		}

		if entry.PublishedParsed != nil {
			raw.Published = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			raw.Published = entry.UpdatedParsed
		}

		items = append(items, raw)
	}

	return items, nil
}

// cleanSummary turns an entry's description into plain terminal-safe text,
// falling back to the content body when the description is empty
func (p *Parser) cleanSummary(entry *gofeed.Item) string {
	text := entry.Description
	if text == "" {
		text = entry.Content
	}

	text = p.sanitizer.Sanitize(text)
	text = domain.NormalizeTitle(text) // same entity and whitespace cleanup as titles

	if len(text) > maxSummaryLen {
		cut := maxSummaryLen - 3
		for cut > 0 && !utf8.RuneStart(text[cut]) { // don't split a rune
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// get retrieves content from a URL
func (p *Parser) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	addBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
