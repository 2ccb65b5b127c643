// Package scrape fetches a web page and reduces it to the visible text the
// classification engine analyzes.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const userAgent = "visitlens/1.0 (+https://github.com/visitlens/visitlens)"

// Result is the extracted page text plus the validators needed for
// conditional revalidation.
type Result struct {
	Text         string
	ETag         string
	LastModified string
}

// Scraper fetches pages with a bounded timeout and body size.
type Scraper struct {
	http    *http.Client
	maxBody int64
}

// New creates a Scraper. maxBody caps how many response bytes are read.
func New(timeout time.Duration, maxBody int64) *Scraper {
	return &Scraper{
		http:    &http.Client{Timeout: timeout},
		maxBody: maxBody,
	}
}

// Fetch downloads the page at url and extracts its visible text.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape.Fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape.Fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("scrape.Fetch: status %d from %s", resp.StatusCode, url)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("scrape.Fetch: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("scrape.Fetch: no visible text at %s", url)
	}

	return &Result{
		Text:         text,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// Fresh checks whether a previously scraped copy is still current by
// issuing a conditional HEAD request with the stored validators. A 304
// means the cached copy can be reused.
func (s *Scraper) Fresh(ctx context.Context, url, etag, lastModified string) (bool, error) {
	if etag == "" && lastModified == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("scrape.Fresh: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("scrape.Fresh: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusNotModified, nil
}

// ExtractText parses HTML and joins its visible text nodes with single
// spaces, dropping script and style subtrees.
func ExtractText(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("scrape.ExtractText: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, strings.Join(strings.Fields(t), " "))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(parts, " "), nil
}
