package resolver

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"podscanner/pkg/httpclient"
)

// WebsiteResolver discovers RSS/Atom feeds linked from a web page's markup.
type WebsiteResolver struct {
	client *httpclient.HTTPClient
}

// NewWebsiteResolver creates a resolver that fetches pages with browser-like
// headers.
func NewWebsiteResolver() *WebsiteResolver {
	return &WebsiteResolver{
		client: httpclient.NewClient(httpclient.BrowserClient, 30*time.Second),
	}
}

// Resolve fetches the page and returns the first feed URL it links, resolved
// against the page's base URL. <link> elements with a feed content type win;
// anchors whose href looks feed-like are a fallback.
func (r *WebsiteResolver) Resolve(pageURL string) (string, error) {
	resp, err := r.client.Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch page: unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	feedRef, err := findFeedRef(string(body))
	if err != nil {
		return "", err
	}

	resolved, err := resolveAgainst(pageURL, feedRef)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve feed link %q", ErrFeedNotFound, feedRef)
	}
	return resolved, nil
}

// findFeedRef scans page markup for a feed reference.
func findFeedRef(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse page HTML: %w", err)
	}

	var found string
	doc.Find(`link[type="application/rss+xml"], link[type="application/atom+xml"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href != "" {
			found = href
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	// Some sites only expose the feed as a visible link.
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if hrefLooksLikeFeed(href) {
			found = href
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	return "", ErrFeedNotFound
}

func hrefLooksLikeFeed(href string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	if strings.HasSuffix(lower, ".rss") || strings.HasSuffix(lower, ".atom") {
		return true
	}
	return strings.Contains(lower, "/feed") || strings.Contains(lower, "/rss")
}

func resolveAgainst(baseURL, ref string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}
