package httpclient

import (
	"net/http"
	"time"
)

// ClientType represents the header profile an HTTP client presents.
type ClientType string

const (
	// BrowserClient uses browser-like headers. Podcast hosting pages and some
	// feed CDNs answer 406/403 to unknown User-Agents, so page scanning and
	// directory lookups go out looking like a browser.
	BrowserClient ClientType = "browser"

	// PlainClient uses Go's default headers. Audio enclosure hosts generally
	// do not care who is asking, and a plain client keeps redirects to
	// signed CDN URLs working.
	PlainClient ClientType = "plain"
)

// HTTPClient wraps an http.Client with a header profile.
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
}

// NewClient creates a client with the given header profile. The timeout
// covers the whole request; pass 0 for downloads whose duration is unbounded.
func NewClient(clientType ClientType, timeout time.Duration) *HTTPClient {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
	}
}

// Do executes an HTTP request with the profile's headers applied.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Connection", "keep-alive")

	default:
		// PlainClient: Go's default User-Agent.
	}
}
