package resolver

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"podscanner/pkg/httpclient"
)

// DefaultLookupURL is the public iTunes podcast-directory lookup endpoint.
const DefaultLookupURL = "https://itunes.apple.com/lookup"

var podcastIDPattern = regexp.MustCompile(`/id(\d+)`)

// AppleResolver resolves Apple Podcasts show pages to their RSS feed via the
// iTunes lookup API.
type AppleResolver struct {
	client    *httpclient.HTTPClient
	lookupURL string
}

// NewAppleResolver creates a resolver against the public lookup endpoint.
func NewAppleResolver() *AppleResolver {
	return NewAppleResolverWithLookup(DefaultLookupURL)
}

// NewAppleResolverWithLookup creates a resolver against a specific lookup
// endpoint. Tests point this at a local server.
func NewAppleResolverWithLookup(lookupURL string) *AppleResolver {
	return &AppleResolver{
		client:    httpclient.NewClient(httpclient.BrowserClient, 30*time.Second),
		lookupURL: lookupURL,
	}
}

type lookupResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		FeedURL        string `json:"feedUrl"`
		CollectionName string `json:"collectionName"`
		ArtistName     string `json:"artistName"`
	} `json:"results"`
}

// Resolve extracts the numeric podcast ID from an Apple Podcasts URL and
// asks the directory lookup API for the feed URL.
func (r *AppleResolver) Resolve(appleURL string) (string, error) {
	match := podcastIDPattern.FindStringSubmatch(appleURL)
	if match == nil {
		return "", fmt.Errorf("%w: no podcast ID in %s", ErrFeedNotFound, appleURL)
	}
	podcastID := match[1]

	query := url.Values{}
	query.Set("id", podcastID)
	query.Set("entity", "podcast")

	resp, err := r.client.Get(r.lookupURL + "?" + query.Encode())
	if err != nil {
		return "", fmt.Errorf("podcast directory lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("podcast directory lookup failed: unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read lookup response: %w", err)
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return "", fmt.Errorf("failed to decode lookup response: %w", err)
	}

	if len(lookup.Results) == 0 || lookup.Results[0].FeedURL == "" {
		return "", fmt.Errorf("%w: lookup returned no feed URL for ID %s", ErrFeedNotFound, podcastID)
	}

	result := lookup.Results[0]
	log.Printf("Resolved Apple podcast %s (%s by %s) to feed %s", podcastID, result.CollectionName, result.ArtistName, result.FeedURL)
	return result.FeedURL, nil
}
