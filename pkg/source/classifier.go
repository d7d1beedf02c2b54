package source

import (
	"errors"
	"net/url"
	"strings"
)

// Kind identifies which kind of podcast source a URL points at.
type Kind int

const (
	KindApple   Kind = iota // Apple Podcasts show page
	KindYouTube             // YouTube channel, playlist or video
	KindSpotify             // Spotify show (recognized but not processable)
	KindRSS                 // direct RSS/Atom feed
	KindWebsite             // generic website, try to discover a feed
)

// String returns a human-readable name for the source kind.
func (k Kind) String() string {
	switch k {
	case KindApple:
		return "apple_podcasts"
	case KindYouTube:
		return "youtube"
	case KindSpotify:
		return "spotify"
	case KindRSS:
		return "rss"
	default:
		return "website"
	}
}

// ErrUnsupportedScheme is returned for URLs that are not http(s).
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Classify inspects a URL string and decides which source kind it matches.
// It never touches the network; the rules are domain substrings and path
// shapes, with website-as-fallback so unknown hosts still get a chance at
// feed discovery.
func Classify(rawURL string) (Kind, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return KindWebsite, ErrUnsupportedScheme
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return KindWebsite, ErrUnsupportedScheme
	}

	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "podcasts.apple.com"):
		return KindApple, nil
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return KindYouTube, nil
	case strings.Contains(lower, "spotify.com"):
		return KindSpotify, nil
	case looksLikeFeed(lower):
		return KindRSS, nil
	default:
		return KindWebsite, nil
	}
}

// looksLikeFeed matches URLs that already point at a feed document: a
// feed-like extension, or "rss"/"feed" anywhere in the URL.
func looksLikeFeed(lower string) bool {
	parsed, err := url.Parse(lower)
	if err != nil {
		return false
	}
	path := parsed.Path
	for _, ext := range []string{".rss", ".xml", ".atom"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return strings.Contains(lower, "rss") || strings.Contains(lower, "feed")
}
