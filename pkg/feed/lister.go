// Package feed lists podcast episodes from an RSS/Atom document.
package feed

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"

	"podscanner/pkg/domain"
)

// ErrParse is returned when the document cannot be parsed as RSS/Atom at all.
var ErrParse = errors.New("failed to parse feed")

// Lister fetches a feed and turns its entries into episode records.
type Lister struct {
	parser *gofeed.Parser
}

// NewLister creates a lister backed by a gofeed parser.
func NewLister() *Lister {
	return &Lister{parser: gofeed.NewParser()}
}

// List fetches and parses the feed, returning episodes in feed order
// (newest-first per RSS convention, never re-sorted). Collection stops once
// max entries are gathered; max <= 0 means no limit. Entries without a
// resolvable audio URL are skipped with a warning, not an error.
func (l *Lister) List(feedURL string, max int) ([]domain.Episode, error) {
	parsed, err := l.parser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	episodes := make([]domain.Episode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if max > 0 && len(episodes) >= max {
			break
		}

		audioURL := audioURLFromItem(item)
		if audioURL == "" {
			log.Printf("Warning: no audio URL for episode %q, skipping", item.Title)
			continue
		}

		ep := domain.Episode{
			ID:          domain.EpisodeID(audioURL, item.Title, item.Published),
			Title:       item.Title,
			AudioURL:    audioURL,
			Published:   item.PublishedParsed,
			Description: item.Description,
		}
		if item.ITunesExt != nil {
			ep.Duration = item.ITunesExt.Duration
		}
		episodes = append(episodes, ep)
	}

	return episodes, nil
}

// audioURLFromItem picks the audio enclosure of a feed item. Enclosures with
// an audio content type win; any enclosure URL is a fallback since many feeds
// leave the type blank.
func audioURLFromItem(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.Contains(strings.ToLower(enc.Type), "audio") {
			return enc.URL
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
