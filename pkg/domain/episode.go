package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Episode represents a single podcast episode parsed from a feed.
// It is immutable after listing; the same episode re-listed in a later run
// produces the same ID as long as its audio URL is unchanged.
type Episode struct {
	ID          string     // stable identifier, derived from the audio URL
	Title       string     // episode title as published in the feed
	AudioURL    string     // direct URL of the audio enclosure
	Published   *time.Time // publish date, when the feed provides one
	Description string     // episode description/show notes (optional)
	Duration    string     // duration as reported by the feed (optional)
}

// EpisodeID derives the stable identifier for an episode. The audio URL is
// the primary key; when it is empty the title and publish date are hashed
// instead so the episode is still trackable across runs.
func EpisodeID(audioURL, title, published string) string {
	src := audioURL
	if src == "" {
		src = title + published
	}
	sum := md5.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}
