// Package resolver turns Apple Podcasts pages and generic websites into
// canonical RSS feed URLs. Nothing downstream depends on how the feed URL
// was obtained.
package resolver

import "errors"

// ErrFeedNotFound is returned when a source URL cannot be resolved to an
// RSS feed: the Apple page carries no podcast ID, the directory lookup has
// no feed URL, or the web page links no feed.
var ErrFeedNotFound = errors.New("no RSS feed found for source")
