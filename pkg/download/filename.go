package download

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	invalidCharPattern = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// maxFilenameLen bounds the sanitized title so the full path stays well under
// common filesystem limits.
const maxFilenameLen = 200

// Sanitize turns an episode title into a filesystem-safe base name: HTML tags
// are stripped, characters illegal on common filesystems become underscores,
// whitespace runs collapse to a single underscore, and the result is bounded
// in length.
func Sanitize(title string) string {
	name := htmlTagPattern.ReplaceAllString(title, "")
	name = invalidCharPattern.ReplaceAllString(name, "_")
	name = whitespacePattern.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
	}
	return strings.Trim(name, "_")
}

// ExtFromURL extracts the file extension from an audio URL's path, defaulting
// to .mp3 when the URL carries none.
func ExtFromURL(audioURL string) string {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return ".mp3"
	}
	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}
	return ".mp3"
}
