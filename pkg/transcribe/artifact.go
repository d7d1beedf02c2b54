package transcribe

import (
	"fmt"
	"os"
	"strings"
	"time"

	"podscanner/pkg/domain"
)

// WriteTranscript writes one transcript artifact: episode metadata lines,
// a separator, then the transcript body.
func WriteTranscript(path string, ep domain.Episode, text string) error {
	published := "Unknown"
	if ep.Published != nil {
		published = ep.Published.Format(time.RFC1123)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", ep.Title)
	fmt.Fprintf(&b, "URL: %s\n", ep.AudioURL)
	fmt.Fprintf(&b, "Published: %s\n", published)
	fmt.Fprintf(&b, "Episode ID: %s\n", ep.ID)
	b.WriteString("\n--- TRANSCRIPT ---\n\n")
	b.WriteString(text)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript %s: %w", path, err)
	}
	return nil
}
