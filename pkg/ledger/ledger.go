// Package ledger tracks which episodes have already been processed so
// repeated runs do not redo work. The ledger is the only durable state the
// tool keeps across runs.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrCorrupt is returned when the ledger file exists but cannot be decoded.
// Callers fall back to an empty ledger; the download engine's file-existence
// checks act as the backstop.
var ErrCorrupt = errors.New("ledger file is corrupt")

// Record is what the ledger remembers about one processed episode. An entry
// in the ledger means the corresponding audio and transcript files are
// expected to exist on disk.
type Record struct {
	Title          string `json:"title"`
	AudioURL       string `json:"audio_url"`
	Published      string `json:"published,omitempty"`
	ProcessedAt    string `json:"processed_date"`
	AudioFile      string `json:"audio_file"`
	TranscriptFile string `json:"transcript_file,omitempty"`
}

// Ledger is a persisted mapping from episode ID to processing record. It is
// read fully into memory at startup and rewritten in full on each update.
// The tool is single-instance, so there is no locking; only the orchestrating
// goroutine touches it.
type Ledger struct {
	path    string
	records map[string]Record
}

// New creates an empty ledger persisted at path.
func New(path string) *Ledger {
	return &Ledger{
		path:    path,
		records: make(map[string]Record),
	}
}

// Load reads the ledger document from disk. A missing or empty file is an
// empty ledger. Malformed content returns ErrCorrupt with the ledger left
// empty, so the caller can warn and continue.
func (l *Ledger) Load() error {
	l.records = make(map[string]Record)

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger %s: %w", l.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	records := make(map[string]Record)
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	l.records = records
	return nil
}

// Save rewrites the full ledger document. It is called after every processed
// episode so a crashed run loses at most the episode in flight.
func (l *Ledger) Save() error {
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger %s: %w", l.path, err)
	}
	return nil
}

// Get returns the record for an episode ID, if present. A present record
// means the episode is done and the run skips it.
func (l *Ledger) Get(id string) (Record, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

// MarkProcessed records an episode as done and stamps the processing time if
// the record carries none.
func (l *Ledger) MarkProcessed(id string, rec Record) {
	if rec.ProcessedAt == "" {
		rec.ProcessedAt = time.Now().Format("2006-01-02 15:04:05")
	}
	l.records[id] = rec
}

// Len returns the number of recorded episodes.
func (l *Ledger) Len() int {
	return len(l.records)
}
