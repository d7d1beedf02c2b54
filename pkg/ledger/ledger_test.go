package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLedger_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	l := New(path)
	l.MarkProcessed("abc123", Record{
		Title:          "Episode 1",
		AudioURL:       "https://example.com/ep1.mp3",
		AudioFile:      "Episode_1.mp3",
		TranscriptFile: "Episode_1.txt",
	})
	l.MarkProcessed("def456", Record{
		Title:     "Episode 2",
		AudioURL:  "https://example.com/ep2.mp3",
		AudioFile: "Episode_2.mp3",
	})
	if err := l.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", reloaded.Len())
	}
	for _, id := range []string{"abc123", "def456"} {
		if _, ok := reloaded.Get(id); !ok {
			t.Errorf("expected %s to be recorded after reload", id)
		}
	}
	rec, ok := reloaded.Get("abc123")
	if !ok || rec.AudioURL != "https://example.com/ep1.mp3" {
		t.Errorf("record abc123 did not round-trip: %+v", rec)
	}
	if rec.ProcessedAt == "" {
		t.Error("expected MarkProcessed to stamp a processing time")
	}
}

func TestLedger_MissingFileIsEmpty(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err := l.Load(); err != nil {
		t.Fatalf("Load of missing file should succeed, got %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d records", l.Len())
	}
}

func TestLedger_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(path)
	if err := l.Load(); err != nil {
		t.Fatalf("Load of empty file should succeed, got %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d records", l.Len())
	}
}

func TestLedger_CorruptFallsBackEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(path)
	err := l.Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("corrupt load should leave an empty ledger, got %d records", l.Len())
	}
	if _, ok := l.Get("anything"); ok {
		t.Error("empty ledger should report nothing as processed")
	}
}
