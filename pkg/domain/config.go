package domain

import (
	"fmt"
	"os"
)

// Config holds the per-run settings for a scan. It is built once from CLI
// flags and defaults and is read-only afterward.
type Config struct {
	AudioDir       string // directory for downloaded audio files
	TranscriptsDir string // directory for transcript text files
	LedgerPath     string // path of the processed-episodes JSON document
	MaxEpisodes    int    // 0 means no limit
	Workers        int    // transcription workers; 0 means auto-detect
	UseProcesses   bool   // isolate each transcription in its own process
	ModelSize      string // whisper model size (tiny, base, small, medium, large)
	WhisperBin     string // whisper.cpp binary to invoke
	ModelDir       string // directory holding ggml model files
}

// DefaultConfig returns the settings the CLI starts from before flags are
// applied.
func DefaultConfig() Config {
	return Config{
		AudioDir:       "downloads",
		TranscriptsDir: "transcripts",
		LedgerPath:     "processed_episodes.json",
		ModelSize:      "base",
		WhisperBin:     "whisper-cli",
		ModelDir:       "models",
	}
}

// EnsureDirs creates the output directories if they do not exist yet.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.AudioDir, c.TranscriptsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
