package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"podscanner/pkg/domain"
	"podscanner/pkg/scanner"
)

func usage() {
	fmt.Fprintln(os.Stderr, "podscanner - download and transcribe podcast episodes")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage: podscanner [flags] <url> [max_episodes]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Supported sources:")
	fmt.Fprintln(os.Stderr, "  Apple Podcasts  https://podcasts.apple.com/...")
	fmt.Fprintln(os.Stderr, "  YouTube         https://youtube.com/...")
	fmt.Fprintln(os.Stderr, "  RSS feeds       https://example.com/feed.rss")
	fmt.Fprintln(os.Stderr, "  Websites        https://podcast-website.com")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  podscanner 'https://podcasts.apple.com/us/podcast/the-daily/id1200361736' 5")
	fmt.Fprintln(os.Stderr, "  podscanner 'https://feeds.npr.org/510289/podcast.xml' 3")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	defaults := domain.DefaultConfig()

	var (
		maxEpisodes    = flag.Int("max", 0, "Max episodes to process (0 = all)")
		workers        = flag.Int("workers", 0, "Transcription workers (0 = auto-detect from CPU cores)")
		useProcesses   = flag.Bool("processes", false, "Isolate each transcription in its own process")
		modelSize      = flag.String("model", defaults.ModelSize, "Whisper model size (tiny, base, small, medium, large)")
		audioDir       = flag.String("audio-dir", defaults.AudioDir, "Directory for downloaded audio")
		transcriptsDir = flag.String("transcripts-dir", defaults.TranscriptsDir, "Directory for transcripts")
		ledgerPath     = flag.String("ledger", defaults.LedgerPath, "Path of the processed-episodes ledger")
		whisperBin     = flag.String("whisper-bin", defaults.WhisperBin, "whisper.cpp binary to invoke")
		modelDir       = flag.String("model-dir", defaults.ModelDir, "Directory holding ggml model files")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	url := flag.Arg(0)

	// Positional max_episodes overrides the flag, matching `podscanner <url> <n>`.
	max := *maxEpisodes
	if flag.NArg() > 1 {
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil || n < 0 {
			log.Fatalf("invalid max_episodes %q", flag.Arg(1))
		}
		max = n
	}

	cfg := domain.Config{
		AudioDir:       *audioDir,
		TranscriptsDir: *transcriptsDir,
		LedgerPath:     *ledgerPath,
		MaxEpisodes:    max,
		Workers:        *workers,
		UseProcesses:   *useProcesses,
		ModelSize:      *modelSize,
		WhisperBin:     *whisperBin,
		ModelDir:       *modelDir,
	}

	svc, err := scanner.New(cfg)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}

	stats, err := svc.Run(context.Background(), url)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	fmt.Println("\nProcessing summary:")
	fmt.Printf("  Total episodes found: %d\n", stats.TotalFound)
	fmt.Printf("  Downloaded:           %d\n", stats.Downloaded)
	fmt.Printf("  Transcribed:          %d\n", stats.Transcribed)
	fmt.Printf("  Skipped (done):       %d\n", stats.Skipped)
	fmt.Printf("  Failed:               %d\n", stats.Failed)
	fmt.Printf("\nAudio files saved in: %s\n", cfg.AudioDir)
	fmt.Printf("Transcripts saved in: %s\n", cfg.TranscriptsDir)
}
