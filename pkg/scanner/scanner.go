// Package scanner orchestrates a scan: classify the source, resolve it to a
// feed, list episodes, filter against the ledger, download sequentially,
// transcribe in parallel, and record successes.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podscanner/pkg/domain"
	"podscanner/pkg/download"
	"podscanner/pkg/feed"
	"podscanner/pkg/ledger"
	"podscanner/pkg/resolver"
	"podscanner/pkg/source"
	"podscanner/pkg/transcribe"
	"podscanner/pkg/youtube"
)

// ErrSpotifyUnsupported rejects Spotify URLs: the shows are usually
// exclusive and expose no RSS feed to download from.
var ErrSpotifyUnsupported = errors.New("spotify sources are not supported; try Apple Podcasts or the show's website")

// FeedResolver resolves a source URL to a canonical RSS feed URL.
type FeedResolver interface {
	Resolve(url string) (string, error)
}

// EpisodeLister lists episodes from a feed URL, truncated at max.
type EpisodeLister interface {
	List(feedURL string, max int) ([]domain.Episode, error)
}

// AudioDownloader plans target paths and streams episode audio to disk.
type AudioDownloader interface {
	Path(ep domain.Episode) string
	Download(ep domain.Episode) (string, error)
}

// YouTubeEngine hands a YouTube URL to the extraction tool.
type YouTubeEngine interface {
	Download(ctx context.Context, url string, maxEpisodes int) error
}

// Service wires the scan components. Fields are exported so tests can swap
// in fakes; New fills in the real implementations.
type Service struct {
	Config     domain.Config
	Apple      FeedResolver
	Website    FeedResolver
	Lister     EpisodeLister
	Downloader AudioDownloader
	Pool       transcribe.Pool
	YouTube    YouTubeEngine
	Ledger     *ledger.Ledger
	MonitorCPU bool
}

// New builds a service from configuration. The transcription model size is
// validated here so a bad flag fails before any network work.
func New(cfg domain.Config) (*Service, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	factory := func() (transcribe.Transcriber, error) {
		return transcribe.NewWhisperCLI(cfg.WhisperBin, cfg.ModelDir, cfg.ModelSize)
	}
	if _, err := factory(); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = transcribe.RecommendedWorkers()
		log.Printf("Using %d transcription workers (auto-detected from CPU cores)", workers)
	}

	var pool transcribe.Pool
	if cfg.UseProcesses {
		pool = transcribe.NewProcessPool(workers, factory)
	} else {
		pool = transcribe.NewSharedPool(workers, factory)
	}

	return &Service{
		Config:     cfg,
		Apple:      resolver.NewAppleResolver(),
		Website:    resolver.NewWebsiteResolver(),
		Lister:     feed.NewLister(),
		Downloader: download.NewEngine(cfg.AudioDir),
		Pool:       pool,
		YouTube:    youtube.NewEngine(cfg.AudioDir),
		Ledger:     ledger.New(cfg.LedgerPath),
		MonitorCPU: true,
	}, nil
}

// Run scans a single source URL. Fatal errors (unrecognized source, feed not
// found, unparsable feed) come back as errors; per-episode failures are
// logged, counted in the stats, and never abort the run.
func (s *Service) Run(ctx context.Context, rawURL string) (domain.Stats, error) {
	var stats domain.Stats

	kind, err := source.Classify(rawURL)
	if err != nil {
		return stats, fmt.Errorf("%w: %s", err, rawURL)
	}
	log.Printf("Detected source type: %s", kind)

	var feedURL string
	switch kind {
	case source.KindSpotify:
		return stats, ErrSpotifyUnsupported

	case source.KindYouTube:
		if err := s.YouTube.Download(ctx, rawURL, s.Config.MaxEpisodes); err != nil {
			return stats, err
		}
		log.Printf("YouTube audio saved in %s; transcribe the files from an RSS source run or re-run against the feed", s.Config.AudioDir)
		return stats, nil

	case source.KindApple:
		feedURL, err = s.Apple.Resolve(rawURL)
		if err != nil {
			return stats, err
		}

	case source.KindWebsite:
		feedURL, err = s.Website.Resolve(rawURL)
		if err != nil {
			return stats, err
		}

	default: // source.KindRSS
		feedURL = rawURL
	}

	return s.processFeed(ctx, feedURL)
}

func (s *Service) processFeed(ctx context.Context, feedURL string) (domain.Stats, error) {
	var stats domain.Stats

	if err := s.Ledger.Load(); err != nil {
		// A lost ledger is recoverable; file-existence checks below catch
		// prior downloads.
		log.Printf("Warning: could not load ledger, starting empty: %v", err)
	} else if s.Ledger.Len() > 0 {
		log.Printf("Ledger holds %d processed episodes", s.Ledger.Len())
	}

	log.Printf("Parsing feed: %s", feedURL)
	episodes, err := s.Lister.List(feedURL, s.Config.MaxEpisodes)
	if err != nil {
		return stats, err
	}
	stats.TotalFound = len(episodes)
	log.Printf("Found %d episodes", len(episodes))

	var jobs []transcribe.Job
	for _, ep := range episodes {
		if rec, ok := s.Ledger.Get(ep.ID); ok {
			log.Printf("Episode already processed on %s, skipping: %s", rec.ProcessedAt, ep.Title)
			stats.Skipped++
			continue
		}

		audioPath := s.Downloader.Path(ep)
		if download.AlreadyDownloaded(audioPath) {
			log.Printf("Audio already present: %s", audioPath)
		} else {
			audioPath, err = s.Downloader.Download(ep)
			if err != nil {
				log.Printf("Download failed for %q: %v", ep.Title, err)
				stats.Failed++
				continue
			}
			stats.Downloaded++
		}

		transcriptPath := s.transcriptPathFor(audioPath)
		if fileExists(transcriptPath) {
			log.Printf("Transcript already exists: %s", transcriptPath)
			s.markProcessed(ep, audioPath, transcriptPath)
			stats.Skipped++
			continue
		}

		jobs = append(jobs, transcribe.Job{
			Episode:        ep,
			AudioPath:      audioPath,
			TranscriptPath: transcriptPath,
		})
	}

	if len(jobs) > 0 {
		log.Printf("Transcribing %d episodes", len(jobs))
		if s.MonitorCPU {
			monitor := transcribe.StartMonitor()
			defer monitor.Stop()
		}

		// Workers return results; only this goroutine updates the ledger.
		for _, res := range s.Pool.Run(ctx, jobs) {
			if res.Err != nil {
				stats.Failed++
				continue
			}
			stats.Transcribed++
			s.markProcessed(res.Job.Episode, res.Job.AudioPath, res.Job.TranscriptPath)
		}
	}

	return stats, nil
}

// markProcessed records an episode in the ledger and persists immediately so
// an interrupted run keeps its completed episodes.
func (s *Service) markProcessed(ep domain.Episode, audioPath, transcriptPath string) {
	published := ""
	if ep.Published != nil {
		published = ep.Published.Format(time.RFC1123)
	}
	s.Ledger.MarkProcessed(ep.ID, ledger.Record{
		Title:          ep.Title,
		AudioURL:       ep.AudioURL,
		Published:      published,
		AudioFile:      filepath.Base(audioPath),
		TranscriptFile: filepath.Base(transcriptPath),
	})
	if err := s.Ledger.Save(); err != nil {
		log.Printf("Warning: could not save ledger: %v", err)
	}
}

func (s *Service) transcriptPathFor(audioPath string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(s.Config.TranscriptsDir, base+".txt")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
