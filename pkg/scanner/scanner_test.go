package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podscanner/pkg/domain"
	"podscanner/pkg/download"
	"podscanner/pkg/feed"
	"podscanner/pkg/ledger"
	"podscanner/pkg/transcribe"
)

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	return "words from " + filepath.Base(audioPath), nil
}

func (fakeTranscriber) Close() error { return nil }

func fakeFactory() (transcribe.Transcriber, error) {
	return fakeTranscriber{}, nil
}

// podcastServer serves a feed with n episodes and their audio enclosures.
// failEpisode (1-based) gets a 500 on its audio URL; 0 disables that.
func podcastServer(t *testing.T, n, failEpisode int) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Show</title>`)
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&b, `<item><title>Episode %d</title><enclosure url="%s/audio/ep%d.mp3" type="audio/mpeg"/></item>`, i, server.URL, i)
		}
		b.WriteString(`</channel></rss>`)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(b.String()))
	})
	mux.HandleFunc("/audio/", func(w http.ResponseWriter, r *http.Request) {
		if failEpisode > 0 && strings.HasSuffix(r.URL.Path, fmt.Sprintf("ep%d.mp3", failEpisode)) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("audio payload for " + r.URL.Path))
	})
	server = httptest.NewServer(mux)
	return server
}

func newTestService(t *testing.T, ledgerPath string) *Service {
	t.Helper()
	cfg := domain.Config{
		AudioDir:       filepath.Dir(ledgerPath) + "/downloads",
		TranscriptsDir: filepath.Dir(ledgerPath) + "/transcripts",
		LedgerPath:     ledgerPath,
	}
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return &Service{
		Config:     cfg,
		Lister:     feed.NewLister(),
		Downloader: download.NewEngine(cfg.AudioDir),
		Pool:       transcribe.NewSharedPool(2, fakeFactory),
		Ledger:     ledger.New(cfg.LedgerPath),
	}
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	server := podcastServer(t, 3, 0)
	defer server.Close()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "processed.json")

	first := newTestService(t, ledgerPath)
	stats, err := first.Run(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if stats.TotalFound != 3 || stats.Downloaded != 3 || stats.Transcribed != 3 || stats.Skipped != 0 {
		t.Fatalf("unexpected first-run stats: %+v", stats)
	}

	second := newTestService(t, ledgerPath)
	stats, err = second.Run(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if stats.Skipped != stats.TotalFound {
		t.Errorf("second run skipped %d of %d, want all skipped", stats.Skipped, stats.TotalFound)
	}
	if stats.Downloaded != 0 || stats.Transcribed != 0 || stats.Failed != 0 {
		t.Errorf("second run did new work: %+v", stats)
	}
}

func TestRun_PerEpisodeFailureIsolation(t *testing.T) {
	server := podcastServer(t, 5, 2)
	defer server.Close()

	dir := t.TempDir()
	svc := newTestService(t, filepath.Join(dir, "processed.json"))

	stats, err := svc.Run(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.TotalFound != 5 {
		t.Fatalf("expected 5 episodes found, got %d", stats.TotalFound)
	}
	if stats.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", stats.Failed)
	}
	if stats.Downloaded != 4 || stats.Transcribed != 4 {
		t.Errorf("episodes around the failure were not processed: %+v", stats)
	}
}

func TestRun_CorruptLedgerFallsBackToFiles(t *testing.T) {
	server := podcastServer(t, 2, 0)
	defer server.Close()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "processed.json")

	first := newTestService(t, ledgerPath)
	if _, err := first.Run(context.Background(), server.URL+"/feed.xml"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Corrupt the ledger; the audio and transcript files on disk are still
	// valid evidence of completion, so nothing is re-downloaded.
	if err := os.WriteFile(ledgerPath, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	second := newTestService(t, ledgerPath)
	stats, err := second.Run(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("run with corrupt ledger failed: %v", err)
	}
	if stats.Downloaded != 0 {
		t.Errorf("re-downloaded %d episodes despite files on disk", stats.Downloaded)
	}
	if stats.Skipped != 2 {
		t.Errorf("recovered episodes not counted as skipped: %+v", stats)
	}
	if stats.Failed != 0 {
		t.Errorf("unexpected failures: %+v", stats)
	}
}

// pickyTranscriber fails for audio whose payload mentions ep2, so one of two
// otherwise identical episodes fails its first transcription.
type pickyTranscriber struct{}

func (pickyTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", err
	}
	if strings.Contains(string(data), "ep2") {
		return "", errors.New("decode error")
	}
	return "words from " + filepath.Base(audioPath), nil
}

func (pickyTranscriber) Close() error { return nil }

func TestRun_SameTitleFailureRetriesOwnEpisode(t *testing.T) {
	// Two episodes share a title. The second one's transcription fails on
	// the first run; the second run must retry it against its own audio
	// instead of adopting the first episode's files.
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Show</title>`)
		for i := 1; i <= 2; i++ {
			fmt.Fprintf(&b, `<item><title>Weekly Update</title><enclosure url="%s/audio/ep%d.mp3" type="audio/mpeg"/></item>`, server.URL, i)
		}
		b.WriteString(`</channel></rss>`)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(b.String()))
	})
	mux.HandleFunc("/audio/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("audio payload for " + r.URL.Path))
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "processed.json")

	first := newTestService(t, ledgerPath)
	first.Pool = transcribe.NewSharedPool(1, func() (transcribe.Transcriber, error) {
		return pickyTranscriber{}, nil
	})
	stats, err := first.Run(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if stats.Downloaded != 2 || stats.Transcribed != 1 || stats.Failed != 1 {
		t.Fatalf("unexpected first-run stats: %+v", stats)
	}

	second := newTestService(t, ledgerPath)
	stats, err = second.Run(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if stats.Transcribed != 1 {
		t.Errorf("failed episode was not retried: %+v", stats)
	}
	if stats.Downloaded != 0 {
		t.Errorf("retry re-downloaded audio already on disk: %+v", stats)
	}
	if stats.Skipped != 1 {
		t.Errorf("completed episode not skipped: %+v", stats)
	}

	// Each episode ends up with its own transcript.
	entries, err := os.ReadDir(second.Config.TranscriptsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 transcripts, found %d", len(entries))
	}
}

func TestRun_SpotifyRejected(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "processed.json"))
	_, err := svc.Run(context.Background(), "https://open.spotify.com/show/abc")
	if !errors.Is(err, ErrSpotifyUnsupported) {
		t.Fatalf("expected ErrSpotifyUnsupported, got %v", err)
	}
}

type recordingYouTube struct {
	url string
	max int
}

func (r *recordingYouTube) Download(_ context.Context, url string, maxEpisodes int) error {
	r.url = url
	r.max = maxEpisodes
	return nil
}

func TestRun_YouTubeGoesToExtractor(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "processed.json"))
	yt := &recordingYouTube{}
	svc.YouTube = yt
	svc.Config.MaxEpisodes = 4

	url := "https://www.youtube.com/playlist?list=PLabc"
	if _, err := svc.Run(context.Background(), url); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if yt.url != url || yt.max != 4 {
		t.Errorf("extractor called with (%q, %d), want (%q, 4)", yt.url, yt.max, url)
	}
}
