// Package download streams podcast audio enclosures to disk.
package download

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"podscanner/pkg/domain"
	"podscanner/pkg/httpclient"
)

// ErrDownload marks a per-episode download failure. The run continues past
// it; the episode is simply counted as failed and retried naturally on the
// next run since it was never marked processed.
var ErrDownload = errors.New("download failed")

// courtesyDelay is a static pause between successive downloads so we do not
// hammer the hosting server. Downloads run sequentially, so the delay bounds
// the request rate.
const courtesyDelay = 1 * time.Second

// Engine downloads episode audio into a content directory. It is used from a
// single goroutine; the transcription pool never downloads.
type Engine struct {
	client       *httpclient.HTTPClient
	dir          string
	lastDownload time.Time
}

// NewEngine creates an engine writing into dir. Audio transfers can be long,
// so the HTTP client has no overall timeout.
func NewEngine(dir string) *Engine {
	return &Engine{
		client: httpclient.NewClient(httpclient.PlainClient, 0),
		dir:    dir,
	}
}

// Path returns the target path for an episode's audio file. The short
// episode identifier is part of the name, so episodes sharing a sanitized
// title never contend for the same file and the mapping is stable across
// runs; an on-disk file at this path always belongs to this episode.
func (e *Engine) Path(ep domain.Episode) string {
	base := Sanitize(ep.Title)
	if base == "" {
		base = "episode"
	}
	name := base + "_" + shortID(ep.ID) + ExtFromURL(ep.AudioURL)
	return filepath.Join(e.dir, name)
}

// AlreadyDownloaded reports whether a non-empty file already sits at path.
// A prior download is valid evidence of completion even when the ledger was
// lost, so the caller skips the transfer.
func AlreadyDownloaded(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// Download streams the episode's audio to its target path, logging progress
// along the way. On any transfer error the partial file is removed and an
// ErrDownload-wrapped error is returned. A fixed courtesy delay is applied
// between successive downloads.
func (e *Engine) Download(ep domain.Episode) (string, error) {
	target := e.Path(ep)

	e.pause()

	resp, err := e.client.Get(ep.AudioURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status code %d", ErrDownload, resp.StatusCode)
	}

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	progress := &progressLogger{name: filepath.Base(target), total: resp.ContentLength}
	_, err = io.Copy(out, io.TeeReader(resp.Body, progress))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	e.lastDownload = time.Now()
	log.Printf("Downloaded %s (%s)", filepath.Base(target), humanize.Bytes(uint64(progress.written)))
	return target, nil
}

// pause enforces the courtesy delay relative to the previous download.
func (e *Engine) pause() {
	if e.lastDownload.IsZero() {
		return
	}
	if elapsed := time.Since(e.lastDownload); elapsed < courtesyDelay {
		time.Sleep(courtesyDelay - elapsed)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// progressLogger reports transfer progress every 10% when the size is known,
// or every 10 MiB when it is not.
type progressLogger struct {
	name     string
	total    int64
	written  int64
	lastMark int64
}

func (p *progressLogger) Write(b []byte) (int, error) {
	p.written += int64(len(b))

	if p.total > 0 {
		pct := p.written * 100 / p.total
		if pct >= p.lastMark+10 {
			p.lastMark = pct - pct%10
			log.Printf("  %s: %d%% (%s / %s)", p.name, pct, humanize.Bytes(uint64(p.written)), humanize.Bytes(uint64(p.total)))
		}
		return len(b), nil
	}

	const chunk = 10 << 20
	if p.written >= p.lastMark+chunk {
		p.lastMark = p.written - p.written%chunk
		log.Printf("  %s: %s downloaded", p.name, humanize.Bytes(uint64(p.written)))
	}
	return len(b), nil
}
