// Package youtube downloads podcast audio from YouTube channels, playlists
// and videos via yt-dlp. The extraction tool is an opaque boundary
// dependency; this package only assembles its invocation.
package youtube

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// Engine drives yt-dlp best-audio extraction into a target directory.
type Engine struct {
	dir string
}

// NewEngine creates an engine writing into dir.
func NewEngine(dir string) *Engine {
	return &Engine{dir: dir}
}

// Download extracts best-quality audio (and metadata) for the URL into the
// audio directory. maxEpisodes bounds playlist extraction; 0 means the whole
// playlist.
func (e *Engine) Download(ctx context.Context, url string, maxEpisodes int) error {
	dl := ytdlp.New().
		Format("bestaudio").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("0").
		EmbedMetadata().
		RestrictFilenames().
		Output(e.dir + "/%(uploader)s - %(title)s.%(ext)s")

	if maxEpisodes > 0 {
		dl = dl.PlaylistEnd(maxEpisodes)
	}

	dl.ProgressFunc(time.Second, func(update ytdlp.ProgressUpdate) {
		if update.TotalBytes > 0 {
			pct := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
			log.Printf("  YouTube download: %.1f%%", pct)
		}
	})

	if _, err := dl.Run(ctx, url); err != nil {
		return fmt.Errorf("yt-dlp failed for %s: %w", url, err)
	}
	return nil
}
