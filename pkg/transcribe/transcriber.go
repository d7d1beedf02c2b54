// Package transcribe runs a speech-to-text model over downloaded audio files
// and writes transcript artifacts.
//
// The model is consumed as an opaque external capability behind the
// Transcriber interface; the shipped backend shells out to a whisper.cpp
// binary.
package transcribe

import (
	"context"
	"errors"
)

// ErrTranscription marks a per-file transcription failure. It never aborts a
// batch; the file is reported as failed and the run continues.
var ErrTranscription = errors.New("transcription failed")

// Transcriber converts one audio file to text.
type Transcriber interface {
	// Transcribe returns the transcript text for the audio file at path.
	Transcribe(ctx context.Context, audioPath string) (string, error)
	// Close releases backend resources.
	Close() error
}

// Factory creates a Transcriber. Models are expensive to initialize, so pool
// strategies decide how often a factory is invoked: once per worker for the
// shared pool, once per job for the process pool.
type Factory func() (Transcriber, error)
