package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// modelSizes are the whisper.cpp model presets the CLI accepts.
var modelSizes = map[string]bool{
	"tiny":   true,
	"base":   true,
	"small":  true,
	"medium": true,
	"large":  true,
}

// WhisperCLI transcribes audio by invoking a whisper.cpp binary. Every call
// is its own subprocess, so a crash in the model never reaches this process.
type WhisperCLI struct {
	bin       string
	modelPath string
}

// NewWhisperCLI creates a transcriber for the given model size. The model
// file is expected at <modelDir>/ggml-<size>.bin, the whisper.cpp layout.
func NewWhisperCLI(bin, modelDir, size string) (*WhisperCLI, error) {
	if !modelSizes[size] {
		return nil, fmt.Errorf("unknown model size %q (supported: tiny, base, small, medium, large)", size)
	}
	return &WhisperCLI{
		bin:       bin,
		modelPath: filepath.Join(modelDir, "ggml-"+size+".bin"),
	}, nil
}

// Transcribe runs the whisper binary over the audio file and returns its
// plain-text output.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	cmd := exec.CommandContext(ctx, w.bin,
		"-m", w.modelPath,
		"-f", audioPath,
		"--no-prints",
		"--no-timestamps",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s: %s", w.bin, msg)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("%s produced no output for %s", w.bin, audioPath)
	}
	return text, nil
}

// Close is a no-op; the CLI backend holds no resources between calls.
func (w *WhisperCLI) Close() error { return nil }
