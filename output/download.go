package output

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voicescribe/model"
)

// RecordingFilename names a download after its timestamp, e.g.
// recording-2026-10-15-09-30-00.wav.
func RecordingFilename(a model.Asset, at time.Time) string {
	stamp := strings.NewReplacer(":", "-", "T", "-").Replace(at.UTC().Format("2006-01-02T15:04:05"))
	return "recording-" + stamp + extension(a)
}

func extension(a model.Asset) string {
	if ext := filepath.Ext(a.Name); ext != "" {
		return ext
	}
	if _, sub, ok := strings.Cut(a.MimeType, "/"); ok && sub != "" {
		return "." + sub
	}
	return ".wav"
}

// SaveRecording writes the asset into dir and returns the file path.
func SaveRecording(dir string, a model.Asset, at time.Time) (string, error) {
	if a.Size() == 0 {
		return "", errors.New("no audio data available")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	path := filepath.Join(dir, RecordingFilename(a, at))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
