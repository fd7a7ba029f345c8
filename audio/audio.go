package audio

//go:generate mockgen -destination=../mocks/mock_audio.go -package=mocks github.com/mrsingh-rishi/voicescribe/audio Capture

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrNoDevice is returned by Capture.Start when there is no input device at all.
var ErrNoDevice = errors.New("no audio input device")

// Format describes interleaved signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is 16 kHz mono, which is what whisper models are trained on.
var DefaultFormat = Format{SampleRate: 16000, Channels: 1}

// BytesPerSecond returns the PCM byte rate of the format.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * 2
}

// Duration returns how long n bytes of PCM in this format last.
func (f Format) Duration(n int) time.Duration {
	bps := f.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(bps)
}

type Frame struct {
	Data      []byte
	Format    Format
	Timestamp time.Time
}

// Capture is a microphone-like input device.
//
// Start acquires the device and streams frames until ctx is cancelled or
// Close is called, after which the returned channel is closed. Start fails
// when the device cannot be acquired, e.g. when permission is denied.
type Capture interface {
	Name() string
	Start(ctx context.Context) (<-chan Frame, error)
	Close() error
}
