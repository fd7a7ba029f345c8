package stt

//go:generate mockgen -destination=../mocks/mock_stt.go -package=mocks github.com/mrsingh-rishi/voicescribe/stt Transcriber

import (
	"context"
	"fmt"

	"github.com/mrsingh-rishi/voicescribe/model"
	"github.com/mrsingh-rishi/voicescribe/types"
)

const (
	DefaultModel    = "whisper-large-v3"
	DefaultGroqURL  = "https://api.groq.com/openai/v1/audio/transcriptions"
	DefaultGroqBase = "https://api.groq.com/openai/v1"
)

// Upload is an audio file ready to be sent as a multipart form field.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// NewUpload re-encodes a captured asset as an upload file. The data is
// copied so the caller may keep mutating its buffers.
func NewUpload(a model.Asset) Upload {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return Upload{Name: a.Name, MimeType: a.MimeType, Data: data}
}

// Transcriber turns an uploaded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, upload Upload) (types.TranscriptionResponse, error)
}

// StatusError is returned when a transcription backend answers with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transcription http %d: %s", e.StatusCode, e.Body)
}
