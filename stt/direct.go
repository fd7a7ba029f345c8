package stt

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/voicescribe/types"
)

// DirectClient talks to the OpenAI-compatible transcription API without
// going through the proxy. It holds the API key itself.
type DirectClient struct {
	Client *openai.Client
	Model  string
}

// NewDirectClient creates a client for baseURL (Groq when empty).
func NewDirectClient(apiKey, baseURL, model string) *DirectClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultGroqBase
	}
	cfg.BaseURL = baseURL
	if model == "" {
		model = DefaultModel
	}
	return &DirectClient{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (d *DirectClient) Transcribe(ctx context.Context, upload Upload) (types.TranscriptionResponse, error) {
	req := openai.AudioRequest{
		Model:    d.Model,
		FilePath: upload.Name,
		Reader:   bytes.NewReader(upload.Data),
		Format:   openai.AudioResponseFormatJSON,
	}
	resp, err := d.Client.CreateTranscription(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return types.TranscriptionResponse{}, &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return types.TranscriptionResponse{}, &StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
		}
		return types.TranscriptionResponse{}, errors.Wrap(err, "create transcription")
	}
	return types.TranscriptionResponse{
		Text:     resp.Text,
		Task:     resp.Task,
		Language: resp.Language,
		Duration: resp.Duration,
	}, nil
}
