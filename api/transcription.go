package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/mrsingh-rishi/voicescribe/stt"
	"github.com/mrsingh-rishi/voicescribe/types"
)

// Forwarder sends an upload to the upstream transcription API.
type Forwarder interface {
	Forward(ctx context.Context, upload stt.Upload) (*stt.Response, error)
}

// TranscriptionHandler proxies POST /api/transcription to the upstream API.
type TranscriptionHandler struct {
	// APIKey is checked per request so a missing credential is reported to
	// the caller instead of failing at startup.
	APIKey    string
	Forwarder Forwarder
}

func (h *TranscriptionHandler) Handle(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Error: "No audio file provided"})
		}
		log.Printf("Transcription error: read form: %v", err)
		return internalError(c)
	}

	if h.APIKey == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{Error: "Groq API key is not configured"})
	}

	upload, err := readUpload(fh.Filename, fh.Header.Get(fiber.HeaderContentType), func() (io.ReadCloser, error) {
		return fh.Open()
	})
	if err != nil {
		log.Printf("Transcription error: %v", err)
		return internalError(c)
	}

	resp, err := h.Forwarder.Forward(c.UserContext(), upload)
	if err != nil {
		log.Printf("Transcription error: %v", err)
		return internalError(c)
	}

	if !resp.OK() {
		return c.Status(resp.StatusCode).JSON(types.ErrorResponse{
			Error:   fmt.Sprintf("Groq API error: %d", resp.StatusCode),
			Details: string(resp.Body),
		})
	}
	if !json.Valid(resp.Body) {
		log.Printf("Transcription error: upstream returned invalid JSON (%d bytes)", len(resp.Body))
		return internalError(c)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(resp.Body)
}

func readUpload(name, mimeType string, open func() (io.ReadCloser, error)) (stt.Upload, error) {
	f, err := open()
	if err != nil {
		return stt.Upload{}, errors.Wrap(err, "open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return stt.Upload{}, errors.Wrap(err, "read uploaded file")
	}
	return stt.Upload{Name: name, MimeType: mimeType, Data: data}, nil
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{Error: "Failed to process transcription request"})
}
