package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mrsingh-rishi/voicescribe/auth"
	"github.com/mrsingh-rishi/voicescribe/config"
	"github.com/mrsingh-rishi/voicescribe/stt"
	"github.com/mrsingh-rishi/voicescribe/types"
)

type stubForwarder struct {
	resp   *stt.Response
	err    error
	called int
	got    stt.Upload
}

func (s *stubForwarder) Forward(ctx context.Context, upload stt.Upload) (*stt.Response, error) {
	s.called++
	s.got = upload
	return s.resp, s.err
}

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "audio.wav")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	} else {
		mw.WriteField("note", "no file here")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transcription", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, r io.Reader) types.ErrorResponse {
	t.Helper()
	var er types.ErrorResponse
	if err := json.NewDecoder(r).Decode(&er); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return er
}

func TestTranscriptionEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		field      string
		forwarder  *stubForwarder
		wantStatus int
		wantError  string
		wantCalled int
	}{
		{
			name:       "missing file",
			apiKey:     "key",
			field:      "",
			forwarder:  &stubForwarder{},
			wantStatus: http.StatusBadRequest,
			wantError:  "No audio file provided",
		},
		{
			name:       "missing credential",
			apiKey:     "",
			field:      "file",
			forwarder:  &stubForwarder{},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Groq API key is not configured",
		},
		{
			name:       "upstream failure keeps status",
			apiKey:     "key",
			field:      "file",
			forwarder:  &stubForwarder{resp: &stt.Response{StatusCode: 429, Body: []byte("slow down")}},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "Groq API error: 429",
			wantCalled: 1,
		},
		{
			name:       "transport error",
			apiKey:     "key",
			field:      "file",
			forwarder:  &stubForwarder{err: fmt.Errorf("dial tcp: refused")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to process transcription request",
			wantCalled: 1,
		},
		{
			name:       "invalid upstream json",
			apiKey:     "key",
			field:      "file",
			forwarder:  &stubForwarder{resp: &stt.Response{StatusCode: 200, Body: []byte("<html>")}},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to process transcription request",
			wantCalled: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp(config.Server{GroqAPIKey: tt.apiKey}, tt.forwarder)
			resp, err := app.Test(multipartRequest(t, tt.field, []byte("RIFF")))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if er := decodeError(t, resp.Body); er.Error != tt.wantError {
				t.Fatalf("error = %q, want %q", er.Error, tt.wantError)
			}
			if tt.forwarder.called != tt.wantCalled {
				t.Fatalf("forwarder called %d times, want %d", tt.forwarder.called, tt.wantCalled)
			}
		})
	}
}

func TestTranscriptionEndpointUpstreamDetails(t *testing.T) {
	fw := &stubForwarder{resp: &stt.Response{StatusCode: 401, Body: []byte(`{"error":{"message":"Invalid API Key"}}`)}}
	app := NewApp(config.Server{GroqAPIKey: "key"}, fw)

	resp, err := app.Test(multipartRequest(t, "file", []byte("RIFF")))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	er := decodeError(t, resp.Body)
	if resp.StatusCode != http.StatusUnauthorized || er.Details != `{"error":{"message":"Invalid API Key"}}` {
		t.Fatalf("unexpected response %d %+v", resp.StatusCode, er)
	}
}

func TestTranscriptionEndpointRelaysVerbatim(t *testing.T) {
	body := `{"text":"hello world","x_groq":{"id":"req_01"}}`
	fw := &stubForwarder{resp: &stt.Response{StatusCode: 200, Body: []byte(body)}}
	app := NewApp(config.Server{GroqAPIKey: "key"}, fw)

	resp, err := app.Test(multipartRequest(t, "file", []byte("RIFFaudio")))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	got, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(got) != body {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, got)
	}
	if fw.got.Name != "audio.wav" || string(fw.got.Data) != "RIFFaudio" {
		t.Fatalf("forwarded upload = %q %q", fw.got.Name, fw.got.Data)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestTranscriptionEndpointEndToEnd(t *testing.T) {
	var gotModel, gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotModel = r.FormValue("model")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"end to end"}`)
	}))
	defer upstream.Close()

	app := NewApp(config.Server{GroqAPIKey: "server-key", GroqAPIURL: upstream.URL, Model: stt.DefaultModel}, nil)
	resp, err := app.Test(multipartRequest(t, "file", []byte("RIFF")), 5000)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var tr types.TranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tr.Text != "end to end" {
		t.Fatalf("text = %q", tr.Text)
	}
	if gotModel != "whisper-large-v3" || gotAuth != "Bearer server-key" {
		t.Fatalf("upstream saw model=%q auth=%q", gotModel, gotAuth)
	}
}

func TestTranscriptionEndpointRequiresToken(t *testing.T) {
	fw := &stubForwarder{resp: &stt.Response{StatusCode: 200, Body: []byte(`{"text":"ok"}`)}}
	app := NewApp(config.Server{GroqAPIKey: "key", JWTSecret: "s3cret"}, fw)

	resp, err := app.Test(multipartRequest(t, "file", []byte("RIFF")))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	tok, _ := auth.Sign("s3cret", "scribe", time.Minute)
	req := multipartRequest(t, "file", []byte("RIFF"))
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	app := NewApp(config.Server{}, &stubForwarder{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
