package stt

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mrsingh-rishi/voicescribe/model"
)

type seenRequest struct {
	auth     string
	model    string
	filename string
	fileType string
	data     []byte
}

func fakeUpstream(t *testing.T, status int, body string, seen *seenRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		seen.auth = r.Header.Get("Authorization")
		seen.model = r.FormValue("model")
		f, fh, err := r.FormFile("file")
		if err == nil {
			seen.filename = fh.Filename
			seen.fileType = fh.Header.Get("Content-Type")
			seen.data, _ = io.ReadAll(f)
			f.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGroqClientForwardsFileAndModel(t *testing.T) {
	var seen seenRequest
	srv := fakeUpstream(t, http.StatusOK, `{"text":"hello there","x_groq":{"id":"req_1"}}`, &seen)

	c := NewGroqClient("secret", srv.URL, "")
	upload := Upload{Name: "audio.wav", MimeType: "audio/wav", Data: []byte("RIFFdata")}
	resp, err := c.Forward(context.Background(), upload)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	if !resp.OK() {
		t.Fatalf("expected ok response, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"text":"hello there","x_groq":{"id":"req_1"}}` {
		t.Fatalf("body not relayed verbatim: %s", resp.Body)
	}
	if seen.auth != "Bearer secret" {
		t.Errorf("authorization header = %q", seen.auth)
	}
	if seen.model != DefaultModel {
		t.Errorf("model = %q, want %q", seen.model, DefaultModel)
	}
	if seen.filename != "audio.wav" || seen.fileType != "audio/wav" {
		t.Errorf("file part = %q %q", seen.filename, seen.fileType)
	}
	if string(seen.data) != "RIFFdata" {
		t.Errorf("file data = %q", seen.data)
	}
}

func TestGroqClientKeepsUpstreamStatus(t *testing.T) {
	var seen seenRequest
	srv := fakeUpstream(t, http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, &seen)

	c := NewGroqClient("secret", srv.URL, "whisper-large-v3-turbo")
	resp, err := c.Forward(context.Background(), Upload{Name: "a.wav", Data: []byte{1}})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if seen.model != "whisper-large-v3-turbo" {
		t.Errorf("model = %q", seen.model)
	}
}

func TestGroqClientTransportError(t *testing.T) {
	c := NewGroqClient("secret", "http://127.0.0.1:1/audio", "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := c.Forward(ctx, Upload{Name: "a.wav", Data: []byte{1}}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestDirectClientTranscribes(t *testing.T) {
	var seen seenRequest
	srv := fakeUpstream(t, http.StatusOK, `{"text":"direct text","language":"en"}`, &seen)

	c := NewDirectClient("key", srv.URL, "")
	resp, err := c.Transcribe(context.Background(), Upload{Name: "audio.wav", MimeType: "audio/wav", Data: []byte("RIFF")})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if resp.Text != "direct text" {
		t.Fatalf("text = %q", resp.Text)
	}
	if seen.auth != "Bearer key" || seen.model != DefaultModel {
		t.Fatalf("unexpected request auth=%q model=%q", seen.auth, seen.model)
	}
}

func TestDirectClientStatusError(t *testing.T) {
	var seen seenRequest
	srv := fakeUpstream(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, &seen)

	c := NewDirectClient("key", srv.URL, "")
	_, err := c.Transcribe(context.Background(), Upload{Name: "audio.wav", Data: []byte("RIFF")})
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T %v", err, err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", se.StatusCode)
	}
}

func TestNewUploadCopiesAsset(t *testing.T) {
	asset := model.Asset{Name: "audio.wav", MimeType: "audio/wav", Data: []byte{1, 2, 3}}
	up := NewUpload(asset)
	asset.Data[0] = 9
	if up.Data[0] != 1 {
		t.Fatalf("upload must own its data")
	}
	if up.Name != "audio.wav" || up.MimeType != "audio/wav" {
		t.Fatalf("unexpected file info %q %q", up.Name, up.MimeType)
	}
}

func TestEncodeFormEscapesFilename(t *testing.T) {
	tests := []struct {
		name  string
		model string
	}{
		{`take "1".wav`, "whisper-large-v3"},
		{`back\slash.wav`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType, err := EncodeForm(Upload{Name: tt.name, MimeType: "audio/wav", Data: []byte("RIFF")}, tt.model)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			_, params, err := mime.ParseMediaType(contentType)
			if err != nil {
				t.Fatalf("content type %q: %v", contentType, err)
			}
			form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(1 << 20)
			if err != nil {
				t.Fatalf("read form: %v", err)
			}
			files := form.File["file"]
			if len(files) != 1 || files[0].Filename != tt.name {
				t.Fatalf("file parts = %+v", files)
			}
			var gotModel string
			if v := form.Value["model"]; len(v) > 0 {
				gotModel = v[0]
			}
			if gotModel != tt.model {
				t.Fatalf("model = %q, want %q", gotModel, tt.model)
			}
		})
	}
}
