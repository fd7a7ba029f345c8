package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrsingh-rishi/voicescribe/stt"
)

func TestProxyClientPostsFile(t *testing.T) {
	var gotPath, gotAuth, gotName, gotRequestID string
	var gotData []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotName = fh.Filename
		gotData, _ = io.ReadAll(f)
		if m := r.FormValue("model"); m != "" {
			t.Errorf("the proxy picks the model, client sent %q", m)
		}
		_, _ = io.WriteString(w, `{"text":"  hello world  "}`)
	}))
	defer srv.Close()

	c := NewProxyClient(srv.URL+"/", "tok")
	resp, err := c.Transcribe(context.Background(), stt.Upload{Name: "audio.wav", MimeType: "audio/wav", Data: []byte("RIFF")})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if resp.Text != "  hello world  " {
		t.Errorf("text = %q", resp.Text)
	}
	if gotPath != TranscriptionPath {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Errorf("expected request id header")
	}
	if gotName != "audio.wav" || string(gotData) != "RIFF" {
		t.Errorf("file = %q %q", gotName, gotData)
	}
}

func TestProxyClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"Groq API error: 502"}`)
	}))
	defer srv.Close()

	c := NewProxyClient(srv.URL, "")
	_, err := c.Transcribe(context.Background(), stt.Upload{Name: "audio.wav", Data: []byte("RIFF")})
	se, ok := err.(*stt.StatusError)
	if !ok {
		t.Fatalf("expected *stt.StatusError, got %T %v", err, err)
	}
	if se.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", se.StatusCode)
	}
}

func TestProxyClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	c := NewProxyClient(srv.URL, "")
	if _, err := c.Transcribe(context.Background(), stt.Upload{Name: "audio.wav", Data: []byte("RIFF")}); err == nil {
		t.Fatalf("expected decode error")
	}
}
