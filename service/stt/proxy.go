package stt

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/mrsingh-rishi/voicescribe/stt"
	"github.com/mrsingh-rishi/voicescribe/types"
)

// TranscriptionPath is the proxy route audio is posted to.
const TranscriptionPath = "/api/transcription"

// ProxyClient sends uploads to the VoiceScribe proxy endpoint.
type ProxyClient struct {
	Endpoint string
	// Token is sent as a bearer token when the proxy requires auth.
	Token  string
	client *fasthttp.Client
}

// NewProxyClient creates a client for the proxy served at serverURL.
func NewProxyClient(serverURL, token string) *ProxyClient {
	return &ProxyClient{
		Endpoint: strings.TrimRight(serverURL, "/") + TranscriptionPath,
		Token:    token,
		client:   &fasthttp.Client{Name: "voicescribe-client"},
	}
}

// Transcribe posts upload as the multipart field "file" and decodes the
// relayed transcription.
func (p *ProxyClient) Transcribe(ctx context.Context, upload stt.Upload) (types.TranscriptionResponse, error) {
	var result types.TranscriptionResponse

	body, contentType, err := stt.EncodeForm(upload, "")
	if err != nil {
		return result, errors.Wrap(err, "encode form")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	requestID := uuid.NewString()
	req.SetRequestURI(p.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.Header.Set("X-Request-ID", requestID)
	if p.Token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+p.Token)
	}
	req.SetBody(body)

	log.Printf("proxy: sending %s (%d bytes) request=%s", upload.Name, len(upload.Data), requestID)
	if deadline, ok := ctx.Deadline(); ok {
		err = p.client.DoDeadline(req, resp, deadline)
	} else {
		err = p.client.Do(req, resp)
	}
	if err != nil {
		return result, errors.Wrapf(err, "post %s", p.Endpoint)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return result, &stt.StatusError{StatusCode: status, Body: string(resp.Body())}
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return result, errors.Wrap(err, "decode transcription")
	}
	return result, nil
}
