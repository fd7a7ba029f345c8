package stt

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// Response is an upstream reply, kept raw so it can be relayed verbatim.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// GroqClient forwards audio uploads to an OpenAI-compatible transcription
// endpoint (Groq by default) with a fixed model.
type GroqClient struct {
	APIKey   string
	Endpoint string
	Model    string
	client   *fasthttp.Client
}

func NewGroqClient(apiKey, endpoint, model string) *GroqClient {
	if endpoint == "" {
		endpoint = DefaultGroqURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GroqClient{
		APIKey:   apiKey,
		Endpoint: endpoint,
		Model:    model,
		client: &fasthttp.Client{
			Name:                "voicescribe",
			MaxResponseBodySize: 16 << 20,
		},
	}
}

// Forward posts upload and the model id upstream and returns the raw reply.
// A non-2xx reply is not an error; the caller decides how to surface it.
func (g *GroqClient) Forward(ctx context.Context, upload Upload) (*Response, error) {
	body, contentType, err := EncodeForm(upload, g.Model)
	if err != nil {
		return nil, errors.Wrap(err, "encode upstream form")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(g.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+g.APIKey)
	req.Header.SetContentType(contentType)
	req.SetBody(body)

	if deadline, ok := ctx.Deadline(); ok {
		err = g.client.DoDeadline(req, resp, deadline)
	} else {
		err = g.client.Do(req, resp)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "post %s", g.Endpoint)
	}

	out := &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: string(resp.Header.ContentType()),
		Body:        append([]byte(nil), resp.Body()...),
	}
	return out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodeForm builds the multipart body: the audio under "file" plus an
// optional "model" field. It returns the body and its content type.
func EncodeForm(upload Upload, model string) ([]byte, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	name := upload.Name
	if name == "" {
		name = fmt.Sprintf("audio-%d.wav", time.Now().Unix())
	}
	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", mimeType)
	fw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(upload.Data); err != nil {
		return nil, "", err
	}
	if model != "" {
		if err := mw.WriteField("model", model); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body.Bytes(), mw.FormDataContentType(), nil
}
