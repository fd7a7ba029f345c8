package types

// TranscriptionResponse is the JSON body returned by an OpenAI-compatible
// transcription endpoint. Only Text is guaranteed; the rest depends on the
// requested response format.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Task     string  `json:"task,omitempty"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// ErrorResponse is the JSON body the proxy returns on failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
