package model

import "time"

// AudioChunk represents a chunk of raw 16-bit PCM audio captured during one interval.
type AudioChunk []byte

// RecordingState is the lifecycle state of the capture coordinator.
type RecordingState string

const (
	StateInitial RecordingState = "initial"
	StatePlaying RecordingState = "playing"
	StatePaused  RecordingState = "paused"
	StateStopped RecordingState = "stopped"
)

func (s RecordingState) String() string { return string(s) }

// Idle reports whether a new recording may be started from this state.
func (s RecordingState) Idle() bool {
	return s == StateInitial || s == StateStopped
}

// Active reports whether the microphone is held in this state.
func (s RecordingState) Active() bool {
	return s == StatePlaying || s == StatePaused
}

// Asset is the full recording so far, encoded as a single audio file.
type Asset struct {
	Data      []byte
	Name      string
	MimeType  string
	Chunks    int
	Duration  time.Duration
	CreatedAt time.Time

	// Recording identifies the capture run that produced the asset.
	Recording uint64
	// Generation is the transcript generation the asset belongs to. It is
	// stamped by the session before the asset reaches the relay.
	Generation uint64
}

// Size returns the encoded size of the asset in bytes.
func (a Asset) Size() int {
	return len(a.Data)
}
