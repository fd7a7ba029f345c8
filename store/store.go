package store

import (
	"sync"

	"github.com/mrsingh-rishi/voicescribe/model"
)

// Snapshot is a consistent copy of the store's fields.
type Snapshot struct {
	State        model.RecordingState
	Transcript   string
	Transcribing bool
	Generation   uint64
	Asset        *model.Asset
}

// Store is the UI state container. It is owned by the application shell and
// safe for concurrent use. State, generation and asset are written only by
// the session under its own lock; the in-flight counter only by the relay.
type Store struct {
	mu         sync.Mutex
	state      model.RecordingState
	transcript string
	inFlight   int
	generation uint64
	asset      *model.Asset

	nextID int
	subs   map[int]chan Snapshot
}

func New() *Store {
	return &Store{
		state: model.StateInitial,
		subs:  make(map[int]chan Snapshot),
	}
}

func (s *Store) State() model.RecordingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) SetState(state model.RecordingState) {
	s.update(func() bool {
		if s.state == state {
			return false
		}
		s.state = state
		return true
	})
}

func (s *Store) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// SetTranscript replaces the transcript.
func (s *Store) SetTranscript(text string) {
	s.update(func() bool {
		s.transcript = text
		return true
	})
}

// ApplyTranscript replaces the transcript only if generation is still current.
// It reports whether the text was applied.
func (s *Store) ApplyTranscript(generation uint64, text string) bool {
	applied := false
	s.update(func() bool {
		if generation != s.generation {
			return false
		}
		s.transcript = text
		applied = true
		return true
	})
	return applied
}

func (s *Store) ClearTranscript() {
	s.SetTranscript("")
}

// Transcribing reports whether a transcription request is in flight.
func (s *Store) Transcribing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

func (s *Store) BeginTranscription() {
	s.update(func() bool {
		s.inFlight++
		return s.inFlight == 1
	})
}

func (s *Store) EndTranscription() {
	s.update(func() bool {
		if s.inFlight == 0 {
			return false
		}
		s.inFlight--
		return s.inFlight == 0
	})
}

func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// NextGeneration starts a new recording session; responses to requests sent
// in earlier generations are no longer applied.
func (s *Store) NextGeneration() uint64 {
	var gen uint64
	s.update(func() bool {
		s.generation++
		gen = s.generation
		return true
	})
	return gen
}

func (s *Store) Asset() (model.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.asset == nil {
		return model.Asset{}, false
	}
	return *s.asset, true
}

func (s *Store) SetAsset(a model.Asset) {
	s.update(func() bool {
		s.asset = &a
		return true
	})
}

func (s *Store) ClearAsset() {
	s.update(func() bool {
		if s.asset == nil {
			return false
		}
		s.asset = nil
		return true
	})
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives the latest snapshot after every
// change, and a function that cancels the subscription. Slow subscribers only
// ever see the most recent snapshot.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Store) update(fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn() {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        s.state,
		Transcript:   s.transcript,
		Transcribing: s.inFlight > 0,
		Generation:   s.generation,
	}
	if s.asset != nil {
		a := *s.asset
		snap.Asset = &a
	}
	return snap
}
