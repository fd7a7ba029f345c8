package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voicescribe/capture"
	"github.com/mrsingh-rishi/voicescribe/model"
	"github.com/mrsingh-rishi/voicescribe/output"
	"github.com/mrsingh-rishi/voicescribe/store"
	"github.com/mrsingh-rishi/voicescribe/workers"
)

// ErrBusy is returned by Reset while a transcription request is in flight.
var ErrBusy = errors.New("transcription in progress")

// Session is the application shell: it owns the recorder, the relay worker
// and the state container, and turns user intents into calls on them.
type Session struct {
	ID        uuid.UUID
	Recorder  *capture.Recorder
	Worker    *workers.TranscriptionWorker
	Store     *store.Store
	Notifier  *output.Notifier
	Clipboard output.Clipboard
	OutDir    string

	// mu serializes intents and every write of recorder-derived store fields
	mu     sync.Mutex
	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewSession(recorder *capture.Recorder, worker *workers.TranscriptionWorker, st *store.Store, notifier *output.Notifier, clip output.Clipboard, outDir string) (*Session, error) {
	if recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if worker == nil {
		return nil, fmt.Errorf("transcription worker is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if clip == nil {
		clip = output.SystemClipboard{}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "generate session id")
	}
	return &Session{
		ID:        id,
		Recorder:  recorder,
		Worker:    worker,
		Store:     st,
		Notifier:  notifier,
		Clipboard: clip,
		OutDir:    outDir,
		now:       time.Now,
	}, nil
}

// Start runs the relay worker and the event loop until ctx ends or Close is called.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.Worker.Start()
	go s.loop(ctx)
	log.Printf("session %s started", s.ID)
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.Recorder.Events():
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev capture.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case capture.StateEvent:
		// the recorder is the source of truth; events may be stale by now
		s.Store.SetState(s.Recorder.State())
	case capture.AssetEvent:
		asset := ev.Asset
		if asset.Recording != s.Recorder.Recording() {
			log.Printf("session %s: dropping asset from recording %d", s.ID, asset.Recording)
			return
		}
		if cur, ok := s.Recorder.Asset(); ok {
			s.Store.SetAsset(cur)
		}
		asset.Generation = s.Store.Generation()
		select {
		case s.Worker.InputChannel <- asset:
		default:
			log.Printf("session %s: relay busy, skipping asset of %d bytes", s.ID, asset.Size())
		}
	case capture.ErrorEvent:
		log.Printf("session %s: capture error: %v", s.ID, ev.Err)
	}
}

// Toggle is the main control: start when idle, pause while playing,
// resume while paused.
func (s *Session) Toggle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch state := s.Recorder.State(); state {
	case model.StateInitial, model.StateStopped:
		s.Store.ClearTranscript()
		s.Store.ClearAsset()
		s.Store.NextGeneration()
		if err := s.Recorder.Start(ctx); err != nil {
			switch errors.Cause(err) {
			case capture.ErrNoDevice:
				s.Notifier.Error("Media devices not available", "No audio input device was found.")
			case capture.ErrPermissionDenied:
				s.Notifier.Error("Microphone access denied", "Please allow microphone access to use this feature.")
			}
			return err
		}
	case model.StatePlaying:
		if err := s.Recorder.Pause(); err != nil {
			return err
		}
	case model.StatePaused:
		if err := s.Recorder.Resume(); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown recording state %q", state)
	}
	s.Store.SetState(s.Recorder.State())
	return nil
}

// Stop ends the recording. It is allowed while a transcription is in flight.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Recorder.Stop(); err != nil {
		return err
	}
	s.Store.SetState(s.Recorder.State())
	return nil
}

// Reset discards the recording and transcript unless a request is in flight.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Store.Transcribing() {
		s.Notifier.Warning("Cannot reset while processing audio.", "")
		return ErrBusy
	}
	s.Recorder.Reset()
	s.Store.ClearTranscript()
	s.Store.ClearAsset()
	s.Store.NextGeneration()
	s.Store.SetState(s.Recorder.State())
	s.Notifier.Success("Cleared", "Recording and transcription reset.")
	return nil
}

// Copy puts the transcript on the clipboard.
func (s *Session) Copy() error {
	text := s.Store.Transcript()
	if text == "" {
		s.Notifier.Info("Nothing to copy.", "")
		return nil
	}
	if err := s.Clipboard.WriteAll(text); err != nil {
		s.Notifier.Error("Copy Failed", "Could not copy.")
		return errors.Wrap(err, "copy transcript")
	}
	s.Notifier.Success("Copied!", "Transcription copied.")
	return nil
}

// Download saves the latest recording into dir and returns its path.
// An empty dir means OutDir.
func (s *Session) Download(dir string) (string, error) {
	if dir == "" {
		dir = s.OutDir
	}
	asset, ok := s.Store.Asset()
	if !ok {
		s.Notifier.Error("Download Failed", "No audio data available.")
		return "", errors.New("no audio data available")
	}
	path, err := output.SaveRecording(dir, asset, s.now())
	if err != nil {
		s.Notifier.Error("Download Failed", err.Error())
		return "", err
	}
	s.Notifier.Info("Download Started", "Audio saved to "+path)
	return path, nil
}

// Close stops the worker and the event loop and releases the microphone.
func (s *Session) Close() {
	s.once.Do(func() {
		s.Worker.Stop()
		s.mu.Lock()
		if s.Recorder.State().Active() {
			if err := s.Recorder.Stop(); err != nil {
				log.Printf("session %s: stop recorder: %v", s.ID, err)
			}
		}
		s.mu.Unlock()
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
		log.Printf("session %s closed", s.ID)
	})
}
