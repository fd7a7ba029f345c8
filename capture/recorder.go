package capture

import (
	"bytes"
	"context"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voicescribe/audio"
	"github.com/mrsingh-rishi/voicescribe/model"
	"github.com/mrsingh-rishi/voicescribe/queue"
)

const (
	AssetName     = "audio.wav"
	AssetMimeType = "audio/wav"
)

var (
	ErrPermissionDenied  = errors.New("microphone access denied")
	ErrNoDevice          = errors.New("media devices not available")
	ErrInvalidTransition = errors.New("invalid recording state transition")
)

// Event is a message published by the Recorder on its Events channel.
type Event interface{ event() }

type StateEvent struct{ State model.RecordingState }

type AssetEvent struct{ Asset model.Asset }

type ErrorEvent struct{ Err error }

func (StateEvent) event() {}
func (AssetEvent) event() {}
func (ErrorEvent) event() {}

// Recorder coordinates a capture device: it owns the recording state,
// accumulates one chunk per interval and republishes the whole recording
// as a single asset every time a chunk is added.
type Recorder struct {
	device   audio.Capture
	format   audio.Format
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	state   model.RecordingState
	chunks  *queue.Queue[model.AudioChunk]
	pending []byte
	asset   *model.Asset
	runID   uint64
	open    bool
	cancel  context.CancelFunc
	done    chan struct{}

	events chan Event
}

// NewRecorder creates a recorder that slices audio from device every interval.
func NewRecorder(device audio.Capture, format audio.Format, interval time.Duration) *Recorder {
	if interval <= 0 {
		interval = time.Second
	}
	return &Recorder{
		device:   device,
		format:   format,
		interval: interval,
		now:      time.Now,
		state:    model.StateInitial,
		chunks:   queue.New[model.AudioChunk](),
		events:   make(chan Event, 64),
	}
}

// Events returns the channel the recorder publishes state changes, assets and
// errors on. Events are dropped when nobody drains it.
func (r *Recorder) Events() <-chan Event {
	return r.events
}

func (r *Recorder) State() model.RecordingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Asset returns the latest combined recording, if any.
func (r *Recorder) Asset() (model.Asset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.asset == nil {
		return model.Asset{}, false
	}
	return *r.asset, true
}

// Recording returns the id of the current capture run. Start and Reset
// begin a new run; assets carry the id of the run they came from.
func (r *Recorder) Recording() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}

// Start acquires the device and begins a fresh recording.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if !r.state.Idle() {
		state := r.state
		r.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "start from %s", state)
	}

	runCtx, cancel := context.WithCancel(ctx)
	frames, err := r.device.Start(runCtx)
	if err != nil {
		cancel()
		r.mu.Unlock()
		cause := ErrPermissionDenied
		if errors.Is(err, audio.ErrNoDevice) {
			cause = ErrNoDevice
		}
		err = errors.Wrapf(cause, "%s: %v", r.device.Name(), err)
		r.emit(ErrorEvent{Err: err})
		return err
	}

	r.chunks.Clear()
	r.pending = nil
	r.asset = nil
	r.runID++
	r.open = true
	r.cancel = cancel
	r.done = make(chan struct{})
	r.state = model.StatePlaying
	done := r.done
	r.mu.Unlock()

	log.Printf("capture: started on %s", r.device.Name())
	go r.run(runCtx, frames, done)
	r.emit(StateEvent{State: model.StatePlaying})
	return nil
}

func (r *Recorder) Pause() error {
	return r.transition(model.StatePlaying, model.StatePaused)
}

func (r *Recorder) Resume() error {
	return r.transition(model.StatePaused, model.StatePlaying)
}

func (r *Recorder) transition(from, to model.RecordingState) error {
	r.mu.Lock()
	if r.state != from {
		state := r.state
		r.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "%s from %s", to, state)
	}
	r.state = to
	r.mu.Unlock()
	r.emit(StateEvent{State: to})
	return nil
}

// Stop ends the recording, publishes the final asset and releases the device.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.state.Active() {
		state := r.state
		r.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "stop from %s", state)
	}
	r.state = model.StateStopped
	r.mu.Unlock()

	r.halt()
	r.flush()
	r.release()
	r.emit(StateEvent{State: model.StateStopped})
	return nil
}

// Reset releases the device and discards everything recorded so far.
// It is valid from any state.
func (r *Recorder) Reset() {
	r.halt()
	r.release()

	r.mu.Lock()
	discarded := r.chunks.Len()
	r.chunks.Clear()
	r.pending = nil
	r.asset = nil
	r.runID++
	r.state = model.StateInitial
	r.mu.Unlock()

	if discarded > 0 {
		log.Printf("capture: reset, discarded %d chunks", discarded)
	}

	r.emit(StateEvent{State: model.StateInitial})
}

// halt stops the capture loop and waits for it to exit.
func (r *Recorder) halt() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (r *Recorder) release() {
	r.mu.Lock()
	open := r.open
	r.open = false
	r.mu.Unlock()

	if !open {
		return
	}
	if err := r.device.Close(); err != nil {
		log.Printf("capture: close %s: %v", r.device.Name(), err)
	}
}

func (r *Recorder) run(ctx context.Context, frames <-chan audio.Frame, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				if ctx.Err() == nil {
					go r.deviceEnded()
				}
				return
			}
			r.mu.Lock()
			if r.state == model.StatePlaying {
				r.pending = append(r.pending, frame.Data...)
			}
			r.mu.Unlock()
		case <-ticker.C:
			r.flush()
		}
	}
}

// deviceEnded handles the device going away underneath an active recording.
func (r *Recorder) deviceEnded() {
	r.mu.Lock()
	if !r.state.Active() {
		r.mu.Unlock()
		return
	}
	r.state = model.StateStopped
	r.mu.Unlock()

	log.Printf("capture: %s stopped delivering audio", r.device.Name())
	r.halt()
	r.flush()
	r.release()
	r.emit(StateEvent{State: model.StateStopped})
}

// flush turns pending audio into a chunk and republishes the combined asset.
func (r *Recorder) flush() {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return
	}
	r.chunks.Enqueue(model.AudioChunk(r.pending))
	r.pending = nil

	chunks := r.chunks.Items()
	asset, err := combine(chunks, r.format, r.now())
	if err != nil {
		r.mu.Unlock()
		r.emit(ErrorEvent{Err: err})
		return
	}
	asset.Recording = r.runID
	r.asset = &asset
	r.mu.Unlock()

	log.Printf("capture: recording updated, %d chunks, %s so far", asset.Chunks, asset.Duration)
	r.emit(AssetEvent{Asset: asset})
}

func (r *Recorder) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		log.Printf("capture: event channel full, dropping %T", ev)
	}
}

func combine(chunks []model.AudioChunk, format audio.Format, now time.Time) (model.Asset, error) {
	var pcm bytes.Buffer
	for _, c := range chunks {
		pcm.Write(c)
	}
	data, err := audio.EncodeWAV(pcm.Bytes(), format)
	if err != nil {
		return model.Asset{}, errors.Wrap(err, "combine chunks")
	}
	return model.Asset{
		Data:      data,
		Name:      AssetName,
		MimeType:  AssetMimeType,
		Chunks:    len(chunks),
		Duration:  format.Duration(pcm.Len()),
		CreatedAt: now,
	}, nil
}
