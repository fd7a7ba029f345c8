package workers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/voicescribe/model"
	"github.com/mrsingh-rishi/voicescribe/store"
	"github.com/mrsingh-rishi/voicescribe/stt"
)

const (
	DefaultMinInterval   = 4 * time.Second
	DefaultMinSize       = 500
	DefaultDispatchDelay = 100 * time.Millisecond
)

// TranscriptionWorker relays captured assets to a transcriber and applies the
// result to the store. Sends are rate limited by a timestamp check; assets
// that arrive inside the interval are skipped, not queued.
type TranscriptionWorker struct {
	ctx    context.Context
	cancel context.CancelFunc

	Transcriber   stt.Transcriber
	Store         *store.Store
	InputChannel  chan model.Asset
	MinInterval   time.Duration
	MinSize       int
	DispatchDelay time.Duration

	now      func() time.Time
	mu       sync.Mutex
	lastSend time.Time
	inflight sync.WaitGroup
}

func NewTranscriptionWorker(transcriber stt.Transcriber, st *store.Store) (*TranscriptionWorker, error) {
	if transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TranscriptionWorker{
		ctx:           ctx,
		cancel:        cancel,
		Transcriber:   transcriber,
		Store:         st,
		InputChannel:  make(chan model.Asset, 8),
		MinInterval:   DefaultMinInterval,
		MinSize:       DefaultMinSize,
		DispatchDelay: DefaultDispatchDelay,
		now:           time.Now,
	}, nil
}

// Start consumes InputChannel until Stop is called.
func (tw *TranscriptionWorker) Start() {
	go func() {
		for {
			select {
			case <-tw.ctx.Done():
				return
			case asset, ok := <-tw.InputChannel:
				if !ok {
					return
				}
				tw.Submit(asset)
			}
		}
	}()
}

// Submit applies the rate limit and, if the asset passes, dispatches it.
// It reports whether a send was scheduled.
func (tw *TranscriptionWorker) Submit(asset model.Asset) bool {
	snap := tw.Store.Snapshot()
	if snap.State != model.StatePlaying {
		return false
	}
	if asset.Generation != snap.Generation {
		log.Printf("relay: dropping asset from generation %d, current is %d", asset.Generation, snap.Generation)
		return false
	}

	now := tw.now()
	tw.mu.Lock()
	since := now.Sub(tw.lastSend)
	if !tw.lastSend.IsZero() && since < tw.MinInterval {
		tw.mu.Unlock()
		return false
	}
	tw.lastSend = now
	tw.mu.Unlock()

	log.Printf("relay: scheduled send, %d bytes, %s since last", asset.Size(), since.Round(time.Millisecond))
	tw.inflight.Add(1)
	go tw.dispatch(asset, asset.Generation)
	return true
}

func (tw *TranscriptionWorker) dispatch(asset model.Asset, generation uint64) {
	defer tw.inflight.Done()

	if tw.DispatchDelay > 0 {
		timer := time.NewTimer(tw.DispatchDelay)
		select {
		case <-tw.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	// capture may have been paused or stopped during the delay
	if tw.Store.State() != model.StatePlaying {
		return
	}
	if asset.Size() < tw.MinSize {
		log.Printf("relay: file too small, %d bytes", asset.Size())
		return
	}

	upload := stt.NewUpload(asset)
	tw.Store.BeginTranscription()
	defer tw.Store.EndTranscription()

	// in-flight requests outlive Stop; only future sends are halted
	resp, err := tw.Transcriber.Transcribe(context.WithoutCancel(tw.ctx), upload)
	if err != nil {
		var se *stt.StatusError
		if errors.As(err, &se) {
			log.Printf("relay: api error status=%d body=%s", se.StatusCode, se.Body)
		} else {
			log.Printf("relay: transcription error: %v", err)
		}
		return
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return
	}
	if !tw.Store.ApplyTranscript(generation, text) {
		log.Printf("relay: discarding response from generation %d", generation)
	}
}

// Wait blocks until every dispatched send has finished.
func (tw *TranscriptionWorker) Wait() {
	tw.inflight.Wait()
}

// Stop halts the worker; requests already sent are left to complete.
func (tw *TranscriptionWorker) Stop() {
	tw.cancel()
}
