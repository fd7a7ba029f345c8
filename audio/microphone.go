package audio

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

// Microphone captures from the default PortAudio input device.
// portaudio.Initialize must have been called by the program.
type Microphone struct {
	format          Format
	framesPerBuffer int
	bufferSize      int

	mu     sync.Mutex
	stream *portaudio.Stream
	out    chan Frame
}

func NewMicrophone(format Format, framesPerBuffer, bufferSize int) *Microphone {
	if framesPerBuffer <= 0 {
		framesPerBuffer = 1024
	}
	if bufferSize <= 0 {
		bufferSize = 32
	}
	return &Microphone{format: format, framesPerBuffer: framesPerBuffer, bufferSize: bufferSize}
}

func (m *Microphone) Name() string {
	device, err := portaudio.DefaultInputDevice()
	if err != nil || device == nil {
		return "default input"
	}
	return device.Name
}

func (m *Microphone) Start(ctx context.Context) (<-chan Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream != nil {
		return nil, errors.New("microphone already started")
	}

	if device, err := portaudio.DefaultInputDevice(); err != nil || device == nil {
		return nil, errors.Wrapf(ErrNoDevice, "default input device: %v", err)
	}

	out := make(chan Frame, m.bufferSize)
	stream, err := portaudio.OpenDefaultStream(m.format.Channels, 0, float64(m.format.SampleRate), m.framesPerBuffer, func(in []int16) {
		if len(in) == 0 {
			return
		}
		frame := Frame{Data: Int16SliceToBytes(in), Format: m.format, Timestamp: time.Now()}
		select {
		case out <- frame:
		default:
			// never block the real-time callback
			log.Print("audio buffer full, dropping frame")
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "open input stream")
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, errors.Wrap(err, "start input stream")
	}

	m.stream = stream
	m.out = out

	go func() {
		<-ctx.Done()
		m.closeStream(stream)
	}()
	return out, nil
}

func (m *Microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

// closeStream closes stream only if it is still the active one; a later
// Start may have replaced it.
func (m *Microphone) closeStream(stream *portaudio.Stream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream != stream {
		return
	}
	if err := m.closeLocked(); err != nil {
		log.Printf("audio: close on cancel: %v", err)
	}
}

func (m *Microphone) closeLocked() error {
	if m.stream == nil {
		return nil
	}
	stopErr := m.stream.Stop()
	closeErr := m.stream.Close()
	// callbacks have ceased once Stop returns
	close(m.out)
	m.stream = nil
	m.out = nil
	if stopErr != nil {
		return errors.Wrap(stopErr, "stop input stream")
	}
	return errors.Wrap(closeErr, "close input stream")
}
