package audio

import (
	"encoding/binary"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const (
	wavHeaderSize = 44
	bitDepth      = 16
	pcmFormat     = 1
)

// Int16SliceToBytes converts samples to little-endian bytes.
func Int16SliceToBytes(data []int16) []byte {
	bytes := make([]byte, len(data)*2)
	for i, v := range data {
		bytes[i*2] = byte(v)
		bytes[i*2+1] = byte(v >> 8)
	}
	return bytes
}

// EncodeWAV wraps 16-bit little-endian PCM in a RIFF/WAVE container.
func EncodeWAV(pcm []byte, f Format) ([]byte, error) {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}

	out := &memFile{buf: make([]byte, 0, wavHeaderSize+len(pcm))}
	enc := wav.NewEncoder(out, f.SampleRate, bitDepth, f.Channels, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return nil, errors.Wrap(err, "encode wav")
	}
	// Close seeks back and patches the chunk sizes
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "finish wav")
	}
	return out.buf, nil
}

// memFile is an in-memory io.WriteSeeker for the wav encoder.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.buf) {
		m.buf = append(m.buf[:m.pos], p...)
	} else {
		copy(m.buf[m.pos:], p)
	}
	m.pos += len(p)
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.Errorf("invalid whence %d", whence)
	}
	if abs < 0 || abs > int64(len(m.buf)) {
		return 0, errors.Errorf("seek to %d out of range", abs)
	}
	m.pos = int(abs)
	return abs, nil
}
