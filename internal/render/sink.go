package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedBitDepth is returned for WAV depths other than 16, 24 or 32.
var ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

// Sink consumes rendered blocks of mono samples in [-1, 1].
type Sink interface {
	WriteBlock(samples []float64) error
	Close() error
}

// WAVSink writes mono PCM to a file.
type WAVSink struct {
	f     *os.File
	enc   *wav.Encoder
	buf   *audio.IntBuffer
	scale float64
}

// NewWAVSink creates path and prepares a PCM encoder for it.
func NewWAVSink(path string, sampleRate, bitDepth int) (*WAVSink, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %q: %w", path, err)
	}
	return &WAVSink{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, bitDepth, 1, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		scale: float64(int64(1)<<(bitDepth-1) - 1),
	}, nil
}

func (s *WAVSink) WriteBlock(samples []float64) error {
	if cap(s.buf.Data) < len(samples) {
		s.buf.Data = make([]int, len(samples))
	}
	s.buf.Data = s.buf.Data[:len(samples)]
	for i, v := range samples {
		s.buf.Data[i] = int(clip(v) * s.scale)
	}
	return s.enc.Write(s.buf)
}

// Close finalizes the WAV header and closes the file.
func (s *WAVSink) Close() error {
	encErr := s.enc.Close()
	fileErr := s.f.Close()
	return errors.Join(encErr, fileErr)
}

func clip(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
