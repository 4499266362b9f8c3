//go:build portaudio

package render

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PlaybackAvailable reports whether live playback was compiled in.
const PlaybackAvailable = true

// PlaybackSink plays blocks on the default output device.
type PlaybackSink struct {
	stream *portaudio.Stream
	out    []float32
}

// NewPlaybackSink opens a blocking mono stream on the default device.
func NewPlaybackSink(sampleRate, blockSize int) (*PlaybackSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("unable to set up portaudio: %w", err)
	}
	s := &PlaybackSink{out: make([]float32, blockSize)}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), blockSize, &s.out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("unable to open default output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("unable to start output stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

// WriteBlock blocks until the device accepted the samples. Short blocks are
// padded with silence.
func (s *PlaybackSink) WriteBlock(samples []float64) error {
	for i := range s.out {
		if i < len(samples) {
			s.out[i] = float32(clip(samples[i]))
		} else {
			s.out[i] = 0
		}
	}
	return s.stream.Write()
}

func (s *PlaybackSink) Close() error {
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	if err := portaudio.Terminate(); err != nil {
		return err
	}
	if stopErr != nil {
		return stopErr
	}
	return closeErr
}
