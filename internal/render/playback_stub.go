//go:build !portaudio

package render

import "errors"

// PlaybackAvailable reports whether live playback was compiled in.
const PlaybackAvailable = false

// ErrPlaybackUnavailable is returned when the binary lacks the portaudio tag.
var ErrPlaybackUnavailable = errors.New("live playback requires a build with -tags portaudio")

// PlaybackSink is unavailable in this build.
type PlaybackSink struct{}

func NewPlaybackSink(sampleRate, blockSize int) (*PlaybackSink, error) {
	return nil, ErrPlaybackUnavailable
}

func (*PlaybackSink) WriteBlock([]float64) error { return ErrPlaybackUnavailable }

func (*PlaybackSink) Close() error { return nil }
