// Package render drives an engine block by block and hands the samples to a
// Sink: a WAV file, or the sound card when built with the portaudio tag.
package render
