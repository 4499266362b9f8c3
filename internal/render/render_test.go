package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/patchgrid/internal/compiler"
	"github.com/specialistvlad/patchgrid/internal/engine"
	"github.com/specialistvlad/patchgrid/internal/graph"
	"github.com/specialistvlad/patchgrid/internal/metrics"
	"github.com/specialistvlad/patchgrid/internal/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	blocks  [][]float64
	onBlock func(n int)
	closed  bool
}

func (s *captureSink) WriteBlock(samples []float64) error {
	s.blocks = append(s.blocks, append([]float64(nil), samples...))
	if s.onBlock != nil {
		s.onBlock(len(s.blocks))
	}
	return nil
}

func (s *captureSink) Close() error {
	s.closed = true
	return nil
}

func (s *captureSink) samples() []float64 {
	var out []float64
	for _, b := range s.blocks {
		out = append(out, b...)
	}
	return out
}

func mustCompile(t *testing.T, src string, sampleRate float64) *graph.Graph {
	t.Helper()
	prog, diags := patch.Parse([]byte(src), "render.twg")
	require.False(t, diags.HasErrors(), diags.Error())
	g, err := compiler.Compile(context.Background(), prog, compiler.Options{SampleRate: sampleRate})
	require.NoError(t, err)
	return g
}

func TestRun_BlocksAndRemainder(t *testing.T) {
	g := mustCompile(t, "Output(Saw(100, 1))", 1000)
	sink := &captureSink{}
	m := metrics.New(prometheus.NewRegistry())

	n, err := Run(context.Background(), Fixed(engine.New(g)), sink, Options{BlockSize: 4, Samples: 10, Metrics: m})
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	require.Len(t, sink.blocks, 3)
	assert.Len(t, sink.blocks[0], 4)
	assert.Len(t, sink.blocks[2], 2)

	// One continuous sweep across block boundaries.
	ref := engine.New(mustCompile(t, "Output(Saw(100, 1))", 1000))
	want, err := ref.RenderBlock(10)
	require.NoError(t, err)
	assert.Equal(t, want, sink.samples())

	assert.Equal(t, 10.0, testutil.ToFloat64(m.SamplesRendered))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestRun_FailedBlockIsDiscarded(t *testing.T) {
	g := mustCompile(t, "l = LFO(1)\nOutput(Map(1, 0, Mul(l, 1), 0, 1))", 4)
	sink := &captureSink{}
	m := metrics.New(prometheus.NewRegistry())

	n, err := Run(context.Background(), Fixed(engine.New(g)), sink, Options{BlockSize: 2, Samples: 8, Metrics: m})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrDivisionByZero)
	assert.Equal(t, 2, n)
	assert.Len(t, sink.blocks, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderErrorsTotal.WithLabelValues("division_by_zero")))
}

func TestRun_StopsOnCancel(t *testing.T) {
	g := mustCompile(t, "Output(LFO(3))", 8000)
	ctx, cancel := context.WithCancel(context.Background())
	sink := &captureSink{onBlock: func(n int) {
		if n == 3 {
			cancel()
		}
	}}

	n, err := Run(ctx, Fixed(engine.New(g)), sink, Options{BlockSize: 16})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 48, n)
}

func TestRun_InvalidOptions(t *testing.T) {
	g := mustCompile(t, "Output(0)", 100)
	_, err := Run(context.Background(), Fixed(engine.New(g)), &captureSink{}, Options{BlockSize: 0, Samples: 1})
	assert.ErrorIs(t, err, engine.ErrInvalidBlockSize)

	_, err = Run(context.Background(), Fixed(engine.New(g)), &captureSink{}, Options{BlockSize: 1, Samples: -1})
	assert.Error(t, err)
}

func TestHot_SwapAtBlockBoundary(t *testing.T) {
	hot := NewHot(mustCompile(t, "Output(0.25)", 100))
	replacement := mustCompile(t, "Output(-0.5)", 100)
	sink := &captureSink{onBlock: func(n int) {
		if n == 1 {
			hot.Swap(replacement)
		}
	}}

	_, err := Run(context.Background(), hot, sink, Options{BlockSize: 3, Samples: 6})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.25, 0.25}, sink.blocks[0])
	assert.Equal(t, []float64{-0.5, -0.5, -0.5}, sink.blocks[1])
	assert.Equal(t, uint64(1), hot.Swaps())
	assert.Equal(t, uint64(3), hot.Engine().Tick())
}

func TestWAVSink_WritesPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	sink, err := NewWAVSink(path, 8000, 16)
	require.NoError(t, err)

	require.NoError(t, sink.WriteBlock([]float64{0, 0.5, -0.5}))
	require.NoError(t, sink.WriteBlock([]float64{1, -1, 3}))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, uint32(8000), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, []int{0, 16383, -16383, 32767, -32767, 32767}, buf.Data)
}

func TestWAVSink_RejectsBitDepth(t *testing.T) {
	_, err := NewWAVSink(filepath.Join(t.TempDir(), "x.wav"), 8000, 12)
	assert.ErrorIs(t, err, ErrUnsupportedBitDepth)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "division_by_zero", ErrorKind(&engine.RuntimeError{Err: engine.ErrDivisionByZero}))
	assert.Equal(t, "non_finite_value", ErrorKind(&engine.RuntimeError{Err: engine.ErrNonFiniteValue}))
	assert.Equal(t, "other", ErrorKind(os.ErrClosed))
}
