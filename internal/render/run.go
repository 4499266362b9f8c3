package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/patchgrid/internal/ctxlog"
	"github.com/specialistvlad/patchgrid/internal/engine"
	"github.com/specialistvlad/patchgrid/internal/metrics"
)

// DefaultBlockSize matches a typical audio callback buffer.
const DefaultBlockSize = 1024

// Options controls a render loop.
type Options struct {
	// BlockSize is the number of samples evaluated per block.
	BlockSize int
	// Samples is the total to render. Zero renders until ctx is done.
	Samples int
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Run renders blocks from src into sink until opts.Samples have been written,
// ctx is done, or evaluation fails. A block that fails part-way is discarded,
// so the sink only ever sees complete blocks. It returns the number of
// samples written.
func Run(ctx context.Context, src Source, sink Sink, opts Options) (int, error) {
	logger := ctxlog.FromContext(ctx)
	if opts.BlockSize <= 0 {
		return 0, engine.ErrInvalidBlockSize
	}
	if opts.Samples < 0 {
		return 0, fmt.Errorf("sample count must not be negative, got %d", opts.Samples)
	}

	opts.Metrics.SessionStarted()
	defer opts.Metrics.SessionFinished()

	buf := make([]float64, opts.BlockSize)
	written := 0
	blocks := 0
	for opts.Samples == 0 || written < opts.Samples {
		if err := ctx.Err(); err != nil {
			logger.Debug("Render: Context done, stopping.", "written", written)
			return written, err
		}

		n := opts.BlockSize
		if opts.Samples > 0 {
			n = min(n, opts.Samples-written)
		}
		block := buf[:n]

		e := src.Engine()
		start := time.Now()
		if _, err := e.Render(block); err != nil {
			opts.Metrics.ObserveRenderError(ErrorKind(err))
			logger.Error("Render: Evaluation failed, block discarded.", "block", blocks, "error", err)
			return written, err
		}
		elapsed := time.Since(start)

		if err := sink.WriteBlock(block); err != nil {
			opts.Metrics.ObserveRenderError("sink")
			return written, fmt.Errorf("failed to write block %d: %w", blocks, err)
		}
		opts.Metrics.ObserveBlock(n, elapsed)
		written += n
		blocks++
	}
	logger.Debug("Render: Finished.", "written", written, "blocks", blocks)
	return written, nil
}

// ErrorKind maps an evaluation error to a short metrics label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, engine.ErrNonFiniteValue):
		return "non_finite_value"
	default:
		return "other"
	}
}
