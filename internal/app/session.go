package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/patchgrid/internal/compiler"
	"github.com/specialistvlad/patchgrid/internal/ctxlog"
	"github.com/specialistvlad/patchgrid/internal/engine"
	"github.com/specialistvlad/patchgrid/internal/graph"
	"github.com/specialistvlad/patchgrid/internal/patch"
	"github.com/specialistvlad/patchgrid/internal/render"
)

// withSession tags every log line of one patch's render with a short id.
func withSession(ctx context.Context, path string) context.Context {
	return ctxlog.With(ctx, "session_id", uuid.NewString()[:8], "patch", path)
}

// compilePatch loads and compiles one patch. Parse and compile failures are
// printed as diagnostics before being returned.
func (a *App) compilePatch(ctx context.Context, path string) (*graph.Graph, error) {
	prog, err := patch.LoadFile(ctx, path)
	if err != nil {
		a.metrics.ObserveCompile(err)
		a.report(ctx, err, nil)
		return nil, err
	}

	g, err := compiler.Compile(ctx, prog, compiler.Options{
		SampleRate: float64(a.config.SampleRate),
		LFOShape:   a.config.LFOShape,
	})
	a.metrics.ObserveCompile(err)
	if err != nil {
		a.report(ctx, err, prog)
		return nil, err
	}
	if excluded := g.Excluded(); len(excluded) > 0 {
		ctxlog.FromContext(ctx).Info("Nodes not connected to Output will not be evaluated.", "count", len(excluded))
	}
	return g, nil
}

// report prints err as HCL-style diagnostics when it carries a source
// location, and logs it otherwise.
func (a *App) report(ctx context.Context, err error, prog *patch.Program) {
	var (
		srcErr     *patch.SourceError
		compileErr *compiler.Error
	)
	a.outMu.Lock()
	defer a.outMu.Unlock()

	switch {
	case errors.As(err, &srcErr):
		if werr := patch.WriteDiagnostics(a.outW, srcErr.Filename, srcErr.Source, srcErr.Diags); werr == nil {
			return
		}
	case errors.As(err, &compileErr) && prog != nil:
		diags := hcl.Diagnostics{compileErr.Diagnostic()}
		if werr := patch.WriteDiagnostics(a.outW, prog.Filename, prog.Source, diags); werr == nil {
			return
		}
	}
	ctxlog.FromContext(ctx).Error("Patch failed.", "error", err)
}

// sampleCount converts the configured duration to whole samples.
func (a *App) sampleCount() int {
	return int(math.Round(a.config.Duration.Seconds() * float64(a.config.SampleRate)))
}

// outputPath places the WAV for a patch in OutputDir, or next to the patch.
func (a *App) outputPath(patchPath string) string {
	name := strings.TrimSuffix(filepath.Base(patchPath), filepath.Ext(patchPath)) + ".wav"
	if a.config.OutputDir != "" {
		return filepath.Join(a.config.OutputDir, name)
	}
	return filepath.Join(filepath.Dir(patchPath), name)
}

// renderFile compiles path and renders the configured duration to a WAV
// file. Samples go to a temporary file next to the output that replaces it
// only once the render succeeds, so a failed render keeps the previous WAV.
func (a *App) renderFile(ctx context.Context, path string) error {
	ctx = withSession(ctx, path)
	logger := ctxlog.FromContext(ctx)

	g, err := a.compilePatch(ctx, path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := a.outputPath(path)
	tmp := out + "." + uuid.NewString()[:8] + ".tmp"
	sink, err := render.NewWAVSink(tmp, a.config.SampleRate, a.config.BitDepth)
	if err != nil {
		return err
	}
	n, err := render.Run(ctx, render.Fixed(engine.New(g)), sink, render.Options{
		BlockSize: a.config.BlockSize,
		Samples:   a.sampleCount(),
		Metrics:   a.metrics,
	})
	closeErr := sink.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, out)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%s: render failed after %d samples: %w", path, n, err)
	}

	logger.Info("✅ Rendered patch.", "output", out, "samples", n)
	return nil
}
