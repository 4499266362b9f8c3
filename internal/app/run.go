package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/patchgrid/internal/ctxlog"
	"github.com/specialistvlad/patchgrid/internal/engine"
	"github.com/specialistvlad/patchgrid/internal/fsutil"
	"github.com/specialistvlad/patchgrid/internal/patch"
	"github.com/specialistvlad/patchgrid/internal/render"
	"github.com/specialistvlad/patchgrid/internal/watch"
	"golang.org/x/sync/errgroup"
)

// Run executes the main application logic based on the configuration. In
// watch or play mode it runs until ctx is cancelled, which is not an error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	} else {
		a.logger.Debug("Health check server not started: disabled")
	}

	files, err := a.discover()
	if err != nil {
		return err
	}
	a.logger.Debug("Patch files discovered.", "count", len(files))

	if a.config.OutputDir != "" {
		if err := os.MkdirAll(a.config.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if a.config.Play {
		err = a.play(ctx, files)
	} else {
		err = a.renderAll(ctx, files)
		if a.config.Watch {
			if err != nil {
				a.logger.Warn("Initial render failed; waiting for changes.", "error", err)
			}
			err = a.watchAndRender(ctx)
		}
	}
	if errors.Is(err, context.Canceled) {
		a.logger.Info("🏁 Stopped.")
		return nil
	}
	a.logger.Debug("App.Run method finished.")
	return err
}

// discover expands the configured paths into patch files.
func (a *App) discover() ([]string, error) {
	var files []string
	for _, root := range a.config.PatchPaths {
		found, err := fsutil.FindFilesByExtension(root, patch.Extension)
		if err != nil {
			return nil, fmt.Errorf("failed to find patch files in %s: %w", root, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s patch files found in %s", patch.Extension, strings.Join(a.config.PatchPaths, ", "))
	}
	return files, nil
}

// renderAll renders every patch to a WAV file, WorkerCount at a time. Each
// patch is independent, so one failure does not stop the others.
func (a *App) renderAll(ctx context.Context, files []string) error {
	a.logger.Info("🚀 Rendering patches...", "count", len(files), "workers", a.config.WorkerCount)

	var g errgroup.Group
	g.SetLimit(a.config.WorkerCount)
	errs := make([]error, len(files))
	for i, path := range files {
		g.Go(func() error {
			errs[i] = a.renderFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.Info("🏁 Rendering finished.")
	return nil
}

// watchAndRender re-renders patches as they are saved.
func (a *App) watchAndRender(ctx context.Context) error {
	w, err := watch.New(a.config.PatchPaths, func(ctx context.Context, paths []string) {
		for _, path := range paths {
			if err := a.renderFile(ctx, path); err != nil {
				a.logger.Warn("Re-render failed; keeping previous output.", "patch", path, "error", err)
			}
		}
	}, watch.Options{Extension: patch.Extension})
	if err != nil {
		return err
	}
	defer w.Close()

	a.logger.Info("👀 Watching for changes...", "paths", a.config.PatchPaths)
	return w.Run(ctx)
}

// play streams a single patch to the sound card. With Watch set, saving the
// patch swaps the new graph in at the next block; a patch that fails to
// compile leaves the old one playing.
func (a *App) play(ctx context.Context, files []string) error {
	if len(files) != 1 {
		return fmt.Errorf("playback needs exactly one patch, found %d", len(files))
	}
	path := files[0]
	ctx = withSession(ctx, path)

	g, err := a.compilePatch(ctx, path)
	if err != nil {
		return err
	}
	sink, err := render.NewPlaybackSink(a.config.SampleRate, a.config.BlockSize)
	if err != nil {
		return err
	}
	defer sink.Close()

	var src render.Source = render.Fixed(engine.New(g))
	if a.config.Watch {
		hot := render.NewHot(g)
		src = hot
		w, err := watch.New([]string{path}, func(ctx context.Context, _ []string) {
			if g, err := a.compilePatch(ctx, path); err == nil {
				hot.Swap(g)
				ctxlog.FromContext(ctx).Info("🔁 Patch reloaded.", "reloads", hot.Swaps())
			}
		}, watch.Options{Extension: patch.Extension})
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("Watcher stopped.", "error", err)
			}
		}()
		return a.playLoop(ctx, src, sink)
	}
	return a.playLoop(ctx, src, sink)
}

func (a *App) playLoop(ctx context.Context, src render.Source, sink render.Sink) error {
	a.logger.Info("🔊 Playing...", "sample_rate", a.config.SampleRate, "duration", a.config.Duration)
	_, err := render.Run(ctx, src, sink, render.Options{
		BlockSize: a.config.BlockSize,
		Samples:   a.sampleCount(),
		Metrics:   a.metrics,
	})
	return err
}
