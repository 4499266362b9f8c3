package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/patchgrid/internal/app"
	"github.com/specialistvlad/patchgrid/internal/config"
	"github.com/specialistvlad/patchgrid/internal/node"
	"github.com/specialistvlad/patchgrid/internal/render"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("patchgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
PatchGrid - Compile signal-graph patches and render them to audio.

Usage:
  patchgrid [options] PATCH_PATH...

Arguments:
  PATCH_PATH
    Path to a single .twg file or a directory containing .twg files.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Optional settings file (.hcl, .yaml or .yml). Flags given explicitly take precedence.")
	outFlag := flagSet.String("out", "", "Directory for rendered WAV files. Defaults to the directory of each patch.")
	sampleRateFlag := flagSet.Int("sample-rate", 44100, "Sample rate in Hz.")
	blockSizeFlag := flagSet.Int("block-size", render.DefaultBlockSize, "Samples evaluated per block.")
	durationFlag := flagSet.Duration("duration", 2*time.Second, "Length of each render. With -play, 0 plays until interrupted.")
	bitDepthFlag := flagSet.Int("bit-depth", 16, "WAV bit depth. Options: 16, 24, 32.")
	lfoShapeFlag := flagSet.String("lfo-shape", node.DefaultShape, "LFO waveform. Options: "+strings.Join(node.ShapeNames(), ", ")+".")
	playFlag := flagSet.Bool("play", false, "Play a single patch on the default audio device instead of writing WAV files.")
	watchFlag := flagSet.Bool("watch", false, "Recompile patches when they are saved.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of patches rendered concurrently.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := flagSet.Args()
	if len(paths) == 0 {
		slog.Debug("No patch path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	cfg := app.Config{
		PatchPaths:      paths,
		OutputDir:       *outFlag,
		SampleRate:      *sampleRateFlag,
		BlockSize:       *blockSizeFlag,
		Duration:        *durationFlag,
		BitDepth:        *bitDepthFlag,
		LFOShape:        *lfoShapeFlag,
		Play:            *playFlag,
		Watch:           *watchFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       strings.ToLower(*logFormatFlag),
		LogLevel:        strings.ToLower(*logLevelFlag),
		WorkerCount:     *workersFlag,
	}

	if *configFlag != "" {
		settings, err := config.Load(context.Background(), *configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		explicit := make(map[string]bool)
		flagSet.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		if err := merge(&cfg, settings, explicit); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		slog.Debug("Settings file merged.", "path", *configFlag)
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", validated)
	return validated, false, nil
}

// merge copies every setting whose flag was not given explicitly.
func merge(cfg *app.Config, s *config.Settings, explicit map[string]bool) error {
	setInt := func(flagName string, v *int, dst *int) {
		if v != nil && !explicit[flagName] {
			*dst = *v
		}
	}
	setString := func(flagName string, v *string, dst *string) {
		if v != nil && !explicit[flagName] {
			*dst = *v
		}
	}

	setInt("sample-rate", s.SampleRate, &cfg.SampleRate)
	setInt("block-size", s.BlockSize, &cfg.BlockSize)
	setInt("bit-depth", s.BitDepth, &cfg.BitDepth)
	setInt("workers", s.Workers, &cfg.WorkerCount)
	setInt("healthcheck-port", s.HealthcheckPort, &cfg.HealthcheckPort)
	setString("lfo-shape", s.LFOShape, &cfg.LFOShape)
	setString("out", s.OutputDir, &cfg.OutputDir)
	setString("log-level", s.LogLevel, &cfg.LogLevel)
	setString("log-format", s.LogFormat, &cfg.LogFormat)

	if s.Duration != nil && !explicit["duration"] {
		d, err := time.ParseDuration(*s.Duration)
		if err != nil {
			return fmt.Errorf("invalid duration in settings file: %w", err)
		}
		cfg.Duration = d
	}
	return nil
}
