package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"patches", "more.twg"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, []string{"patches", "more.twg"}, cfg.PatchPaths)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 1024, cfg.BlockSize)
	assert.Equal(t, 2*time.Second, cfg.Duration)
	assert.Equal(t, 16, cfg.BitDepth)
	assert.Equal(t, "sine", cfg.LFOShape)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.False(t, cfg.Play)
	assert.False(t, cfg.Watch)
}

func TestParse_Flags(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{
		"-sample-rate", "48000", "-duration", "250ms", "-lfo-shape", "ease-in-quad",
		"-log-format", "TEXT", "-watch", "-out", "renders", "p.twg",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 250*time.Millisecond, cfg.Duration)
	assert.Equal(t, "ease-in-quad", cfg.LFOShape)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "renders", cfg.OutputDir)
}

func TestParse_ExitCases(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"-h"}, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})
	t.Run("no paths prints usage", func(t *testing.T) {
		var out bytes.Buffer
		_, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Contains(t, out.String(), "PATCH_PATH")
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"-bogus", "p.twg"}, "flag provided but not defined"},
		{"bad log format", []string{"-log-format", "xml", "p.twg"}, "invalid LogFormat"},
		{"bad shape", []string{"-lfo-shape", "wobble", "p.twg"}, "invalid LFOShape"},
		{"bad bit depth", []string{"-bit-depth", "8", "p.twg"}, "invalid BitDepth"},
		{"zero duration", []string{"-duration", "0s", "p.twg"}, "duration must be positive"},
		{"missing settings file", []string{"-config", "nope.yaml", "p.twg"}, "nope.yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(tc.args, &out)
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestParse_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "patchgrid.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`
sample_rate: 22050
duration: 1s
workers: 8
lfo_shape: triangle
`), 0o600))

	var out bytes.Buffer
	cfg, _, err := Parse([]string{"-config", settings, "-workers", "2", "p.twg"}, &out)
	require.NoError(t, err)

	assert.Equal(t, 22050, cfg.SampleRate)
	assert.Equal(t, time.Second, cfg.Duration)
	assert.Equal(t, "triangle", cfg.LFOShape)
	// Explicit flags win over the file.
	assert.Equal(t, 2, cfg.WorkerCount)
}

func TestParse_SettingsFileBadDuration(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "patchgrid.hcl")
	require.NoError(t, os.WriteFile(settings, []byte(`duration = "forever"`), 0o600))

	var out bytes.Buffer
	_, _, err := Parse([]string{"-config", settings, "p.twg"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration in settings file")
}
