package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "eased lfo", mutate: func(c *Config) { c.LFOShape = "ease-out-bounce" }},
		{name: "play without duration", mutate: func(c *Config) { c.Play = true; c.Duration = 0 }},
		{name: "no paths", mutate: func(c *Config) { c.PatchPaths = nil }, wantErr: "at least one patch path is required"},
		{name: "empty path", mutate: func(c *Config) { c.PatchPaths = []string{""} }, wantErr: "at least one patch path is required"},
		{name: "zero sample rate", mutate: func(c *Config) { c.SampleRate = 0 }, wantErr: "invalid SampleRate 0"},
		{name: "bad bit depth", mutate: func(c *Config) { c.BitDepth = 12 }, wantErr: "invalid BitDepth 12"},
		{name: "bad shape", mutate: func(c *Config) { c.LFOShape = "wobble" }, wantErr: `invalid LFOShape "wobble"`},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid LogFormat xml"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid LogLevel trace"},
		{name: "no workers", mutate: func(c *Config) { c.WorkerCount = 0 }, wantErr: "invalid WorkerCount 0"},
		{name: "bad port", mutate: func(c *Config) { c.HealthcheckPort = 70000 }, wantErr: "invalid HealthcheckPort 70000"},
		{name: "negative duration", mutate: func(c *Config) { c.Duration = -time.Second }, wantErr: "invalid Duration"},
		{name: "zero duration for files", mutate: func(c *Config) { c.Duration = 0 }, wantErr: "duration must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := TestConfig("patches")
			tc.mutate(&cfg)
			got, err := NewConfig(cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cfg, *got)
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	var buf SafeBuffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	var text SafeBuffer
	newLogger("bogus", "text", &text).Info("fallback")
	assert.Contains(t, text.String(), "msg=fallback")
}
