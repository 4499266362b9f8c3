package app

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// TestConfig returns a valid configuration rendering path for a short
// duration at a low sample rate.
func TestConfig(paths ...string) Config {
	return Config{
		PatchPaths:  paths,
		SampleRate:  8000,
		BlockSize:   256,
		Duration:    100 * time.Millisecond,
		BitDepth:    16,
		LogFormat:   "text",
		LogLevel:    "debug",
		WorkerCount: 2,
	}
}

// WritePatches writes each name/source pair into a fresh directory.
func WritePatches(t *testing.T, patches map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range patches {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
			t.Fatalf("failed to write patch %s: %v", name, err)
		}
	}
	return dir
}

// SetupAppTest creates a new app instance for system testing.
func SetupAppTest(t *testing.T, cfg Config) (*App, *SafeBuffer) {
	t.Helper()

	valid, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	logBuffer := &SafeBuffer{}
	testApp := NewApp(logBuffer, valid)

	t.Cleanup(func() {
		if os.Getenv("PATCHGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
