package patch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/patchgrid/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok"+Extension)
	require.NoError(t, os.WriteFile(path, []byte("Output(Saw(220, 0.5))\n"), 0600))

	prog, err := LoadFile(testContext(), path)
	require.NoError(t, err)
	assert.Equal(t, path, prog.Filename)
	assert.Len(t, prog.Statements, 1)
}

func TestLoadFile_SyntaxErrorKeepsSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad"+Extension)
	src := []byte("osc = Saw(220,\n")
	require.NoError(t, os.WriteFile(path, src, 0600))

	_, err := LoadFile(testContext(), path)
	require.Error(t, err)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, src, srcErr.Source)

	var out bytes.Buffer
	require.NoError(t, WriteDiagnostics(&out, srcErr.Filename, srcErr.Source, srcErr.Diags))
	assert.Contains(t, out.String(), "Unexpected end of patch")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(testContext(), filepath.Join(t.TempDir(), "nope.twg"))
	assert.ErrorContains(t, err, "failed to read patch")
}
