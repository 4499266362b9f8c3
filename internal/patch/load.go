package patch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/patchgrid/internal/ctxlog"
)

// Extension is the file suffix used for patch files.
const Extension = ".twg"

// SourceError is returned by LoadFile when a patch fails to parse. It keeps
// the source so the diagnostics can be rendered with context.
type SourceError struct {
	Filename string
	Source   []byte
	Diags    hcl.Diagnostics
}

func (e *SourceError) Error() string {
	return e.Diags.Error()
}

// LoadFile reads and parses a single patch file.
func LoadFile(ctx context.Context, path string) (*Program, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Reading patch file.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch %q: %w", path, err)
	}

	prog, diags := Parse(src, path)
	if diags.HasErrors() {
		return nil, &SourceError{Filename: path, Source: src, Diags: diags}
	}
	logger.Debug("Patch parsed.", "path", path, "statements", len(prog.Statements))
	return prog, nil
}

// WriteDiagnostics renders diags against src in the same format HCL tools
// use, including a snippet of the offending line.
func WriteDiagnostics(w io.Writer, filename string, src []byte, diags hcl.Diagnostics) error {
	files := map[string]*hcl.File{filename: {Bytes: src}}
	return hcl.NewDiagnosticTextWriter(w, files, 78, false).WriteDiagnostics(diags)
}
