package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/patchgrid/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for settings files with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported settings format")

// Loader is the interface for a format-specific settings loader.
type Loader interface {
	Load(ctx context.Context, path string) (*Settings, error)
}

// LoaderFor picks a Loader from the extension of path.
func LoaderFor(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hclLoader{}, nil
	case ".yaml", ".yml":
		return yamlLoader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected .hcl, .yaml or .yml)", ErrUnsupportedFormat, path)
	}
}

// Load reads the settings file at path.
func Load(ctx context.Context, path string) (*Settings, error) {
	loader, err := LoaderFor(path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Loading settings file.", "path", path)
	return loader.Load(ctx, path)
}

type hclLoader struct{}

func (hclLoader) Load(_ context.Context, path string) (*Settings, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}
	var s Settings
	if diags := gohcl.DecodeBody(file.Body, nil, &s); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}
	return &s, nil
}

type yamlLoader struct{}

func (yamlLoader) Load(_ context.Context, path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, err)
	}
	return &s, nil
}
