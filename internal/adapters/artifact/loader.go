package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/okian/cropyield/internal/domain/prediction"
	"github.com/okian/cropyield/pkg/logger"
)

// Format is the serialization of an artifact file.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidArtifact, filepath.Ext(path))
	}
}

// Load reads and validates the artifact at path.
func Load(path string) (*Pipeline, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return Decode(data, format)
}

// Decode parses an artifact into a generic map and decodes it into a Pipeline.
func Decode(data []byte, format Format) (*Pipeline, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidArtifact, format)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidArtifact)
	}

	p := &Pipeline{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewLoader returns a prediction.Loader that reads the artifact at path.
func NewLoader(path string) prediction.Loader {
	log := logger.Named("artifact")
	return func(ctx context.Context) (prediction.Predictor, error) {
		log.Debug(ctx, "loading model artifact", logger.String("path", path))
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "model artifact decoded",
			logger.String("path", path),
			logger.String("pipeline", p.Name()),
			logger.Int("categoricalColumns", len(p.Categorical)),
			logger.Int("numericColumns", len(p.Numeric)),
		)
		return p, nil
	}
}
