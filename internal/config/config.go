// Package config defines service configuration and its loading hooks.
package config

import (
	"fmt"
	"time"
)

// Model backends.
const (
	BackendFile = "file"
	BackendHTTP = "http"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelBackend selects where predictions come from: file or http.
	ModelBackend string `koanf:"model_backend"`

	// ModelPath is the artifact read by the file backend.
	ModelPath string `koanf:"model_path"`

	// ModelURL is the model server used by the http backend.
	ModelURL string `koanf:"model_url"`

	// ModelTimeoutMS bounds each call to the model server.
	ModelTimeoutMS int `koanf:"model_timeout_ms"`

	// WarmUp loads the model at startup instead of on the first prediction.
	WarmUp bool `koanf:"warm_up"`

	// BatchMaxRows caps the rows accepted by the CSV batch endpoint.
	BatchMaxRows int `koanf:"batch_max_rows"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":8080",
		ModelBackend:   BackendFile,
		ModelPath:      "model/yield_pipeline.json",
		ModelTimeoutMS: 2000,
		WarmUp:         true,
		BatchMaxRows:   1000,
	}
}

// ModelTimeout returns ModelTimeoutMS as a duration.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.ModelBackend != BackendFile && c.ModelBackend != BackendHTTP:
		return fmt.Errorf("%w: unknown model_backend %q", ErrInvalidConfig, c.ModelBackend)
	case c.ModelBackend == BackendFile && c.ModelPath == "":
		return fmt.Errorf("%w: model_path is required for the file backend", ErrInvalidConfig)
	case c.ModelBackend == BackendHTTP && c.ModelURL == "":
		return fmt.Errorf("%w: model_url is required for the http backend", ErrInvalidConfig)
	case c.ModelTimeoutMS <= 0:
		return fmt.Errorf("%w: model_timeout_ms must be positive", ErrInvalidConfig)
	case c.BatchMaxRows <= 0:
		return fmt.Errorf("%w: batch_max_rows must be positive", ErrInvalidConfig)
	}
	return nil
}
