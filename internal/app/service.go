// Package service wires the catalog, the model backend, and the prediction
// service together and implements the dependencies required by the HTTP layer.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cropyield/internal/adapters/artifact"
	"github.com/okian/cropyield/internal/adapters/mlclient"
	"github.com/okian/cropyield/internal/config"
	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/internal/domain/prediction"
	"github.com/okian/cropyield/pkg/logger"
)

// Service implements the API dependencies for the yield predictor.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog   *catalog.Catalog
	predictor *prediction.Service
	loader    prediction.Loader

	// Configuration
	backend      string
	modelPath    string
	modelURL     string
	modelTimeout time.Duration
	warmUp       bool
	batchMaxRows int

	// State
	started   bool
	startedAt time.Time

	// Counters
	served    atomic.Int64
	fallbacks atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
	batches   atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithArtifact selects the file backend reading the artifact at path.
func WithArtifact(path string) Option {
	return func(s *Service) {
		s.backend = config.BackendFile
		s.modelPath = path
	}
}

// WithModelServer selects the http backend talking to url.
func WithModelServer(url string, timeout time.Duration) Option {
	return func(s *Service) {
		s.backend = config.BackendHTTP
		s.modelURL = url
		if timeout > 0 {
			s.modelTimeout = timeout
		}
	}
}

// WithLoader replaces the backend with a custom loader.
func WithLoader(name string, loader prediction.Loader) Option {
	return func(s *Service) {
		s.backend = name
		s.loader = loader
	}
}

// WithWarmUp loads the model during Start instead of on the first prediction.
func WithWarmUp(enabled bool) Option {
	return func(s *Service) {
		s.warmUp = enabled
	}
}

// WithBatchMaxRows caps the rows accepted by PredictBatch.
func WithBatchMaxRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchMaxRows = n
		}
	}
}

// FromConfig translates a loaded Config into options.
func FromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithWarmUp(cfg.WarmUp),
		WithBatchMaxRows(cfg.BatchMaxRows),
	}
	switch cfg.ModelBackend {
	case config.BackendHTTP:
		opts = append(opts, WithModelServer(cfg.ModelURL, cfg.ModelTimeout()))
	default:
		opts = append(opts, WithArtifact(cfg.ModelPath))
	}
	return opts
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:      catalog.New(),
		backend:      config.BackendFile,
		modelPath:    config.New().ModelPath,
		modelTimeout: config.New().ModelTimeout(),
		batchMaxRows: config.New().BatchMaxRows,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the prediction service and optionally loads the model.
// A model that fails to load is logged and served through fallback estimates.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	loader, err := s.buildLoader()
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "starting yield prediction service...",
		logger.String("backend", s.backend),
	)
	s.predictor = prediction.New(s.catalog, loader,
		prediction.WithBackend(s.backend),
		prediction.WithLogger(s.logger.Named("prediction")),
	)

	if s.warmUp {
		if err := s.predictor.Warm(ctx); err != nil {
			s.logger.Warn(ctx, "model warm-up failed", logger.Error(err))
		}
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "yield prediction service started",
		logger.String("modelState", s.predictor.State().String()),
		logger.Int("batchMaxRows", s.batchMaxRows),
	)
	return nil
}

func (s *Service) buildLoader() (prediction.Loader, error) {
	switch {
	case s.loader != nil:
		return s.loader, nil
	case s.backend == config.BackendFile:
		return artifact.NewLoader(s.modelPath), nil
	case s.backend == config.BackendHTTP:
		client := mlclient.New(s.modelURL, mlclient.WithTimeout(s.modelTimeout))
		return mlclient.NewLoader(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.backend)
	}
}

// Stop marks the service as stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "yield prediction service stopped",
		logger.Int("served", int(s.served.Load())),
	)
}

func (s *Service) running() (*prediction.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.predictor, nil
}

// Catalog returns the lookup catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Predict runs one request through the prediction service.
func (s *Service) Predict(ctx context.Context, req model.Request) (model.Result, error) {
	p, err := s.running()
	if err != nil {
		return model.Result{}, err
	}
	res, err := p.Predict(ctx, req)
	s.count(res, err)
	return res, err
}

// PredictBatch runs up to the configured number of rows in one model call.
func (s *Service) PredictBatch(ctx context.Context, reqs []model.Request) ([]prediction.Outcome, error) {
	p, err := s.running()
	if err != nil {
		return nil, err
	}
	if len(reqs) > s.batchMaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrBatchTooLarge, len(reqs), s.batchMaxRows)
	}
	out := p.PredictBatch(ctx, reqs)
	for _, o := range out {
		s.count(o.Result, o.Err)
	}
	s.batches.Add(1)
	return out, nil
}

func (s *Service) count(res model.Result, err error) {
	switch {
	case err == nil && res.IsFallback:
		s.fallbacks.Add(1)
		s.served.Add(1)
	case err == nil:
		s.served.Add(1)
	case isInvalid(err):
		s.rejected.Add(1)
	default:
		s.failed.Add(1)
	}
}

// ModelStatus reports the model lifecycle.
func (s *Service) ModelStatus() prediction.Status {
	p, err := s.running()
	if err != nil {
		return prediction.Status{State: prediction.StateUninitialized.String(), Backend: s.backend}
	}
	return p.Status()
}

// BatchMaxRows returns the batch row limit.
func (s *Service) BatchMaxRows() int {
	return s.batchMaxRows
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"backend":      s.backend,
		"batchMaxRows": s.batchMaxRows,
		"served":       s.served.Load(),
		"fallbacks":    s.fallbacks.Load(),
		"rejected":     s.rejected.Load(),
		"failed":       s.failed.Load(),
		"batches":      s.batches.Load(),
	}

	if s.started {
		stats["modelState"] = s.predictor.State().String()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}

	return stats
}
