// Package prediction turns a validated request into a yield and production
// estimate. It owns the model lifecycle:
//
//	Uninitialized --Warm / first Predict--> Ready        (model loaded)
//	                                    \-> Unavailable  (load failed; fallback estimates)
//
// The load runs exactly once. A Ready model is never replaced and a failed
// load is never retried.
package prediction

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/pkg/logger"
	"github.com/okian/cropyield/pkg/metrics"
)

// Fallback coefficients for the placeholder yield used without a model.
const (
	fallbackTemperatureWeight  = 0.01
	fallbackSoilMoistureWeight = 0.005
)

// State is the model lifecycle state.
type State int32

// Lifecycle states.
const (
	StateUninitialized State = iota
	StateReady
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Predictor is the opaque model. Predict receives rows in model.Columns order
// and returns one value per row. Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, records []model.Record) ([]float64, error)
	Name() string
}

// Loader deserializes or connects to the model.
type Loader func(ctx context.Context) (Predictor, error)

// Status describes the loaded model for health and diagnostics.
type Status struct {
	State     string    `json:"state"`
	Backend   string    `json:"backend"`
	Predictor string    `json:"predictor,omitempty"`
	LoadError string    `json:"loadError,omitempty"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
}

// Outcome is one row of a batch prediction.
type Outcome struct {
	Result model.Result
	Err    error
}

// Service validates requests and runs them through the model.
type Service struct {
	catalog *catalog.Catalog
	loader  Loader
	backend string
	logger  logger.Logger

	once  sync.Once
	state atomic.Int32

	// Written once inside once.Do, before state leaves StateUninitialized.
	predictor Predictor
	loadErr   error
	loadedAt  time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackend names the model backend in status output and logs.
func WithBackend(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.backend = name
		}
	}
}

// New creates a service. A nil loader leaves the service permanently in fallback mode.
func New(c *catalog.Catalog, loader Loader, opts ...Option) *Service {
	s := &Service{
		catalog: c,
		loader:  loader,
		backend: "none",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("prediction")
	}
	metrics.UpdateModelState(int(StateUninitialized))
	return s
}

// Catalog returns the catalog requests are validated against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	return State(s.state.Load())
}

// Status returns a snapshot of the model lifecycle.
func (s *Service) Status() Status {
	st := s.State()
	status := Status{State: st.String(), Backend: s.backend}
	if st == StateUninitialized {
		return status
	}
	if s.predictor != nil {
		status.Predictor = s.predictor.Name()
	}
	if s.loadErr != nil {
		status.LoadError = s.loadErr.Error()
	}
	status.LoadedAt = s.loadedAt
	return status
}

// Warm loads the model now instead of on the first prediction. It returns
// *ModelLoadFailedError when the model is unavailable; the service keeps
// serving fallback estimates either way.
func (s *Service) Warm(ctx context.Context) error {
	s.ensureLoaded(ctx)
	if s.State() == StateUnavailable {
		return &ModelLoadFailedError{Cause: s.loadErr}
	}
	return nil
}

// ensureLoaded runs the loader once. Concurrent callers block until the load finishes.
func (s *Service) ensureLoaded(ctx context.Context) {
	s.once.Do(func() {
		// The load outlives the request that triggered it.
		loadCtx := context.WithoutCancel(ctx)
		start := time.Now()

		p, err := s.load(loadCtx)
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		s.loadedAt = time.Now()

		if err != nil {
			s.loadErr = err
			s.state.Store(int32(StateUnavailable))
			metrics.RecordModelLoad(elapsed, false)
			metrics.UpdateModelState(int(StateUnavailable))
			s.logger.Warn(ctx, "model unavailable; serving fallback estimates",
				logger.String("backend", s.backend),
				logger.Float64("elapsedMs", elapsed),
				logger.Error(err),
			)
			return
		}

		s.predictor = p
		s.state.Store(int32(StateReady))
		metrics.RecordModelLoad(elapsed, true)
		metrics.UpdateModelState(int(StateReady))
		s.logger.Info(ctx, "model loaded",
			logger.String("backend", s.backend),
			logger.String("predictor", p.Name()),
			logger.Float64("elapsedMs", elapsed),
		)
	})
}

func (s *Service) load(ctx context.Context) (p Predictor, err error) {
	if s.loader == nil {
		return nil, ErrNoModel
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("loader panic: %v", r)
		}
	}()
	p, err = s.loader(ctx)
	if err == nil && p == nil {
		err = ErrNoModel
	}
	return p, err
}

// Predict validates req and returns the model's estimate, or a flagged
// fallback estimate when the model is unavailable.
func (s *Service) Predict(ctx context.Context, req model.Request) (model.Result, error) {
	req = req.Normalize()
	if err := Validate(s.catalog, req); err != nil {
		metrics.RecordPrediction(metrics.OutcomeInvalid)
		s.logger.Debug(ctx, "request rejected", logger.Error(err))
		return model.Result{}, err
	}

	s.ensureLoaded(ctx)
	if s.State() != StateReady {
		metrics.RecordPrediction(metrics.OutcomeFallback)
		return fallback(req), nil
	}

	yields, err := s.invoke(ctx, []model.Record{req.Record()})
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeFailed)
		s.logger.Error(ctx, "model prediction failed",
			logger.String("predictor", s.predictor.Name()),
			logger.Error(err),
		)
		return model.Result{}, &PredictionFailedError{Cause: err}
	}

	metrics.RecordPrediction(metrics.OutcomeModel)
	return model.NewResult(yields[0], req.Area, false), nil
}

// PredictBatch validates every row and sends the valid ones to the model in a
// single call. Outcomes are returned in input order.
func (s *Service) PredictBatch(ctx context.Context, reqs []model.Request) []Outcome {
	out := make([]Outcome, len(reqs))
	normalized := make([]model.Request, len(reqs))
	valid := make([]int, 0, len(reqs))
	records := make([]model.Record, 0, len(reqs))

	for i, req := range reqs {
		req = req.Normalize()
		normalized[i] = req
		if err := Validate(s.catalog, req); err != nil {
			out[i].Err = err
			continue
		}
		valid = append(valid, i)
		records = append(records, req.Record())
	}
	metrics.RecordBatchRows(metrics.OutcomeInvalid, len(reqs)-len(valid))
	if len(valid) == 0 {
		return out
	}

	s.ensureLoaded(ctx)
	if s.State() != StateReady {
		for _, i := range valid {
			out[i].Result = fallback(normalized[i])
		}
		metrics.RecordBatchRows(metrics.OutcomeFallback, len(valid))
		return out
	}

	yields, err := s.invoke(ctx, records)
	if err != nil {
		failed := &PredictionFailedError{Cause: err}
		for _, i := range valid {
			out[i].Err = failed
		}
		metrics.RecordBatchRows(metrics.OutcomeFailed, len(valid))
		s.logger.Error(ctx, "batch prediction failed",
			logger.Int("rows", len(valid)),
			logger.Error(err),
		)
		return out
	}

	for j, i := range valid {
		out[i].Result = model.NewResult(yields[j], normalized[i].Area, false)
	}
	metrics.RecordBatchRows(metrics.OutcomeModel, len(valid))
	return out
}

// invoke calls the predictor and checks its output. Panics are converted to errors.
func (s *Service) invoke(ctx context.Context, records []model.Record) (out []float64, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("predictor panic: %v", r)
		}
		metrics.RecordPredictionLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	out, err = s.predictor.Predict(ctx, records)
	if err != nil {
		return nil, err
	}
	if len(out) != len(records) {
		return nil, fmt.Errorf("predictor returned %d values for %d records", len(out), len(records))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("predictor returned non-finite value %v at row %d", v, i)
		}
	}
	return out, nil
}

// fallback is a deterministic placeholder, not a model prediction.
func fallback(req model.Request) model.Result {
	yield := fallbackTemperatureWeight*req.Temperature + fallbackSoilMoistureWeight*req.SoilMoisture
	return model.NewResult(yield, req.Area, true)
}
