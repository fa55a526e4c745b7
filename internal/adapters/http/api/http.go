// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/internal/domain/prediction"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	CatalogDependencies
	PredictionDependencies
	ModelDependencies
}

// CatalogDependencies exposes the lookup catalog.
type CatalogDependencies interface {
	Catalog() *catalog.Catalog
}

// PredictionDependencies runs requests through the model.
type PredictionDependencies interface {
	Predict(ctx context.Context, req model.Request) (model.Result, error)
	PredictBatch(ctx context.Context, reqs []model.Request) ([]prediction.Outcome, error)
	BatchMaxRows() int
}

// ModelDependencies reports the model lifecycle.
type ModelDependencies interface {
	ModelStatus() prediction.Status
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	metricsHandler     *MetricsHandler
	statsHandler       *StatsHandler
	catalogHandler     *CatalogHandler
	predictionsHandler *PredictionsHandler
	modelHandler       *ModelHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		metricsHandler:     NewMetricsHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		catalogHandler:     NewCatalogHandler(deps),
		predictionsHandler: NewPredictionsHandler(deps),
		modelHandler:       NewModelHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/catalog", MetricsMiddleware(s.catalogHandler.HandleCatalog, "catalog"))
	mux.HandleFunc("/api/v1/catalog/states/{state}/districts", MetricsMiddleware(s.catalogHandler.HandleDistricts, "districts"))
	mux.HandleFunc("/api/v1/predictions", MetricsMiddleware(s.predictionsHandler.HandlePredict, "predictions"))
	mux.HandleFunc("/api/v1/predictions/batch", MetricsMiddleware(s.predictionsHandler.HandleBatch, "predictions_batch"))
	mux.HandleFunc("/api/v1/model", MetricsMiddleware(s.modelHandler.HandleModel, "model"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
