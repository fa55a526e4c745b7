package api

import (
	"net/http"
	"time"

	"github.com/okian/cropyield/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthResponse struct {
	Status string    `json:"status"`
	Model  string    `json:"model"`
	Time   time.Time `json:"time"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps ModelDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps ModelDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /healthz requests. The process is healthy even
// when the model is unavailable, because fallback estimates are still served.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Model:  h.deps.ModelStatus().State,
		Time:   time.Now().UTC(),
	})
}

// MetricsHandler serves the Prometheus exposition from the custom registry.
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{
		handler: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
