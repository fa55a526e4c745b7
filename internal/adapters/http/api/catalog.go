package api

import (
	"errors"
	"net/http"

	"github.com/okian/cropyield/internal/domain/catalog"
)

type districtsResponse struct {
	State     string   `json:"state"`
	Districts []string `json:"districts"`
}

// CatalogHandler serves the lookup lists the form is built from.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleCatalog handles GET /api/v1/catalog requests.
func (h *CatalogHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Catalog().Snapshot())
}

// HandleDistricts handles GET /api/v1/catalog/states/{state}/districts requests.
func (h *CatalogHandler) HandleDistricts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	state := r.PathValue("state")
	districts, err := h.deps.Catalog().Districts(state)
	if errors.Is(err, catalog.ErrUnknownState) {
		writeError(w, http.StatusNotFound, "unknown_state", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, districtsResponse{State: state, Districts: districts})
}
