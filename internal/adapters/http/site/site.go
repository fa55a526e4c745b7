// Package site serves the prediction form.
package site

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/cropyield/internal/domain/catalog"
	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/internal/domain/prediction"
	"github.com/okian/cropyield/pkg/logger"
)

// Error constants
var (
	ErrRender = errors.New("form render failed")
)

// Messages shown instead of internal causes.
const (
	msgPredictionFailed = "Prediction failed. Please try again."
	msgUnavailable      = "The service is starting up. Please try again shortly."
	maxFormBody         = 16 << 10
)

// Dependencies are the operations behind the form.
type Dependencies interface {
	Catalog() *catalog.Catalog
	Predict(ctx context.Context, req model.Request) (model.Result, error)
}

// Handler renders and submits the prediction form.
type Handler struct {
	deps   Dependencies
	tmpl   *template.Template
	logger logger.Logger
}

// NewHandler parses the embedded templates.
func NewHandler(deps Dependencies) (*Handler, error) {
	tmpl, err := template.New("form.html").Funcs(template.FuncMap{
		"rangeOf": func(ranges map[catalog.Field]catalog.Range, f string) catalog.Range {
			return ranges[catalog.Field(f)]
		},
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
	}).ParseFS(templateFS, "templates/form.html")
	if err != nil {
		return nil, errors.Join(ErrRender, err)
	}
	return &Handler{deps: deps, tmpl: tmpl, logger: logger.Named("site")}, nil
}

// Register attaches the form and its static assets to mux.
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("/{$}", h.HandleRoot)
}

// pageData is what the form template renders.
type pageData struct {
	States    []string
	Districts []string
	Seasons   []string
	Crops     []string
	Ranges    map[catalog.Field]catalog.Range
	Form      model.Request

	Result     *model.Result
	ErrorField string
	Error      string
	Failure    string
	Detail     string
}

// HandleRoot handles GET / (render) and POST / (submit).
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c := h.deps.Catalog()
	form := c.DefaultRequest()
	// Changing the state resets the district to the state's first entry.
	if state := r.URL.Query().Get("state"); state != "" && c.HasState(state) && state != form.State {
		districts, _ := c.Districts(state)
		form.State = state
		form.District = districts[0]
	}
	h.render(w, r, http.StatusOK, h.page(form))
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form submission", http.StatusBadRequest)
		return
	}

	form, err := parseRequest(r)
	if err != nil {
		data := h.page(form)
		setFieldError(&data, err)
		h.render(w, r, http.StatusBadRequest, data)
		return
	}

	res, err := h.deps.Predict(r.Context(), form)
	data := h.page(form)
	status := http.StatusOK
	var invalid *prediction.InvalidInputError
	var failed *prediction.PredictionFailedError
	switch {
	case err == nil:
		data.Result = &res
	case errors.As(err, &invalid):
		setFieldError(&data, invalid)
		status = http.StatusBadRequest
	case errors.As(err, &failed):
		data.Failure = msgPredictionFailed
		if failed.Cause != nil {
			data.Detail = failed.Cause.Error()
		}
		status = http.StatusInternalServerError
	default:
		h.logger.Error(r.Context(), "form prediction failed", logger.Error(err))
		data.Failure = msgUnavailable
		status = http.StatusServiceUnavailable
	}
	h.render(w, r, status, data)
}

func setFieldError(data *pageData, err error) {
	var invalid *prediction.InvalidInputError
	if errors.As(err, &invalid) {
		data.ErrorField = invalid.Field
	}
	data.Error = err.Error()
}

// page builds the template data with the districts of form.State.
func (h *Handler) page(form model.Request) pageData {
	snap := h.deps.Catalog().Snapshot()
	districts := snap.Districts[form.State]
	if districts == nil {
		districts = snap.Districts[snap.States[0]]
	}
	return pageData{
		States:    snap.States,
		Districts: districts,
		Seasons:   snap.Seasons,
		Crops:     snap.Crops,
		Ranges:    snap.Ranges,
		Form:      form,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.Error(r.Context(), "render form", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// parseRequest builds a request from form values. Numeric fields that do not
// parse are reported as invalid input; the partially filled request is
// returned so the form can be re-rendered.
func parseRequest(r *http.Request) (model.Request, error) {
	req := model.Request{
		State:    r.PostFormValue(prediction.FieldState),
		District: r.PostFormValue(prediction.FieldDistrict),
		CropYear: r.PostFormValue(prediction.FieldCropYear),
		Season:   r.PostFormValue(prediction.FieldSeason),
		Crop:     r.PostFormValue(prediction.FieldCrop),
	}
	numbers := []struct {
		field string
		dst   *float64
	}{
		{prediction.FieldTemperature, &req.Temperature},
		{prediction.FieldHumidity, &req.Humidity},
		{prediction.FieldSoilMoisture, &req.SoilMoisture},
		{prediction.FieldArea, &req.Area},
	}
	var firstErr error
	for _, n := range numbers {
		raw := strings.TrimSpace(r.PostFormValue(n.field))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			if firstErr == nil {
				firstErr = &prediction.InvalidInputError{Field: n.field, Reason: "must be a number"}
			}
			continue
		}
		*n.dst = v
	}
	return req, firstErr
}
