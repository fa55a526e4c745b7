package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/pkg/logger"
)

const (
	maxJSONBody = 64 << 10
	maxCSVBody  = 8 << 20

	contentTypeCSV = "text/csv; charset=utf-8"
)

// batchRow is one output line of the CSV batch endpoint: the input columns
// followed by the outcome.
type batchRow struct {
	model.Record
	PredictedYield      string `csv:"Predicted_Yield"`
	PredictedProduction string `csv:"Predicted_Production"`
	IsFallback          string `csv:"Is_Fallback"`
	Error               string `csv:"Error"`
}

// PredictionsHandler runs single and batch predictions.
type PredictionsHandler struct {
	deps   PredictionDependencies
	logger logger.Logger
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps PredictionDependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps, logger: logger.Named("api")}
}

// HandlePredict handles POST /api/v1/predictions requests.
func (h *PredictionsHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_prediction"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Predict(r.Context(), req)
	if err != nil {
		writePredictionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleBatch handles POST /api/v1/predictions/batch requests. The body is a
// CSV with the model columns as header; the response repeats each row with
// its prediction or error appended, in input order.
func (h *PredictionsHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_prediction_batch"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCSVBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	records, err := decodeRecords(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if len(records) > h.deps.BatchMaxRows() {
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large",
			fmt.Errorf("%d rows exceed the limit of %d", len(records), h.deps.BatchMaxRows()))
		return
	}

	reqs := make([]model.Request, len(records))
	for i, rec := range records {
		reqs[i] = rec.Request()
	}
	outcomes, err := h.deps.PredictBatch(r.Context(), reqs)
	if err != nil {
		writePredictionError(w, err)
		return
	}

	rows := make([]*batchRow, len(records))
	for i, o := range outcomes {
		row := &batchRow{Record: *records[i]}
		if o.Err != nil {
			row.Error = o.Err.Error()
		} else {
			row.PredictedYield = formatFloat(o.Result.PredictedYield)
			row.PredictedProduction = formatFloat(o.Result.PredictedProduction)
			row.IsFallback = strconv.FormatBool(o.Result.IsFallback)
		}
		rows[i] = row
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	h.logger.Debug(r.Context(), "batch predicted", logger.Int("rows", len(rows)))
	w.Header().Set("Content-Type", contentTypeCSV)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// decodeRecords requires every model column in the header and decodes the rows.
func decodeRecords(data []byte) ([]*model.Record, error) {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, err
	}
	for _, col := range model.Columns {
		if !slices.Contains(header, col) {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var records []*model.Record
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
