package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/cropyield/internal/app"
	"github.com/okian/cropyield/internal/domain/prediction"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Messages shown instead of internal causes.
const (
	msgPredictionFailed = "the model could not produce a prediction; please try again"
	msgUnavailable      = "the service is not ready"
)

// opError tags an error with the handler operation that produced it.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *opError) Is(target error) bool { return target == e.kind }

func (e *opError) Unwrap() error { return e.err }

func wrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// writePredictionError maps prediction errors to HTTP responses.
func writePredictionError(w http.ResponseWriter, err error) {
	var invalid *prediction.InvalidInputError
	var failed *prediction.PredictionFailedError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "invalid_input",
			Message: invalid.Error(),
			Field:   invalid.Field,
		})
	case errors.As(err, &failed):
		resp := errorResponse{Code: "prediction_failed", Message: msgPredictionFailed}
		if failed.Cause != nil {
			resp.Detail = failed.Cause.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", errors.New(msgUnavailable))
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
