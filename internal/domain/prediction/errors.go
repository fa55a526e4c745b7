package prediction

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrModelLoadFailed  = errors.New("model load failed")
	ErrPredictionFailed = errors.New("prediction failed")
	ErrNoModel          = errors.New("no model configured")
)

// InvalidInputError reports the first request field that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// ModelLoadFailedError wraps the reason the model could not be loaded.
type ModelLoadFailedError struct {
	Cause error
}

func (e *ModelLoadFailedError) Error() string {
	return fmt.Sprintf("model load failed: %v", e.Cause)
}

func (e *ModelLoadFailedError) Is(target error) bool { return target == ErrModelLoadFailed }

func (e *ModelLoadFailedError) Unwrap() error { return e.Cause }

// PredictionFailedError wraps a failed model call.
type PredictionFailedError struct {
	Cause error
}

func (e *PredictionFailedError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Cause)
}

func (e *PredictionFailedError) Is(target error) bool { return target == ErrPredictionFailed }

func (e *PredictionFailedError) Unwrap() error { return e.Cause }
