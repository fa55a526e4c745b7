package service

import (
	"errors"

	"github.com/okian/cropyield/internal/domain/prediction"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrBatchTooLarge  = errors.New("batch too large")
	ErrUnknownBackend = errors.New("unknown model backend")
)

func isInvalid(err error) bool {
	return errors.Is(err, prediction.ErrInvalidInput)
}
