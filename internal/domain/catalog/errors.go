package catalog

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownState    = errors.New("unknown state")
	ErrUnknownDistrict = errors.New("unknown district")
	ErrUnknownField    = errors.New("unknown field")
)
