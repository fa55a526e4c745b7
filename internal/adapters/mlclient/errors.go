package mlclient

import "errors"

var (
	// ErrUnavailable is returned when the model server cannot be reached or reports unhealthy.
	ErrUnavailable = errors.New("model server unavailable")
	// ErrBadResponse is returned when the model server answers with an unusable response.
	ErrBadResponse = errors.New("bad response from model server")
)
