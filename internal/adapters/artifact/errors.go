package artifact

import "errors"

var (
	// ErrArtifactNotFound is returned when the artifact file does not exist.
	ErrArtifactNotFound = errors.New("model artifact not found")
	// ErrInvalidArtifact is returned when the artifact cannot be parsed or has the wrong shape.
	ErrInvalidArtifact = errors.New("invalid model artifact")
)
