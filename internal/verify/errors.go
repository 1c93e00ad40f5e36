package verify

import "errors"

var (
	// Returned when an archive cannot be read or is not a valid OCI
	// layout.
	ErrArchive = errors.New("invalid archive")

	// Returned when the probe container is not in a runnable state.
	ErrContainer = errors.New("container not running")
)
