package cli

import "errors"

var (
	// Returned when the daemon reports a command failure.
	ErrDaemon = errors.New("daemon error")

	// Returned when one or more verification checks fail.
	ErrVerificationFailed = errors.New("verification failed")

	// Returned when the launched service exits non-zero.
	ErrServiceFailed = errors.New("service failed")

	// Returned when a path cannot be extracted from an image.
	ErrExtract = errors.New("extract failed")
)
