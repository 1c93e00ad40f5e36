package launch

import "errors"

var (
	// Returned when a service cannot be started or stopped.
	ErrLaunch = errors.New("launch failed")

	// Returned when an environment file cannot be read.
	ErrEnvFile = errors.New("invalid env file")
)
