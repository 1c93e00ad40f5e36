package server

import "errors"

var (
	// Returned when the server cannot be started or a connection fails.
	ErrServer = errors.New("server error")
)
