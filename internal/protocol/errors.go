package protocol

import "errors"

var (
	// Returned when a message cannot be encoded or decoded.
	ErrProtocol = errors.New("protocol error")
)
