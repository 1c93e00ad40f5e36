package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// How long a client waits for a connection to the daemon socket.
const dialTimeout = 5 * time.Second

// Sends one command to the daemon and returns the decoded response.
//
// The daemon closes the connection after a single exchange, so each
// call dials a fresh connection. Long-running commands (builds) keep
// the connection open until the response arrives.
func Roundtrip(socketPath string, cmd Command, payload any) (*Envelope, json.RawMessage, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: daemon not reachable at %s: %w", ErrProtocol, socketPath, err)
	}
	defer conn.Close()

	data, err := Encode(cmd, payload)
	if err != nil {
		return nil, nil, err
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	return Decode(line)
}
