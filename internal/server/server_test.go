package server

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/bromestriker/bromeforge/internal/protocol"
)

// Starts a server on a temp socket without a container runtime. Status
// and shutdown do not touch the runtime.
func startTestServer(t *testing.T) *Server {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "bromeforge.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &Server{
		socketPath: socketPath,
		listener:   listener,
		startedAt:  time.Now(),
		done:       make(chan struct{}),
	}
	go s.accept()

	t.Cleanup(func() {
		select {
		case <-s.done:
		default:
			s.Stop()
		}
	})

	return s
}

func TestStatusRoundtrip(t *testing.T) {
	s := startTestServer(t)

	env, payload, err := protocol.Roundtrip(s.socketPath, protocol.CmdStatus, nil)
	if err != nil {
		t.Fatalf("Roundtrip() error = %v", err)
	}
	if env.Command != protocol.CmdOK {
		t.Fatalf("Command = %q, want ok", env.Command)
	}

	status, err := protocol.DecodePayload[protocol.StatusResult](payload)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if !status.Running {
		t.Error("Running = false, want true")
	}
	if status.Builds != 0 || status.Verifies != 0 {
		t.Errorf("counters = %d/%d, want 0/0", status.Builds, status.Verifies)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := startTestServer(t)

	env, payload, err := protocol.Roundtrip(s.socketPath, protocol.Command("bogus"), nil)
	if err != nil {
		t.Fatalf("Roundtrip() error = %v", err)
	}
	if env.Command != protocol.CmdError {
		t.Fatalf("Command = %q, want error", env.Command)
	}

	result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if result.Message == "" {
		t.Error("error result has no message")
	}
}

func TestMalformedRequest(t *testing.T) {
	s := startTestServer(t)

	conn, err := net.Dial("unix", s.socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	env, _, err := protocol.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if env.Command != protocol.CmdError {
		t.Errorf("Command = %q, want error", env.Command)
	}
}

func TestContextWithDisconnect(t *testing.T) {
	client, srv := net.Pipe()

	ctx, cancel := contextWithDisconnect(context.Background(), srv)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before disconnect")
	default:
	}

	client.Close()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after disconnect")
	}
}
