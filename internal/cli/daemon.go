package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bromestriker/bromeforge/internal/protocol"
	"github.com/bromestriker/bromeforge/internal/server"
)

// Represents the 'bromeforge daemon' command group.
type DaemonCmd struct {
	Start  DaemonStartCmd  `cmd:"" help:"Start the build daemon."`
	Status DaemonStatusCmd `cmd:"" help:"Show daemon status."`
	Stop   DaemonStopCmd   `cmd:"" help:"Stop a running daemon."`
}

// Represents the 'bromeforge daemon start' command.
type DaemonStartCmd struct{}

// Executes the daemon start command.
//
// Starts the socket server and blocks until the context is cancelled
// (SIGINT or SIGTERM) or a shutdown command arrives on the socket.
func (c *DaemonStartCmd) Run(ctx context.Context) error {
	configureLogger(true)

	srv, err := server.New(server.Config{
		SocketPath:          RootCmd.Socket,
		ContainerdAddress:   RootCmd.ContainerdAddress,
		ContainerdNamespace: RootCmd.Namespace,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("bromeforge daemon is running")

	stopped := make(chan struct{})
	go func() {
		srv.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return srv.Stop()
	case <-stopped:
		return nil
	}
}

// Represents the 'bromeforge daemon status' command.
type DaemonStatusCmd struct{}

// Executes the daemon status command.
func (c *DaemonStatusCmd) Run(ctx context.Context) error {
	env, payload, err := protocol.Roundtrip(socketPath(), protocol.CmdStatus, nil)
	if err != nil {
		return err
	}

	status, err := decodeResponse[protocol.StatusResult](env, payload)
	if err != nil {
		return err
	}

	fmt.Printf("version:  %s\n", status.Version)
	fmt.Printf("pid:      %d\n", status.Pid)
	fmt.Printf("uptime:   %s\n", status.Uptime)
	fmt.Printf("builds:   %d\n", status.Builds)
	fmt.Printf("verifies: %d\n", status.Verifies)
	fmt.Printf("built:    %s\n", status.BuiltBytes)
	return nil
}

// Represents the 'bromeforge daemon stop' command.
type DaemonStopCmd struct{}

// Executes the daemon stop command.
func (c *DaemonStopCmd) Run(ctx context.Context) error {
	env, payload, err := protocol.Roundtrip(socketPath(), protocol.CmdShutdown, nil)
	if err != nil {
		return err
	}
	if _, err := decodeResponse[struct{}](env, payload); err != nil {
		return err
	}

	fmt.Println("daemon stopped")
	return nil
}

// Unwraps a daemon response, converting error envelopes into errors.
func decodeResponse[T any](env *protocol.Envelope, payload json.RawMessage) (*T, error) {
	if env.Command == protocol.CmdError {
		result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrDaemon, result.Message)
	}
	if len(payload) == 0 {
		return new(T), nil
	}
	return protocol.DecodePayload[T](payload)
}
