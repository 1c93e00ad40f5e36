package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/bromestriker/bromeforge/internal"
	"github.com/bromestriker/bromeforge/internal/build"
	"github.com/bromestriker/bromeforge/internal/protocol"
	"github.com/bromestriker/bromeforge/internal/verify"
)

// Handles a build command.
//
// Executes the recipe from the request against the container runtime
// and reports the exported archives.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	job := uuid.NewString()
	slog.Info("build started", "job", job, "recipe", req.Recipe.Name)

	result, err := build.Run(ctx, s.runtime, build.Options{
		Recipe:    req.Recipe,
		Context:   req.Context,
		Output:    req.Output,
		Platforms: req.Platforms,
	})
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	archives := make([]protocol.ArchiveInfo, 0, len(result.Archives))
	var total int64
	for _, a := range result.Archives {
		archives = append(archives, protocol.ArchiveInfo{
			Platform: a.Platform,
			Path:     a.Path,
			Size:     a.Size,
		})
		total += a.Size
	}

	s.mu.Lock()
	s.builds++
	s.builtBytes += total
	s.mu.Unlock()

	s.respond(conn, protocol.CmdOK, &protocol.BuildResult{
		Job:      job,
		Output:   result.Output,
		Archives: archives,
	})
}

// Handles a verify command.
//
// Runs every check and reports the full result; a failed check is not a
// command error.
func (s *Server) handleVerify(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.VerifyRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	job := uuid.NewString()
	slog.Info("verification started", "job", job, "archive", req.Archive)

	report, err := verify.Run(ctx, s.runtime, verify.Options{
		Recipe:   req.Recipe,
		Archive:  req.Archive,
		Platform: req.Platform,
		Keep:     req.Keep,
	})
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.verifies++
	s.mu.Unlock()

	checks := make([]protocol.CheckResult, 0, len(report.Checks))
	for _, c := range report.Checks {
		checks = append(checks, protocol.CheckResult{Name: c.Name, OK: c.OK, Detail: c.Detail})
	}

	s.respond(conn, protocol.CmdOK, &protocol.VerifyResult{
		Job:         job,
		Tag:         report.Tag,
		OK:          report.OK(),
		Checks:      checks,
		Assumptions: report.Assumptions,
	})
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	verifies := s.verifies
	builtBytes := s.builtBytes
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running:    true,
		Version:    internal.VersionString(),
		Pid:        os.Getpid(),
		Uptime:     uptime.String(),
		Builds:     builds,
		Verifies:   verifies,
		BuiltBytes: humanize.Bytes(uint64(builtBytes)),
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
