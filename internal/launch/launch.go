package launch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	containerd "github.com/containerd/containerd/v2/client"
	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/bromestriker/bromeforge/internal/paths"
	"github.com/bromestriker/bromeforge/internal/recipe"
	"github.com/bromestriker/bromeforge/internal/runtime"
)

// How long a service gets to exit after SIGTERM before it is killed.
const stopGracePeriod = 10 * time.Second

// Controls how an image is launched.
type Options struct {
	Recipe  *recipe.Recipe    // Recipe the archive was built from.
	Archive string            // Path to the OCI archive to run.
	EnvFile string            // Explicit .env file. Empty falls back to ./.env when present.
	Env     map[string]string // Environment overrides, highest precedence.
	DataDir string            // Host directory backing the data dirs. Empty uses the XDG data dir.
}

// Imports an archive and runs it until it exits or a signal arrives.
//
// The image entrypoint runs as process 1. Data directories declared by
// the recipe are bind-mounted from the host so state survives container
// replacement. On SIGINT or SIGTERM the service is asked to stop and
// killed after a grace period. Returns the service's exit code.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (int, error) {
	rec := opts.Recipe
	tag := fmt.Sprintf("bromeforge/%s:latest", rec.Name)

	if err := rt.ImportArchive(ctx, opts.Archive, tag); err != nil {
		return 0, err
	}

	envFile, err := resolveEnvFile(opts.EnvFile)
	if err != nil {
		return 0, err
	}
	env, err := assembleEnv(rec.Env, envFile, opts.Env)
	if err != nil {
		return 0, err
	}

	mounts, err := dataMounts(rec, opts.DataDir)
	if err != nil {
		return 0, err
	}

	ctr, exit, err := rt.Launch(ctx, tag, rec.Name, runtime.LaunchSpec{
		Env:    env,
		Mounts: mounts,
	})
	if err != nil {
		return 0, err
	}
	defer ctr.Destroy(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case status := <-exit:
		code, _, err := status.Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrLaunch, err)
		}
		slog.Info("service exited", "code", code)
		return int(code), nil

	case sig := <-signals:
		slog.Info("stopping service", "signal", sig)
		return 0, stop(ctx, ctr, exit)

	case <-ctx.Done():
		return 0, stop(context.Background(), ctr, exit)
	}
}

// Asks the service to terminate and kills it if it does not exit within
// the grace period.
func stop(ctx context.Context, ctr *runtime.Container, exit <-chan containerd.ExitStatus) error {
	if err := ctr.Signal(ctx, syscall.SIGTERM); err != nil {
		return err
	}

	select {
	case <-exit:
		return nil
	case <-time.After(stopGracePeriod):
		slog.Warn("service did not stop in time, killing")
		return ctr.Stop(ctx)
	}
}

// Builds bind mounts backing the recipe's data directories.
//
// Each data directory maps to a host directory under
// {root}/{recipe}/{basename}, created on first use. The default root is
// the XDG data directory.
func dataMounts(rec *recipe.Recipe, root string) ([]specs.Mount, error) {
	if len(rec.DataDirs) == 0 {
		return nil, nil
	}

	if root == "" {
		root = paths.Data()
	}

	var mounts []specs.Mount
	for _, dir := range rec.DataDirs {
		source := filepath.Join(root, rec.Name, filepath.Base(dir))
		if err := os.MkdirAll(source, paths.DefaultDirMode); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
		}
		mounts = append(mounts, specs.Mount{
			Destination: dir,
			Type:        "bind",
			Source:      source,
			Options:     []string{"rbind", "rw"},
		})
	}
	return mounts, nil
}
