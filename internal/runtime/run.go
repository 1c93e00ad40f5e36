package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Describes how to run an image as a service container.
type LaunchSpec struct {
	Env    []string      // Environment entries (KEY=VALUE) merged over the image config.
	Mounts []specs.Mount // Bind mounts added to the container spec.
}

// Starts a container running the image's own entrypoint as process 1.
//
// Unlike build containers, no idle process is substituted: the OCI image
// config supplies the process arguments, so the container runs exactly
// what the image declares. The task's output streams to the current
// process. The returned channel fires when the task exits.
func (rt *Runtime) Launch(ctx context.Context, tag, id string, spec LaunchSpec) (*Container, <-chan containerd.ExitStatus, error) {
	platform := hostPlatform()

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: platform,
	}

	c.remove(ctx)

	image, err := rt.resolve(ctx, tag, platform)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	var extra []oci.SpecOpts
	if len(spec.Env) > 0 {
		extra = append(extra, oci.WithEnv(spec.Env))
	}
	if len(spec.Mounts) > 0 {
		extra = append(extra, oci.WithMounts(spec.Mounts))
	}

	ctr, err := c.create(ctx, image, extra...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	task, err := ctr.NewTask(ctx, cio.NewCreator(
		cio.WithStreams(nil, os.Stdout, os.Stderr),
	))
	if err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	exitC, err := task.Wait(ctx)
	if err != nil {
		task.Delete(ctx)
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := task.Start(ctx); err != nil {
		task.Delete(ctx)
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Info("service container started", "id", id, "image", tag)

	return c, exitC, nil
}
