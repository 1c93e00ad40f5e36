package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	"github.com/distribution/reference"
)

const (

	// Snapshotter used for container filesystems. fuse-overlayfs provides
	// overlay semantics without requiring root privileges (no mount(2)),
	// allowing the tool to run as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client and provides image and container operations.
type Runtime struct {
	client *containerd.Client // Containerd client for managing containers and images.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. The
// runtime must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Pulls a base image from its registry and unpacks it for the platform.
//
// The reference is normalized first ("python:3.13-slim" resolves to its
// canonical registry form), so recipe base images can use the short
// notation the service's Dockerfiles used.
func (rt *Runtime) Pull(ctx context.Context, ref, platform string) (containerd.Image, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: base image %q: %w", ErrRuntime, ref, err)
	}
	named = reference.TagNameOnly(named)

	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Info("pulling base image", "ref", named.String(), "platform", platform)

	image, err := rt.client.Pull(ctx, named.String(),
		containerd.WithPlatformMatcher(platforms.Only(p)),
		containerd.WithPullUnpack,
		containerd.WithPullSnapshotter(snapshotter),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: pull %s: %w", ErrRuntime, named.String(), err)
	}

	return image, nil
}

// Pulls the base image and starts an idle build container from it.
//
// The container runs a long-lived task (sleep infinity) so that
// subsequent Exec calls have a running process to attach to. Any stale
// container with the same ID from a previous build is removed first.
// Building for a platform other than the host requires QEMU /
// binfmt_misc support in the kernel.
func (rt *Runtime) StartBuild(ctx context.Context, ref, id, platform string) (*Container, error) {
	image, err := rt.Pull(ctx, ref, platform)
	if err != nil {
		return nil, err
	}

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: platform,
	}

	c.remove(ctx)

	ctr, err := c.create(ctx, image, idleProcess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := c.startIdleTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("build container started", "id", id, "image", ref)

	return c, nil
}

// Imports a built OCI archive, tags it, and unpacks it for the host
// platform.
//
// The archive must contain exactly one image. Used to bring a build
// result back into containerd for verification or launch.
func (rt *Runtime) ImportArchive(ctx context.Context, path, tag string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer fh.Close()

	imported, err := rt.client.Import(ctx, fh)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	// Import returns one record per image in the archive's index.json. A
	// multi-platform archive still has a single entry (an OCI index that
	// references per-platform manifests). Multiple records would mean
	// multiple unrelated images.
	if len(imported) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyArchive, path)
	} else if len(imported) > 1 {
		return fmt.Errorf("%w: %s", ErrMultipleImages, path)
	}

	if err := rt.tag(ctx, imported[0], tag); err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	image, err := rt.resolve(ctx, tag, hostPlatform())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	if err := image.Unpack(ctx, snapshotter); err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("archive imported", "path", path, "tag", tag)
	return nil
}

// Starts an idle container from a previously imported tag.
//
// Used by verification, which needs to exec probes inside the built
// image without running its entrypoint.
func (rt *Runtime) StartFromTag(ctx context.Context, tag, id string) (*Container, error) {
	platform := hostPlatform()

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: platform,
	}

	c.remove(ctx)

	image, err := rt.resolve(ctx, tag, platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	ctr, err := c.create(ctx, image, idleProcess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := c.startIdleTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("container started", "id", id, "image", tag)
	return c, nil
}

// Removes an image and all containers created from it.
//
// Containers are discovered by querying containerd for records whose
// image field matches the tag. Each container's task is killed before
// the container and its snapshot are deleted.
func (rt *Runtime) DestroyImage(ctx context.Context, tag string) error {
	ctrs, err := rt.client.Containers(ctx, fmt.Sprintf("image==%s", tag))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	for _, ctr := range ctrs {
		if task, taskErr := ctr.Task(ctx, nil); taskErr == nil {
			task.Kill(ctx, syscall.SIGKILL)
			task.Delete(ctx, containerd.WithProcessKill)
		}
		if err := ctr.Delete(ctx, containerd.WithSnapshotCleanup); err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("%w: %w", ErrRuntime, err)
		}
	}

	if err := rt.client.ImageService().Delete(ctx, tag); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("image destroyed", "tag", tag)
	return nil
}

// Records an imported image under the given tag.
//
// Updates the tag if it already exists. Removes the source record when
// its name differs from the tag to avoid duplicates.
func (rt *Runtime) tag(ctx context.Context, source images.Image, tag string) error {
	is := rt.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}

	return nil
}

// Looks up a tagged image and selects the manifest for the given platform.
//
// Multi-platform images contain manifests for multiple architectures;
// this pins subsequent operations to one of them.
func (rt *Runtime) resolve(ctx context.Context, tag, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, tag)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

// Returns the default OCI platform for the host architecture.
func hostPlatform() string {
	return "linux/" + goruntime.GOARCH
}
