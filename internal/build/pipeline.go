package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bromestriker/bromeforge/internal/paths"
	"github.com/bromestriker/bromeforge/internal/recipe"
	"github.com/bromestriker/bromeforge/internal/runtime"
)

// Holds shared state for building a recipe across its target platforms.
type pipeline struct {
	rt         *runtime.Runtime     // Container runtime for image and container operations.
	rec        *recipe.Recipe       // Recipe being built.
	output     string               // Output directory for the final build artifacts.
	context    string               // Build context, root for resolving copy sources.
	platforms  []string             // Target platforms to build for.
	containers []*runtime.Container // Build containers across all platforms, destroyed after the build.
}

// Creates a new [pipeline] from the given options.
func newPipeline(rt *runtime.Runtime, opts Options) *pipeline {
	return &pipeline{
		rt:        rt,
		rec:       opts.Recipe,
		output:    opts.Output,
		context:   opts.Context,
		platforms: opts.Platforms,
	}
}

// Runs the plan end-to-end against the container runtime.
//
// Each target platform is built independently. All build containers are
// destroyed when the build completes, successfully or not.
func (p *pipeline) run(ctx context.Context, plan []recipe.Step) (*Result, error) {
	defer p.destroyContainers(ctx)

	result := &Result{Output: p.output}

	for _, platform := range p.platforms {
		archive, err := p.buildPlatform(ctx, plan, platform)
		if err != nil {
			return nil, fmt.Errorf("%w: platform %s: %w", ErrBuild, platform, err)
		}
		result.Archives = append(result.Archives, *archive)
	}

	return result, nil
}

// Builds the recipe for a single platform.
//
// Starts a container from the base image, executes every plan step in
// order, then stops the container and exports it with the recipe's
// image config. The output is written to a platform-specific
// subdirectory when building for multiple platforms.
func (p *pipeline) buildPlatform(ctx context.Context, plan []recipe.Step, platform string) (*Archive, error) {
	slog.Info("building platform", "platform", platform)

	output := p.platformOutput(platform)
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	id := p.containerID(platform)
	ctr, err := p.rt.StartBuild(ctx, p.rec.Base, id, platform)
	if err != nil {
		return nil, err
	}
	p.containers = append(p.containers, ctr)

	state := newStepState(p.rec)
	for i, step := range plan {
		if err := p.executeStep(ctx, ctr, step, state); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Desc, err)
		}
	}

	if err := ctr.Stop(ctx); err != nil {
		return nil, err
	}

	cfg, err := imageConfig(p.rec)
	if err != nil {
		return nil, err
	}
	if err := ctr.Export(ctx, output, *cfg); err != nil {
		return nil, err
	}

	return p.archiveInfo(output, platform)
}

// Executes a single plan step against the build container.
func (p *pipeline) executeStep(ctx context.Context, ctr *runtime.Container, step recipe.Step, state *stepState) error {
	switch step.Kind {
	case recipe.StepRun:
		slog.Info(step.Desc, "command", step.Run)
		result, err := ctr.Exec(ctx, state.shell, step.Run, state.env, state.workdir)
		if err != nil {
			return err
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, result.ExitCode, result.Stderr)
		}
		return nil

	case recipe.StepCopy:
		slog.Info(step.Desc, "src", step.Src, "dest", step.Dest)
		return p.executeCopy(ctx, ctr, step.Src, step.Dest)

	case recipe.StepMkdir:
		slog.Info(step.Desc, "path", step.Path)
		if err := ctr.MkdirAll(ctx, step.Path); err != nil {
			return err
		}
		// Later run steps execute inside the working directory once it
		// exists.
		if step.Path == p.rec.Workdir {
			state.workdir = p.rec.Workdir
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown step kind %d", ErrBuild, step.Kind)
	}
}

// Destroys all build containers.
func (p *pipeline) destroyContainers(ctx context.Context) {
	for _, ctr := range p.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a unique container ID for a build, scoped to the recipe and
// platform.
func (p *pipeline) containerID(platform string) string {
	return fmt.Sprintf("%s-build-%s", p.rec.Name, platformSlug(platform))
}

// Returns the output directory for a specific platform.
//
// When building for a single platform, the output directory is left
// as-is to preserve the {output}/image.tar convention. Multi-platform
// builds get a subdirectory per platform (e.g., {output}/linux-amd64).
func (p *pipeline) platformOutput(platform string) string {
	if len(p.platforms) == 1 {
		return p.output
	}
	return filepath.Join(p.output, platformSlug(platform))
}

// Stats the exported archive and wraps it in an [Archive].
func (p *pipeline) archiveInfo(output, platform string) (*Archive, error) {
	path := filepath.Join(output, runtime.ExportFilename)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	return &Archive{
		Platform: platform,
		Path:     path,
		Size:     info.Size(),
	}, nil
}

// Converts a platform string to a filesystem-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes
// "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
