package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	"github.com/bromestriker/bromeforge/internal/paths"
	"github.com/bromestriker/bromeforge/internal/recipe"
	"github.com/bromestriker/bromeforge/internal/runtime"
)

// Controls recipe execution.
type Options struct {
	Recipe    *recipe.Recipe // Recipe to execute.
	Context   string         // Build context directory, root for resolving copy sources.
	Output    string         // Directory for the exported image.
	Platforms []string       // Target platforms (e.g., ["linux/amd64"]). Defaults to host.
}

// One exported image archive.
type Archive struct {
	Platform string // OCI platform the archive was built for.
	Path     string // Path to the archive on disk.
	Size     int64  // Archive size in bytes.
}

// Returned after successful recipe execution.
type Result struct {
	Output   string    // Directory containing the exported image(s).
	Archives []Archive // One archive per target platform.
}

// Executes a recipe against the container runtime.
//
// The recipe is lowered to its plan and run in a container started from
// the base image. The final filesystem is exported to the output
// directory as an OCI archive carrying the recipe's image config.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{"linux/" + goruntime.GOARCH}
	}

	plan, err := opts.Recipe.Plan()
	if err != nil {
		return nil, err
	}

	slog.Info("executing recipe",
		"recipe", opts.Recipe.Name,
		"base", opts.Recipe.Base,
		"output", opts.Output,
		"steps", len(plan),
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return newPipeline(rt, opts).run(ctx, plan)
}
