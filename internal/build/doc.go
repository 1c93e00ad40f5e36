// Package build executes recipe plans against the container runtime.
//
// A build starts a container from the recipe's base image, dispatches
// the plan's steps (shell commands, host file copies, and directory
// creation), and exports the final filesystem as an OCI image archive
// carrying the recipe's entrypoint, environment, and data directories in
// its config. Multi-platform builds repeat the pipeline per platform,
// writing each result to a platform-specific output directory.
//
// Steps run in the plan's fixed order and the first failure aborts the
// build; the build container is destroyed either way.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Recipe:  recipe.Full(),
//	    Context: ".",
//	    Output:  "dist",
//	})
//	if err != nil {
//	    return err
//	}
package build
