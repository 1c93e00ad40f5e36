// Package recipe models the bromestriker image build as data.
//
// A [Recipe] is the declarative description of one image variant: the base
// image, the system packages, any auxiliary runtimes installed from a
// remote script, the dependency manifest, the payload copied into the
// image, and the entrypoint the container runs as process 1.
//
// Recipes are lowered to a linear [Plan] of steps executed in a fixed
// order: system packages, auxiliary runtimes, working directory,
// dependency manifest, dependency install, payload, data directories.
// There is no branching; a failed step aborts the build.
//
// Recipes can be loaded from YAML, rendered to an equivalent Dockerfile,
// or imported from an existing Dockerfile. The two shipped variants
// ("full" and "slim") are available via [Variant].
package recipe
