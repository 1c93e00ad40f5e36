// Package launch runs built image archives as services.
//
// An archive is imported into the container runtime and started with
// the image's own entrypoint as process 1. The environment is assembled
// in layers (recipe defaults, then a .env file, then explicit
// overrides) and the recipe's data directories are bind-mounted from
// the host so databases and caches survive container replacement.
package launch
