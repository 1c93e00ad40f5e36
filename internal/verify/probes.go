package verify

import (
	"fmt"

	"github.com/bromestriker/bromeforge/internal/recipe"
)

// One command executed inside the verification container. A probe passes
// when its command exits zero.
type probe struct {
	name    string
	command string
	workdir string
}

// Derives the runtime probes for a recipe.
//
// System packages must be installed (tools additionally reachable on
// PATH), auxiliary runtimes must resolve on PATH through their symlinks,
// data directories must exist and be writable, and the entrypoint module
// must be importable from the working directory.
func probes(rec *recipe.Recipe) []probe {
	var checks []probe

	for _, pkg := range rec.Packages {
		checks = append(checks, probe{
			name: "package " + pkg,
			command: fmt.Sprintf(
				"command -v %s >/dev/null 2>&1 || dpkg -s %s >/dev/null 2>&1", pkg, pkg),
		})
	}

	for _, rt := range rec.Runtimes {
		checks = append(checks, probe{
			name:    "runtime " + rt.Name,
			command: fmt.Sprintf("command -v %s >/dev/null 2>&1", rt.Name),
		})
	}

	for _, dir := range rec.DataDirs {
		checks = append(checks, probe{
			name:    "data dir " + dir,
			command: fmt.Sprintf("test -d %s && test -w %s", dir, dir),
		})
	}

	if mod, ok := entrypointModule(rec); ok {
		checks = append(checks, probe{
			name:    "module " + mod,
			command: fmt.Sprintf("python -c 'import %s'", mod),
			workdir: rec.Workdir,
		})
	}

	return checks
}

// Extracts the module name from a "python -m <module>" entrypoint.
func entrypointModule(rec *recipe.Recipe) (string, bool) {
	argv, err := rec.Argv()
	if err != nil || len(argv) != 3 {
		return "", false
	}
	if argv[0] != "python" && argv[0] != "python3" {
		return "", false
	}
	if argv[1] != "-m" {
		return "", false
	}
	return argv[2], true
}
