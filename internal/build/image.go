package build

import (
	"fmt"

	"github.com/bromestriker/bromeforge/internal/recipe"
	"github.com/bromestriker/bromeforge/internal/runtime"
)

// Translates a recipe into the OCI image config for the exported image.
//
// The entrypoint runs the service as process 1, environment defaults
// and working directory are stamped in, the recipe port becomes an
// exposed TCP port, and data directories are declared as volumes.
func imageConfig(rec *recipe.Recipe) (*runtime.ImageConfig, error) {
	argv, err := rec.Argv()
	if err != nil {
		return nil, err
	}

	cfg := &runtime.ImageConfig{
		Entrypoint: argv,
		Env:        environ(rec.Env),
		WorkingDir: rec.Workdir,
		Volumes:    rec.DataDirs,
	}

	if rec.Port != 0 {
		cfg.ExposedPorts = []string{fmt.Sprintf("%d/tcp", rec.Port)}
	}

	return cfg, nil
}
