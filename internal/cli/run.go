package cli

import (
	"context"
	"fmt"

	"github.com/bromestriker/bromeforge/internal/launch"
)

// Represents the 'bromeforge run' command.
type RunCmd struct {
	recipeFlags
	Archive string            `arg:"" help:"OCI archive to run." type:"path"`
	EnvFile string            `help:"Environment file to load. Defaults to ./.env when present." type:"path" placeholder:"PATH"`
	Env     map[string]string `short:"e" help:"Environment overrides (KEY=VALUE)."`
	DataDir string            `help:"Host directory backing the service's data directories." type:"path" placeholder:"PATH"`
}

// Executes the run command.
//
// Blocks until the service exits or the command is interrupted.
func (c *RunCmd) Run(ctx context.Context) error {
	rec, err := c.load()
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	code, err := launch.Run(ctx, rt, launch.Options{
		Recipe:  rec,
		Archive: c.Archive,
		EnvFile: c.EnvFile,
		Env:     c.Env,
		DataDir: c.DataDir,
	})
	if err != nil {
		return err
	}

	if code != 0 {
		return fmt.Errorf("%w: exit code %d", ErrServiceFailed, code)
	}
	return nil
}
