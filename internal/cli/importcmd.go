package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bromestriker/bromeforge/internal/paths"
	"github.com/bromestriker/bromeforge/internal/recipe"
)

// Represents the 'bromeforge import' command.
type ImportCmd struct {
	Dockerfile string `arg:"" help:"Dockerfile to import." type:"path"`
	Output     string `short:"o" help:"Write the recipe to a file instead of stdout." type:"path" placeholder:"PATH"`
}

// Executes the import command.
//
// Parses an existing Dockerfile into a recipe, so hand-written service
// Dockerfiles can be adopted without re-describing them.
func (c *ImportCmd) Run(ctx context.Context) error {
	rec, err := recipe.ImportFile(c.Dockerfile)
	if err != nil {
		return err
	}

	data, err := rec.Marshal()
	if err != nil {
		return err
	}

	if c.Output == "" {
		fmt.Print(string(data))
		return nil
	}
	return os.WriteFile(c.Output, data, paths.DefaultFileMode)
}
