package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bromestriker/bromeforge/internal/paths"
)

// Represents the 'bromeforge render' command.
type RenderCmd struct {
	recipeFlags
	Output string `short:"o" help:"Write the Dockerfile to a file instead of stdout." type:"path" placeholder:"PATH"`
}

// Executes the render command.
//
// Lowers the recipe to Dockerfile text, so a recipe can be built with
// any standard image builder as well.
func (c *RenderCmd) Run(ctx context.Context) error {
	rec, err := c.load()
	if err != nil {
		return err
	}

	text, err := rec.Dockerfile()
	if err != nil {
		return err
	}

	if c.Output == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(c.Output, []byte(text), paths.DefaultFileMode)
}
