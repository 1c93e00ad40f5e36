package cli

import (
	"context"
	"fmt"

	"github.com/bromestriker/bromeforge/internal"
)

// Represents the 'bromeforge version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
