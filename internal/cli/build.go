package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/bromestriker/bromeforge/internal/build"
	"github.com/bromestriker/bromeforge/internal/protocol"
	"github.com/bromestriker/bromeforge/internal/recipe"
	"github.com/bromestriker/bromeforge/internal/runtime"
)

// Represents the 'bromeforge build' command.
type BuildCmd struct {
	recipeFlags
	Context  string   `short:"c" help:"Build context directory." default:"." type:"path"`
	Output   string   `short:"o" help:"Output directory for the archive." default:"dist" type:"path"`
	Platform []string `short:"p" help:"Target platform (repeatable, e.g. linux/amd64)."`
	Remote   bool     `help:"Send the build to the daemon instead of running locally."`
}

// Executes the build command.
func (c *BuildCmd) Run(ctx context.Context) error {
	rec, err := c.load()
	if err != nil {
		return err
	}

	if c.Remote {
		return c.runRemote(rec)
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, rt, build.Options{
		Recipe:    rec,
		Context:   c.Context,
		Output:    c.Output,
		Platforms: c.Platform,
	})
	if err != nil {
		return err
	}

	for _, a := range result.Archives {
		fmt.Printf("%s\t%s\t%s\n", a.Platform, a.Path, humanize.Bytes(uint64(a.Size)))
	}
	return nil
}

// Sends the build request to the daemon.
func (c *BuildCmd) runRemote(rec *recipe.Recipe) error {
	env, payload, err := protocol.Roundtrip(socketPath(), protocol.CmdBuild, &protocol.BuildRequest{
		Recipe:    rec,
		Context:   c.Context,
		Output:    c.Output,
		Platforms: c.Platform,
	})
	if err != nil {
		return err
	}

	result, err := decodeResponse[protocol.BuildResult](env, payload)
	if err != nil {
		return err
	}

	for _, a := range result.Archives {
		fmt.Printf("%s\t%s\t%s\n", a.Platform, a.Path, humanize.Bytes(uint64(a.Size)))
	}
	return nil
}

// Opens a connection to the container runtime using the root flags.
func openRuntime() (*runtime.Runtime, error) {
	return runtime.New(RootCmd.ContainerdAddress, RootCmd.Namespace)
}
