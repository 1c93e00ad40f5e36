package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
)

// Represents the 'bromeforge extract' command.
type ExtractCmd struct {
	Archive string `arg:"" help:"OCI archive to read from." type:"path"`
	Path    string `arg:"" help:"Absolute path inside the image to extract."`
	Output  string `short:"o" help:"Output tar file. Defaults to <basename>.tar." type:"path" placeholder:"PATH"`
}

// Executes the extract command.
//
// Imports the archive, starts an idle container from it, and streams the
// named path out as a tar archive. Useful for pulling the installed
// dependency manifest or the service database out of a built image
// without running its entrypoint.
func (c *ExtractCmd) Run(ctx context.Context) error {
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("%w: path %q must be absolute", ErrExtract, c.Path)
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	tag := "bromeforge/extract:latest"
	if err := rt.ImportArchive(ctx, c.Archive, tag); err != nil {
		return err
	}
	defer rt.DestroyImage(context.Background(), tag)

	ctr, err := rt.StartFromTag(ctx, tag, "bromeforge-extract")
	if err != nil {
		return err
	}
	defer ctr.Destroy(context.Background())

	output := extractOutput(c.Output, c.Path)
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}
	defer f.Close()

	if err := ctr.CopyFrom(ctx, f, c.Path); err != nil {
		return err
	}

	slog.Info("path extracted", "container", ctr.ID(), "path", c.Path, "output", output)

	return ctr.Stop(ctx)
}

// Returns the output filename, deriving it from the extracted path when
// no explicit output was given.
func extractOutput(explicit, imagePath string) string {
	if explicit != "" {
		return explicit
	}
	base := path.Base(imagePath)
	if base == "/" || base == "." {
		base = "rootfs"
	}
	return base + ".tar"
}
