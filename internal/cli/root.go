package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/bromestriker/bromeforge/internal"
	"github.com/bromestriker/bromeforge/internal/paths"
	"github.com/bromestriker/bromeforge/internal/server"
)

// Represents the root command for the bromeforge CLI.
var RootCmd struct {
	Quiet             bool   `short:"q" help:"Suppress informational output."`
	Verbose           bool   `short:"v" help:"Enable verbose output."`
	Debug             bool   `short:"d" help:"Enable debug output."`
	Socket            string `short:"s" help:"Override the default daemon socket path." placeholder:"PATH"`
	ContainerdAddress string `help:"Containerd socket address." default:"${containerd_address}" placeholder:"PATH"`
	Namespace         string `help:"Containerd namespace for images and containers." default:"${containerd_namespace}"`

	Build   BuildCmd   `cmd:"" help:"Build a recipe into an OCI image archive."`
	Render  RenderCmd  `cmd:"" help:"Render a recipe as a Dockerfile."`
	Import  ImportCmd  `cmd:"" help:"Import a Dockerfile as a recipe."`
	Verify  VerifyCmd  `cmd:"" help:"Verify a built archive against its recipe."`
	Extract ExtractCmd `cmd:"" help:"Extract a path from a built archive."`
	Run     RunCmd     `cmd:"" help:"Run a built archive as a service."`
	Daemon  DaemonCmd  `cmd:"" help:"Manage the build daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds, verifies, and runs service container images from declarative recipes."),
		kong.UsageOnError(),
		kong.Vars{
			"version":              internal.VersionString(),
			"containerd_address":   server.DefaultContainerdAddress,
			"containerd_namespace": server.DefaultContainerdNamespace,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger(false)

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// The CLI logs human-readable text; the daemon switches to JSON so its
// output can be collected by a log shipper.
func configureLogger(json bool) {
	// Flags win over the linker-flag defaults; committing them to the
	// shared mode state keeps later readers in agreement with the logger.
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}

	level := slog.LevelInfo
	if internal.IsDebug() {
		level = slog.LevelDebug
	} else if internal.IsQuiet() {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: internal.IsVerbose(),
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Returns the daemon socket path, honoring the --socket override.
func socketPath() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	return paths.Socket()
}
