// Parses flags and dispatches subcommands for the bromeforge CLI.
//
// The CLI accepts the following global flags:
//
//	-q, --quiet       Suppress informational output.
//	-v, --verbose     Enable verbose output.
//	-d, --debug       Enable debug output.
//	-s, --socket      Daemon Unix socket path.
//	--containerd-address  Containerd socket address.
//	--namespace           Containerd namespace.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level and
// verbosity before the command runs. Build and verify run locally by
// default and can be sent to a running daemon with --remote.
package cli
