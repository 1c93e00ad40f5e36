package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/bromestriker/bromeforge/internal"
)

const (

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/bromeforge or /run/user/<uid>/bromeforge
//	macOS:   ~/Library/Caches/bromeforge/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, internal.Name)
	}
	return filepath.Join(xdg.CacheHome, internal.Name, "run")
}

// Default path to the Unix domain socket for CLI-to-daemon communication.
//
//	Linux:   $XDG_RUNTIME_DIR/bromeforge/bromeforge.sock
//	macOS:   ~/Library/Caches/bromeforge/run/bromeforge.sock
func Socket() string {
	return filepath.Join(Runtime(), internal.Name+".sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/bromeforge/bromeforge.pid
//	macOS:   ~/Library/Caches/bromeforge/run/bromeforge.pid
func PIDFile() string {
	return filepath.Join(Runtime(), internal.Name+".pid")
}

// Default directory for user-provided recipe files.
//
//	Linux:   ~/.config/bromeforge/recipes
//	macOS:   ~/Library/Application Support/bromeforge/recipes
func Recipes() string {
	return filepath.Join(xdg.ConfigHome, internal.Name, "recipes")
}

// Default host directory bind-mounted over the image's data directory when
// running the service, so its database survives container restarts.
//
//	Linux:   ~/.local/share/bromeforge/data
//	macOS:   ~/Library/Application Support/bromeforge/data
func Data() string {
	return filepath.Join(xdg.DataHome, internal.Name, "data")
}
