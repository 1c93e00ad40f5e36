package internal

import (
	"strconv"
	"sync/atomic"
)

// Output modes for the running process. Seeded from linker flags at
// startup; the CLI writes the parsed -q/-d/-v flags back through the
// setters so everything downstream sees one consistent state.
var (
	quiet   atomic.Bool
	debug   atomic.Bool
	verbose atomic.Bool
)

func init() {
	seedMode(&quiet, rawQuiet)
	seedMode(&debug, rawDebug)
	seedMode(&verbose, rawVerbose)
}

// Stores a linker-flag default into a mode. Values that do not parse as
// a bool leave the mode off.
func seedMode(mode *atomic.Bool, raw string) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return
	}
	mode.Store(v)
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quiet.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quiet.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debug.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debug.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	verbose.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verbose.Load()
}
