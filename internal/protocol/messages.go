package protocol

import "github.com/bromestriker/bromeforge/internal/recipe"

// Asks the daemon to execute a recipe.
type BuildRequest struct {
	Recipe    *recipe.Recipe `json:"recipe"`
	Context   string         `json:"context"`
	Output    string         `json:"output"`
	Platforms []string       `json:"platforms,omitempty"`
}

// Describes one exported archive in a build result.
type ArchiveInfo struct {
	Platform string `json:"platform"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// Returned for a successful build.
type BuildResult struct {
	Job      string        `json:"job"` // Daemon-assigned job ID.
	Output   string        `json:"output"`
	Archives []ArchiveInfo `json:"archives"`
}

// Asks the daemon to verify a built archive against its recipe.
type VerifyRequest struct {
	Recipe   *recipe.Recipe `json:"recipe"`
	Archive  string         `json:"archive"`
	Platform string         `json:"platform,omitempty"`
	Keep     bool           `json:"keep,omitempty"` // Keep the imported image after verification.
}

// One verified property in a verify result.
type CheckResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Returned for a completed verification, passing or not.
type VerifyResult struct {
	Job         string        `json:"job"` // Daemon-assigned job ID.
	Tag         string        `json:"tag"`
	OK          bool          `json:"ok"`
	Checks      []CheckResult `json:"checks"`
	Assumptions []string      `json:"assumptions,omitempty"`
}

// Returned for a status command.
type StatusResult struct {
	Running    bool   `json:"running"`
	Version    string `json:"version"`
	Pid        int    `json:"pid"`
	Uptime     string `json:"uptime"`
	Builds     int    `json:"builds"`
	Verifies   int    `json:"verifies"`
	BuiltBytes string `json:"built_bytes"` // Human-readable total size of exported archives.
}

// Returned when a command fails.
type ErrorResult struct {
	Message string `json:"message"`
}
