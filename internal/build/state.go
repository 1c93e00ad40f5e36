package build

import (
	"sort"

	"github.com/bromestriker/bromeforge/internal/recipe"
)

// Default shell used for run steps.
const defaultShell = "/bin/sh"

// Tracks the execution environment for plan steps.
//
// The shell and environment come from the recipe and stay fixed for the
// whole build. The working directory starts empty and is set once the
// recipe's working directory has been created, so early steps (package
// installs) do not depend on it existing.
type stepState struct {
	shell   string
	workdir string
	env     []string
}

// Creates the step state for a recipe.
func newStepState(rec *recipe.Recipe) *stepState {
	return &stepState{
		shell: defaultShell,
		env:   environ(rec.Env),
	}
}

// Formats an env map as a sorted list of "key=value" strings suitable
// for passing to container exec.
func environ(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for k, v := range env {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries
}
