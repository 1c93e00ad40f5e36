package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bromestriker/bromeforge/internal/paths"
	"github.com/bromestriker/bromeforge/internal/recipe"
)

// Flags shared by commands that operate on a recipe. A recipe file wins
// over the built-in variant selection.
type recipeFlags struct {
	Recipe  string `short:"r" help:"Recipe file, or the bare name of a recipe in the user recipe directory." placeholder:"PATH|NAME"`
	Variant string `help:"Built-in recipe variant." enum:"full,slim" default:"full"`
}

// Loads the selected recipe.
func (f recipeFlags) load() (*recipe.Recipe, error) {
	if f.Recipe != "" {
		return recipe.Load(resolveRecipePath(f.Recipe))
	}
	return recipe.Variant(f.Variant)
}

// Resolves a recipe argument to a file path.
//
// An existing file is used as given. A bare name (no path separator)
// that does not exist in the working directory falls back to
// <recipes dir>/<name>.yaml, so saved recipes can be addressed by name.
func resolveRecipePath(name string) string {
	if _, err := os.Stat(name); err == nil {
		return name
	}
	if !strings.ContainsRune(name, filepath.Separator) {
		return filepath.Join(paths.Recipes(), name+".yaml")
	}
	return name
}
