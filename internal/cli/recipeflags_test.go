package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bromestriker/bromeforge/internal/paths"
)

func TestResolveRecipePath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(existing, []byte("name: x\n"), 0o644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}

	t.Run("existing file used as given", func(t *testing.T) {
		if got := resolveRecipePath(existing); got != existing {
			t.Fatalf("resolveRecipePath() = %q, want %q", got, existing)
		}
	})

	t.Run("bare name falls back to recipe dir", func(t *testing.T) {
		got := resolveRecipePath("slimmer")
		want := filepath.Join(paths.Recipes(), "slimmer.yaml")
		if got != want {
			t.Fatalf("resolveRecipePath() = %q, want %q", got, want)
		}
	})

	t.Run("missing path with separator kept", func(t *testing.T) {
		missing := filepath.Join(dir, "nope", "recipe.yaml")
		if got := resolveRecipePath(missing); got != missing {
			t.Fatalf("resolveRecipePath() = %q, want %q", got, missing)
		}
		if strings.Contains(resolveRecipePath(missing), paths.Recipes()) {
			t.Fatal("path with separator must not resolve under the recipe dir")
		}
	})
}
