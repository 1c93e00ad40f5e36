package launch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bromestriker/bromeforge/internal/recipe"
)

func TestAssembleEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "DISCORD_TOKEN=abc123\nWEB_PORT=9090\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	defaults := map[string]string{
		"WEB_PORT": "8080",
		"DB_PATH":  "data/bromestriker.db",
	}
	overrides := map[string]string{"GUILD_ID": "42"}

	got, err := assembleEnv(defaults, envFile, overrides)
	if err != nil {
		t.Fatalf("assembleEnv() error = %v", err)
	}

	// File overrides defaults, explicit overrides win, output is sorted.
	want := []string{
		"DB_PATH=data/bromestriker.db",
		"DISCORD_TOKEN=abc123",
		"GUILD_ID=42",
		"WEB_PORT=9090",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("assembleEnv() = %v, want %v", got, want)
	}
}

func TestAssembleEnvOverridesBeatFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("WEB_PORT=9090\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	got, err := assembleEnv(nil, envFile, map[string]string{"WEB_PORT": "7070"})
	if err != nil {
		t.Fatalf("assembleEnv() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"WEB_PORT=7070"}) {
		t.Fatalf("assembleEnv() = %v", got)
	}
}

func TestAssembleEnvNoFile(t *testing.T) {
	got, err := assembleEnv(map[string]string{"A": "1"}, "", nil)
	if err != nil {
		t.Fatalf("assembleEnv() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"A=1"}) {
		t.Fatalf("assembleEnv() = %v", got)
	}
}

func TestAssembleEnvMissingFile(t *testing.T) {
	if _, err := assembleEnv(nil, filepath.Join(t.TempDir(), "nope.env"), nil); err == nil {
		t.Fatal("assembleEnv() expected error for missing env file")
	}
}

func TestResolveEnvFileExplicitMissing(t *testing.T) {
	if _, err := resolveEnvFile(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatal("resolveEnvFile() expected error for missing explicit file")
	}
}

func TestResolveEnvFileExplicit(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "prod.env")
	if err := os.WriteFile(envFile, []byte("A=1\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	got, err := resolveEnvFile(envFile)
	if err != nil {
		t.Fatalf("resolveEnvFile() error = %v", err)
	}
	if got != envFile {
		t.Errorf("resolveEnvFile() = %q, want %q", got, envFile)
	}
}

func TestDataMounts(t *testing.T) {
	root := t.TempDir()
	rec := recipe.Slim()

	mounts, err := dataMounts(rec, root)
	if err != nil {
		t.Fatalf("dataMounts() error = %v", err)
	}
	if len(mounts) != 1 {
		t.Fatalf("got %d mounts, want 1", len(mounts))
	}

	m := mounts[0]
	if m.Destination != "/app/data" {
		t.Errorf("Destination = %q", m.Destination)
	}
	if m.Type != "bind" {
		t.Errorf("Type = %q, want bind", m.Type)
	}
	wantSource := filepath.Join(root, rec.Name, "data")
	if m.Source != wantSource {
		t.Errorf("Source = %q, want %q", m.Source, wantSource)
	}
	if !reflect.DeepEqual(m.Options, []string{"rbind", "rw"}) {
		t.Errorf("Options = %v", m.Options)
	}

	info, err := os.Stat(wantSource)
	if err != nil || !info.IsDir() {
		t.Errorf("mount source not created: %v", err)
	}
}

func TestDataMountsNone(t *testing.T) {
	rec := recipe.Full()
	rec.DataDirs = nil

	mounts, err := dataMounts(rec, t.TempDir())
	if err != nil {
		t.Fatalf("dataMounts() error = %v", err)
	}
	if mounts != nil {
		t.Fatalf("mounts = %v, want nil", mounts)
	}
}
