package verify

import (
	"archive/tar"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/bromestriker/bromeforge/internal/recipe"
)

// Writes a minimal OCI archive (index -> manifest -> config) to a temp
// file and returns its path.
func writeTestArchive(t *testing.T, cfg ocispec.Image) string {
	t.Helper()

	configData, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configDigest := digest.FromBytes(configData)

	manifest := ocispec.Manifest{
		MediaType: ocispec.MediaTypeImageManifest,
		Config: ocispec.Descriptor{
			MediaType: ocispec.MediaTypeImageConfig,
			Digest:    configDigest,
			Size:      int64(len(configData)),
		},
	}
	manifestData, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	manifestDigest := digest.FromBytes(manifestData)

	index := ocispec.Index{
		Manifests: []ocispec.Descriptor{{
			MediaType: ocispec.MediaTypeImageManifest,
			Digest:    manifestDigest,
			Size:      int64(len(manifestData)),
		}},
	}
	indexData, err := json.Marshal(index)
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}

	path := filepath.Join(t.TempDir(), "image.tar")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer fh.Close()

	tw := tar.NewWriter(fh)
	entries := map[string][]byte{
		"index.json": indexData,
		"blobs/sha256/" + manifestDigest.Encoded(): manifestData,
		"blobs/sha256/" + configDigest.Encoded():   configData,
	}
	for name, data := range entries {
		header := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(data))}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("write header %s: %v", name, err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	return path
}

func TestReadArchiveConfig(t *testing.T) {
	want := ocispec.Image{
		Config: ocispec.ImageConfig{
			Entrypoint: []string{"python", "-m", "bromestriker"},
			WorkingDir: "/app",
		},
	}

	meta, err := readArchive(writeTestArchive(t, want))
	if err != nil {
		t.Fatalf("readArchive() error = %v", err)
	}

	cfg, err := meta.config("")
	if err != nil {
		t.Fatalf("config() error = %v", err)
	}
	if cfg.Config.WorkingDir != "/app" {
		t.Errorf("WorkingDir = %q", cfg.Config.WorkingDir)
	}
	if len(cfg.Config.Entrypoint) != 3 {
		t.Errorf("Entrypoint = %v", cfg.Config.Entrypoint)
	}
}

func TestReadArchiveMissingIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tar")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	tw := tar.NewWriter(fh)
	tw.Close()
	fh.Close()

	if _, err := readArchive(path); err == nil {
		t.Fatal("readArchive() expected error for archive without index.json")
	}
}

func TestBlobDigest(t *testing.T) {
	dgst := digest.FromString("layer")

	got, err := blobDigest("blobs/sha256/" + dgst.Encoded())
	if err != nil {
		t.Fatalf("blobDigest() error = %v", err)
	}
	if got != dgst {
		t.Errorf("blobDigest() = %s, want %s", got, dgst)
	}

	if _, err := blobDigest("blobs/oops"); err == nil {
		t.Error("blobDigest() expected error for malformed path")
	}
}

func TestProbesFull(t *testing.T) {
	checks := probes(recipe.Full())

	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.name
	}
	joined := strings.Join(names, "\n")

	for _, want := range []string{
		"package ffmpeg",
		"package curl",
		"package unzip",
		"package ca-certificates",
		"runtime deno",
		"module bromestriker",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("probes missing %q in:\n%s", want, joined)
		}
	}
}

func TestProbesSlim(t *testing.T) {
	checks := probes(recipe.Slim())

	var dataDir, module bool
	for _, c := range checks {
		switch c.name {
		case "data dir /app/data":
			dataDir = true
			if !strings.Contains(c.command, "test -w /app/data") {
				t.Errorf("data dir probe does not test writability: %q", c.command)
			}
		case "module bromestriker":
			module = true
			if c.workdir != "/app" {
				t.Errorf("module probe workdir = %q, want /app", c.workdir)
			}
		}
	}
	if !dataDir {
		t.Error("probes missing writable data dir check")
	}
	if !module {
		t.Error("probes missing module check")
	}
}

func TestEntrypointModule(t *testing.T) {
	tests := []struct {
		entrypoint string
		want       string
		ok         bool
	}{
		{"python -m bromestriker", "bromestriker", true},
		{"python3 -m bromestriker", "bromestriker", true},
		{"python server.py", "", false},
		{"/bin/sh -c something", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.entrypoint, func(t *testing.T) {
			rec := &recipe.Recipe{Entrypoint: tt.entrypoint}
			got, ok := entrypointModule(rec)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("entrypointModule() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCheckConfig(t *testing.T) {
	rec := recipe.Slim()
	rec.Port = 8080
	cfg := &ocispec.Image{
		Config: ocispec.ImageConfig{
			Entrypoint:   []string{"python", "-m", "bromestriker"},
			WorkingDir:   "/app",
			ExposedPorts: map[string]struct{}{"8080/tcp": {}},
			Volumes:      map[string]struct{}{"/app/data": {}},
		},
	}

	report := &Report{}
	checkConfig(report, rec, cfg)

	if !report.OK() {
		t.Fatalf("expected all config checks to pass, failed: %v", report.Failed())
	}
	if len(report.Checks) != 4 {
		t.Errorf("got %d checks, want 4", len(report.Checks))
	}
}

func TestCheckConfigMismatch(t *testing.T) {
	rec := recipe.Slim()
	rec.Port = 8080
	cfg := &ocispec.Image{
		Config: ocispec.ImageConfig{
			Entrypoint: []string{"/bin/sh"},
			WorkingDir: "/srv",
		},
	}

	report := &Report{}
	checkConfig(report, rec, cfg)

	if report.OK() {
		t.Fatal("expected config checks to fail")
	}
	// Entrypoint, workdir, port, and volume should all fail but still be
	// recorded.
	if len(report.Failed()) != 4 {
		t.Errorf("got %d failed checks, want 4: %v", len(report.Failed()), report.Failed())
	}
}
