package runtime

import (
	"fmt"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestApplyImageConfig(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Cmd = []string{"python3"}
	config.Config.Env = []string{"PATH=/usr/local/bin:/usr/bin"}

	applyImageConfig(&config, ImageConfig{
		Entrypoint:   []string{"python", "-m", "bromestriker"},
		Env:          []string{"DB_PATH=/app/data/bromestriker.db"},
		WorkingDir:   "/app",
		ExposedPorts: []string{"8080/tcp"},
		Volumes:      []string{"/app/data"},
	})

	if len(config.Config.Entrypoint) != 3 || config.Config.Entrypoint[2] != "bromestriker" {
		t.Fatalf("entrypoint = %v", config.Config.Entrypoint)
	}
	if config.Config.Cmd != nil {
		t.Fatalf("cmd = %v, want nil after entrypoint override", config.Config.Cmd)
	}
	if len(config.Config.Env) != 2 {
		t.Fatalf("env = %v, want base entry plus DB_PATH", config.Config.Env)
	}
	if config.Config.WorkingDir != "/app" {
		t.Fatalf("workdir = %q, want /app", config.Config.WorkingDir)
	}
	if _, ok := config.Config.ExposedPorts["8080/tcp"]; !ok {
		t.Fatalf("exposed ports = %v, want 8080/tcp", config.Config.ExposedPorts)
	}
	if _, ok := config.Config.Volumes["/app/data"]; !ok {
		t.Fatalf("volumes = %v, want /app/data", config.Config.Volumes)
	}
}

func TestApplyImageConfigEmptyEntrypointKeepsBase(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Entrypoint = []string{"python3"}
	config.Config.Cmd = []string{"-m", "http.server"}

	applyImageConfig(&config, ImageConfig{})

	if len(config.Config.Entrypoint) != 1 || config.Config.Entrypoint[0] != "python3" {
		t.Fatalf("entrypoint = %v, want base preserved", config.Config.Entrypoint)
	}
	if len(config.Config.Cmd) != 2 {
		t.Fatalf("cmd = %v, want base preserved", config.Config.Cmd)
	}
}

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{
			Digest: digest.FromString("config"),
		},
		Layers: []ocispec.Descriptor{
			{Digest: digest.FromString("layer0")},
			{Digest: digest.FromString("layer1")},
		},
	}

	labels := manifestGCLabels(m)

	configLabel := labels["containerd.io/gc.ref.content.config"]
	if configLabel != m.Config.Digest.String() {
		t.Fatalf("config label = %q, want %q", configLabel, m.Config.Digest.String())
	}

	for i, layer := range m.Layers {
		key := fmt.Sprintf("containerd.io/gc.ref.content.l.%d", i)
		if labels[key] != layer.Digest.String() {
			t.Fatalf("labels[%q] = %q, want %q", key, labels[key], layer.Digest.String())
		}
	}

	if len(labels) != 3 {
		t.Fatalf("len(labels) = %d, want 3", len(labels))
	}
}

func TestIndexGCLabels(t *testing.T) {
	idx := ocispec.Index{
		Manifests: []ocispec.Descriptor{
			{Digest: digest.FromString("m0")},
			{Digest: digest.FromString("m1")},
		},
	}

	labels := indexGCLabels(idx)
	if len(labels) != 2 {
		t.Fatalf("len(labels) = %d, want 2", len(labels))
	}
	if labels["containerd.io/gc.ref.content.m.0"] != idx.Manifests[0].Digest.String() {
		t.Fatal("manifest 0 label mismatch")
	}
	if labels["containerd.io/gc.ref.content.m.1"] != idx.Manifests[1].Digest.String() {
		t.Fatal("manifest 1 label mismatch")
	}
}
