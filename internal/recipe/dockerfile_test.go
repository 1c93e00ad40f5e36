package recipe

import (
	"strings"
	"testing"
)

func TestDockerfileFullVariant(t *testing.T) {
	out, err := Full().Dockerfile()
	if err != nil {
		t.Fatalf("Dockerfile returned error: %v", err)
	}

	for _, want := range []string{
		"FROM python:3.11-slim",
		"apt-get install -y --no-install-recommends ffmpeg curl unzip ca-certificates",
		"rm -rf /var/lib/apt/lists/*",
		"curl -fsSL https://deno.land/install.sh | sh",
		"ln -sf /root/.deno/bin/deno /usr/local/bin/deno",
		"WORKDIR /app",
		"COPY requirements.txt ./",
		"RUN pip install --no-cache-dir -r requirements.txt",
		"COPY . .",
		`CMD ["python", "-m", "bromestriker"]`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered Dockerfile missing %q:\n%s", want, out)
		}
	}

	if !strings.HasPrefix(out, "FROM ") {
		t.Fatal("Dockerfile does not start with FROM")
	}
	if !strings.HasSuffix(strings.TrimSpace(out), `CMD ["python", "-m", "bromestriker"]`) {
		t.Fatal("CMD is not the last instruction")
	}
}

func TestDockerfileSlimVariant(t *testing.T) {
	out, err := Slim().Dockerfile()
	if err != nil {
		t.Fatalf("Dockerfile returned error: %v", err)
	}

	for _, want := range []string{
		"FROM python:3.13-slim",
		"COPY bromestriker bromestriker",
		"COPY README.md README.md",
		"RUN mkdir -p /app/data",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered Dockerfile missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "apt-get") {
		t.Fatal("slim Dockerfile installs system packages")
	}
	if strings.Contains(out, "deno") {
		t.Fatal("slim Dockerfile installs deno")
	}
}

func TestDockerfileEnvAndPort(t *testing.T) {
	r := Slim()
	r.Env = map[string]string{"WEB_PORT": "8080", "DB_PATH": "/app/data/bromestriker.db"}
	r.Port = 8080

	out, err := r.Dockerfile()
	if err != nil {
		t.Fatalf("Dockerfile returned error: %v", err)
	}

	// Env lines come out in key order for stable rendering.
	dbIdx := strings.Index(out, "ENV DB_PATH=")
	webIdx := strings.Index(out, "ENV WEB_PORT=")
	if dbIdx == -1 || webIdx == -1 {
		t.Fatalf("env lines missing:\n%s", out)
	}
	if dbIdx > webIdx {
		t.Fatal("env lines are not sorted by key")
	}
	if !strings.Contains(out, "EXPOSE 8080") {
		t.Fatalf("EXPOSE missing:\n%s", out)
	}
}

func TestDockerfileManifestInSubdirectory(t *testing.T) {
	r := Slim()
	r.Manifest = "docker/requirements.txt"

	out, err := r.Dockerfile()
	if err != nil {
		t.Fatalf("Dockerfile returned error: %v", err)
	}

	// The COPY drops the file in the workdir under its base name, so the
	// install must not reference the source directory.
	if !strings.Contains(out, "COPY docker/requirements.txt ./") {
		t.Fatalf("manifest COPY missing:\n%s", out)
	}
	if !strings.Contains(out, "RUN pip install --no-cache-dir -r requirements.txt\n") {
		t.Fatalf("install does not use the manifest base name:\n%s", out)
	}
	if strings.Contains(out, "-r docker/requirements.txt") {
		t.Fatalf("install references the source path:\n%s", out)
	}
}

func TestDockerfileRoundTrip(t *testing.T) {
	for _, variant := range []string{VariantFull, VariantSlim} {
		t.Run(variant, func(t *testing.T) {
			orig, err := Variant(variant)
			if err != nil {
				t.Fatalf("Variant: %v", err)
			}

			rendered, err := orig.Dockerfile()
			if err != nil {
				t.Fatalf("Dockerfile: %v", err)
			}

			imported, err := Import(strings.NewReader(rendered))
			if err != nil {
				t.Fatalf("Import of rendered Dockerfile failed: %v", err)
			}

			if imported.Base != orig.Base {
				t.Fatalf("base = %q, want %q", imported.Base, orig.Base)
			}
			if imported.Workdir != orig.Workdir {
				t.Fatalf("workdir = %q, want %q", imported.Workdir, orig.Workdir)
			}
			if imported.Manifest != orig.Manifest {
				t.Fatalf("manifest = %q, want %q", imported.Manifest, orig.Manifest)
			}
			if imported.Entrypoint != orig.Entrypoint {
				t.Fatalf("entrypoint = %q, want %q", imported.Entrypoint, orig.Entrypoint)
			}
			if len(imported.Packages) != len(orig.Packages) {
				t.Fatalf("packages = %v, want %v", imported.Packages, orig.Packages)
			}
			if len(imported.Runtimes) != len(orig.Runtimes) {
				t.Fatalf("runtimes = %v, want %v", imported.Runtimes, orig.Runtimes)
			}
			if len(imported.DataDirs) != len(orig.DataDirs) {
				t.Fatalf("data dirs = %v, want %v", imported.DataDirs, orig.DataDirs)
			}
			if len(imported.Extra) != 0 {
				t.Fatalf("round trip produced extra steps: %v", imported.Extra)
			}
		})
	}
}
