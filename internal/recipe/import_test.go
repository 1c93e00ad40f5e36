package recipe

import (
	"strings"
	"testing"
)

// The two Dockerfile variants this tool replaces, as shipped with the
// service.
const (
	fullDockerfile = `FROM python:3.11-slim

RUN apt-get update && apt-get install -y --no-install-recommends \
    ffmpeg curl unzip ca-certificates \
    && rm -rf /var/lib/apt/lists/*

RUN curl -fsSL https://deno.land/install.sh | sh \
    && ln -s /root/.deno/bin/deno /usr/local/bin/deno

WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

CMD ["python", "-m", "bromestriker"]
`

	slimDockerfile = `FROM python:3.13-slim

WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY bromestriker ./bromestriker
COPY README.md ./README.md

RUN mkdir -p /app/data

CMD ["python", "-m", "bromestriker"]
`
)

func TestImportFullDockerfile(t *testing.T) {
	r, err := Import(strings.NewReader(fullDockerfile))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	if r.Base != "python:3.11-slim" {
		t.Fatalf("base = %q, want python:3.11-slim", r.Base)
	}
	if r.Name != "bromestriker" {
		t.Fatalf("name = %q, want bromestriker", r.Name)
	}

	wantPkgs := []string{"ffmpeg", "curl", "unzip", "ca-certificates"}
	if len(r.Packages) != len(wantPkgs) {
		t.Fatalf("packages = %v, want %v", r.Packages, wantPkgs)
	}
	for i := range wantPkgs {
		if r.Packages[i] != wantPkgs[i] {
			t.Fatalf("packages[%d] = %q, want %q", i, r.Packages[i], wantPkgs[i])
		}
	}

	if len(r.Runtimes) != 1 {
		t.Fatalf("runtimes = %v, want one", r.Runtimes)
	}
	rt := r.Runtimes[0]
	if rt.Name != "deno" {
		t.Fatalf("runtime name = %q, want deno", rt.Name)
	}
	if rt.Script != "https://deno.land/install.sh" {
		t.Fatalf("runtime script = %q", rt.Script)
	}
	if rt.Home != "/root/.deno" {
		t.Fatalf("runtime home = %q, want /root/.deno", rt.Home)
	}
	if rt.Symlink != "/usr/local/bin/deno" {
		t.Fatalf("runtime symlink = %q, want /usr/local/bin/deno", rt.Symlink)
	}

	if r.Workdir != "/app" {
		t.Fatalf("workdir = %q, want /app", r.Workdir)
	}
	if r.Manifest != "requirements.txt" {
		t.Fatalf("manifest = %q, want requirements.txt", r.Manifest)
	}
	if len(r.Copy) != 1 || r.Copy[0] != ". ." {
		t.Fatalf("copy = %v, want [. .]", r.Copy)
	}
	if r.Entrypoint != "python -m bromestriker" {
		t.Fatalf("entrypoint = %q, want python -m bromestriker", r.Entrypoint)
	}
	if len(r.Extra) != 0 {
		t.Fatalf("unexpected extra steps: %v", r.Extra)
	}
}

func TestImportSlimDockerfile(t *testing.T) {
	r, err := Import(strings.NewReader(slimDockerfile))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	if r.Base != "python:3.13-slim" {
		t.Fatalf("base = %q, want python:3.13-slim", r.Base)
	}
	if len(r.Packages) != 0 {
		t.Fatalf("unexpected packages: %v", r.Packages)
	}
	if len(r.Runtimes) != 0 {
		t.Fatalf("unexpected runtimes: %v", r.Runtimes)
	}
	if r.Manifest != "requirements.txt" {
		t.Fatalf("manifest = %q, want requirements.txt", r.Manifest)
	}
	if len(r.DataDirs) != 1 || r.DataDirs[0] != "/app/data" {
		t.Fatalf("data dirs = %v, want [/app/data]", r.DataDirs)
	}

	wantCopy := []string{"bromestriker ./bromestriker", "README.md ./README.md"}
	if len(r.Copy) != len(wantCopy) {
		t.Fatalf("copy = %v, want %v", r.Copy, wantCopy)
	}
	for i := range wantCopy {
		if r.Copy[i] != wantCopy[i] {
			t.Fatalf("copy[%d] = %q, want %q", i, r.Copy[i], wantCopy[i])
		}
	}

	if r.Entrypoint != "python -m bromestriker" {
		t.Fatalf("entrypoint = %q, want python -m bromestriker", r.Entrypoint)
	}
}

func TestImportRejectsMultiStage(t *testing.T) {
	dockerfile := `FROM golang:1.25 AS build
RUN go build -o /out/app ./...

FROM debian:stable-slim
COPY --from=build /out/app /usr/local/bin/app
CMD ["app"]
`
	if _, err := Import(strings.NewReader(dockerfile)); err == nil {
		t.Fatal("expected error for multi-stage Dockerfile")
	}
}

func TestImportRequiresEntrypoint(t *testing.T) {
	dockerfile := "FROM python:3.13-slim\nWORKDIR /app\n"
	if _, err := Import(strings.NewReader(dockerfile)); err == nil {
		t.Fatal("expected error for Dockerfile without CMD")
	}
}

func TestImportShellFormCmd(t *testing.T) {
	dockerfile := "FROM python:3.13-slim\nWORKDIR /app\nCMD python -m bromestriker\n"
	r, err := Import(strings.NewReader(dockerfile))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if r.Entrypoint != "python -m bromestriker" {
		t.Fatalf("entrypoint = %q", r.Entrypoint)
	}
}

func TestImportUnrecognizedRunBecomesExtra(t *testing.T) {
	dockerfile := `FROM python:3.13-slim
WORKDIR /app
RUN useradd --create-home striker
CMD ["python", "-m", "bromestriker"]
`
	r, err := Import(strings.NewReader(dockerfile))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if len(r.Extra) != 1 || !strings.Contains(r.Extra[0], "useradd") {
		t.Fatalf("extra = %v, want the useradd command", r.Extra)
	}
}

func TestImportEntrypointBeatsCmd(t *testing.T) {
	dockerfile := `FROM python:3.13-slim
WORKDIR /app
ENTRYPOINT ["python", "-m", "bromestriker"]
CMD ["--help"]
`
	r, err := Import(strings.NewReader(dockerfile))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if r.Entrypoint != "python -m bromestriker" {
		t.Fatalf("entrypoint = %q, want python -m bromestriker", r.Entrypoint)
	}
}
