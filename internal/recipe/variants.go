package recipe

import "fmt"

// Names of the shipped image variants.
const (
	VariantFull = "full"
	VariantSlim = "slim"
)

// Returns the shipped recipe for the named variant.
func Variant(name string) (*Recipe, error) {
	switch name {
	case VariantFull:
		return Full(), nil
	case VariantSlim:
		return Slim(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
}

// Returns the full image variant.
//
// Media tooling (ffmpeg, unzip) and the Deno runtime are baked in so the
// service can download and transcode audio. The whole build context is
// copied into the working directory.
func Full() *Recipe {
	return &Recipe{
		Name:     "bromestriker",
		Base:     "python:3.11-slim",
		Packages: []string{"ffmpeg", "curl", "unzip", "ca-certificates"},
		Runtimes: []AuxRuntime{
			{
				Name:    "deno",
				Script:  "https://deno.land/install.sh",
				Home:    "/root/.deno",
				Symlink: "/usr/local/bin/deno",
			},
		},
		Workdir:    "/app",
		Manifest:   "requirements.txt",
		Copy:       []string{". ."},
		Entrypoint: "python -m bromestriker",
	}
}

// Returns the slim image variant.
//
// Only the service package and its README are copied, and a writable data
// directory is declared for the service database. No media tooling is
// installed.
func Slim() *Recipe {
	return &Recipe{
		Name:       "bromestriker",
		Base:       "python:3.13-slim",
		Workdir:    "/app",
		Manifest:   "requirements.txt",
		Copy:       []string{"bromestriker bromestriker", "README.md README.md"},
		DataDirs:   []string{"/app/data"},
		Entrypoint: "python -m bromestriker",
	}
}
