package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	"github.com/go-playground/validator/v10"
	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// Describes one image variant of the bromestriker service.
//
// Field order mirrors the build order. Copy entries use the "src dest"
// form; relative destinations are resolved against the working directory.
type Recipe struct {
	Name       string            `yaml:"name" validate:"required"`
	Base       string            `yaml:"base" validate:"required"`
	Packages   []string          `yaml:"packages,omitempty"`
	Runtimes   []AuxRuntime      `yaml:"runtimes,omitempty" validate:"dive"`
	Workdir    string            `yaml:"workdir" validate:"required,startswith=/"`
	Manifest   string            `yaml:"manifest,omitempty"`
	Copy       []string          `yaml:"copy,omitempty"`
	DataDirs   []string          `yaml:"data_dirs,omitempty" validate:"dive,startswith=/"`
	Env        map[string]string `yaml:"env,omitempty"`
	Port       int               `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Extra      []string          `yaml:"extra_steps,omitempty"`
	Entrypoint string            `yaml:"entrypoint" validate:"required"`
}

// An auxiliary runtime installed from a remote install script.
//
// The script is piped to a shell, which places the runtime under Home.
// When Symlink is set, the runtime binary is linked onto the PATH.
type AuxRuntime struct {
	Name    string `yaml:"name" validate:"required"`
	Script  string `yaml:"script" validate:"required,url"`
	Home    string `yaml:"home" validate:"required,startswith=/"`
	Symlink string `yaml:"symlink,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Checks the recipe for structural and semantic problems.
//
// Beyond struct-level validation, the base image must be a well-formed
// image reference and the entrypoint must split into a non-empty argv.
func (r *Recipe) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}

	if _, err := reference.ParseNormalizedNamed(r.Base); err != nil {
		return fmt.Errorf("%w: base image %q: %w", ErrInvalidRecipe, r.Base, err)
	}

	argv, err := r.Argv()
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty entrypoint", ErrInvalidRecipe)
	}

	for _, c := range r.Copy {
		if _, _, err := ParseCopy(c, r.Workdir); err != nil {
			return fmt.Errorf("%w: copy %q: %w", ErrInvalidRecipe, c, err)
		}
	}

	return nil
}

// Splits the entrypoint string into an argv using shell quoting rules.
func (r *Recipe) Argv() ([]string, error) {
	argv, err := shellquote.Split(r.Entrypoint)
	if err != nil {
		return nil, fmt.Errorf("%w: entrypoint %q: %w", ErrInvalidRecipe, r.Entrypoint, err)
	}
	return argv, nil
}

// Reads and validates a recipe from a YAML file.
//
// Unknown fields are rejected so typos in recipe files surface as errors
// instead of silently dropping configuration.
func Load(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var r Recipe
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecipe, path, err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return &r, nil
}

// Writes the recipe as YAML.
func (r *Recipe) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// Parses a copy entry into source and destination paths.
//
// The entry must contain exactly two whitespace-separated tokens. A
// relative destination is joined with workdir.
func ParseCopy(s, workdir string) (src, dest string, err error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected source and destination, got %q", s)
	}

	src = parts[0]
	dest = parts[1]

	if !filepath.IsAbs(dest) {
		if workdir == "" {
			return "", "", fmt.Errorf("relative dest %q requires workdir", dest)
		}
		dest = filepath.Join(workdir, dest)
	}

	return src, dest, nil
}
