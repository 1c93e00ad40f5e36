package recipe

import (
	"fmt"
	"path"
	"strings"
)

// Identifies what a plan step does.
type StepKind int

const (
	StepRun   StepKind = iota // Run a shell command in the build container.
	StepCopy                  // Copy a path from the build context into the container.
	StepMkdir                 // Create a directory inside the container.
)

// One step of a lowered build plan.
type Step struct {
	Kind StepKind
	Desc string // Short human-readable label for logs.
	Run  string // Shell command for StepRun.
	Src  string // Build-context source for StepCopy.
	Dest string // Absolute destination for StepCopy.
	Path string // Absolute directory for StepMkdir.
}

// Lowers the recipe to its linear build plan.
//
// Steps always come out in the same order: system packages, auxiliary
// runtimes, working directory, dependency manifest, dependency install,
// payload copies, extra steps, data directories. The plan carries no
// conditionals; the first failing step aborts the build.
func (r *Recipe) Plan() ([]Step, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var steps []Step

	if len(r.Packages) > 0 {
		steps = append(steps, Step{
			Kind: StepRun,
			Desc: "install system packages",
			Run:  installPackages(r.Packages),
		})
	}

	for _, rt := range r.Runtimes {
		steps = append(steps, Step{
			Kind: StepRun,
			Desc: fmt.Sprintf("install %s runtime", rt.Name),
			Run:  rt.installCommand(),
		})
	}

	steps = append(steps, Step{
		Kind: StepMkdir,
		Desc: "create working directory",
		Path: r.Workdir,
	})

	if r.Manifest != "" {
		dest := path.Join(r.Workdir, path.Base(r.Manifest))
		steps = append(steps,
			Step{
				Kind: StepCopy,
				Desc: "copy dependency manifest",
				Src:  r.Manifest,
				Dest: dest,
			},
			Step{
				Kind: StepRun,
				Desc: "install dependencies",
				Run:  "pip install --no-cache-dir -r " + path.Base(r.Manifest),
			},
		)
	}

	for _, c := range r.Copy {
		src, dest, err := ParseCopy(c, r.Workdir)
		if err != nil {
			return nil, fmt.Errorf("%w: copy %q: %w", ErrInvalidRecipe, c, err)
		}
		steps = append(steps, Step{
			Kind: StepCopy,
			Desc: "copy " + src,
			Src:  src,
			Dest: dest,
		})
	}

	for _, cmd := range r.Extra {
		steps = append(steps, Step{
			Kind: StepRun,
			Desc: "run extra step",
			Run:  cmd,
		})
	}

	for _, dir := range r.DataDirs {
		steps = append(steps, Step{
			Kind: StepMkdir,
			Desc: "create data directory",
			Path: dir,
		})
	}

	return steps, nil
}

// Builds the apt command for a package list.
//
// The package index is refreshed, packages are installed without
// recommends, and the index is removed afterwards so it never lands in
// an image layer.
func installPackages(pkgs []string) string {
	return "apt-get update && apt-get install -y --no-install-recommends " +
		strings.Join(pkgs, " ") +
		" && rm -rf /var/lib/apt/lists/*"
}

// Builds the shell command that installs the runtime and links it onto
// the PATH.
func (a AuxRuntime) installCommand() string {
	cmd := "curl -fsSL " + a.Script + " | sh"
	if a.Symlink != "" {
		cmd += " && ln -sf " + path.Join(a.Home, "bin", a.Name) + " " + a.Symlink
	}
	return cmd
}
