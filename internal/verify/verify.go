package verify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/bromestriker/bromeforge/internal/recipe"
	"github.com/bromestriker/bromeforge/internal/runtime"
)

// Controls archive verification.
type Options struct {
	Recipe   *recipe.Recipe // Recipe the archive was built from.
	Archive  string         // Path to the OCI archive to verify.
	Platform string         // Platform to verify. Empty selects the first manifest.
	Keep     bool           // Keep the imported image after verification.
}

// One verified property.
type Check struct {
	Name   string // What was checked.
	OK     bool
	Detail string // Failure detail, empty on success.
}

// Collects the outcome of every check against an archive.
//
// Checks are never fail-fast: a failing check is recorded and
// verification continues, so the report always covers the full contract.
type Report struct {
	Tag         string  // Image tag the archive was imported under.
	Checks      []Check
	Assumptions []string // Properties recorded but not verified.
}

// Reports whether every check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Returns the checks that failed.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, c)
		}
	}
	return failed
}

func (r *Report) add(name string, ok bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, OK: ok, Detail: detail})
}

// Verifies a built archive against its recipe's contract.
//
// The image config is checked directly from the archive, then the
// archive is imported and probed from inside a running container. The
// container and the imported image are removed afterwards unless Keep is
// set.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Report, error) {
	rec := opts.Recipe

	report := &Report{Tag: fmt.Sprintf("bromeforge/%s:verify", rec.Name)}
	if rec.Manifest != "" {
		report.Assumptions = append(report.Assumptions, fmt.Sprintf(
			"dependency install from %s is reproducible only when the manifest pins versions", rec.Manifest))
	}

	slog.Info("verifying archive", "archive", opts.Archive, "recipe", rec.Name)

	meta, err := readArchive(opts.Archive)
	if err != nil {
		return nil, err
	}
	cfg, err := meta.config(opts.Platform)
	if err != nil {
		return nil, err
	}
	checkConfig(report, rec, cfg)

	if err := rt.ImportArchive(ctx, opts.Archive, report.Tag); err != nil {
		return nil, err
	}
	if !opts.Keep {
		defer rt.DestroyImage(context.Background(), report.Tag)
	}

	ctr, err := rt.StartFromTag(ctx, report.Tag, rec.Name+"-verify")
	if err != nil {
		return nil, err
	}
	defer ctr.Destroy(context.Background())

	// Probes exec into the idle task, so the container must actually be
	// running before any command is attempted.
	state, err := ctr.Status(ctx)
	if err != nil {
		return nil, err
	}
	if state != runtime.StateRunning {
		return nil, fmt.Errorf("%w: container %s is %s", ErrContainer, ctr.ID(), state)
	}

	for _, p := range probes(rec) {
		result, err := ctr.Exec(ctx, "/bin/sh", p.command, nil, p.workdir)
		if err != nil {
			return nil, err
		}
		detail := ""
		if result.ExitCode != 0 {
			detail = fmt.Sprintf("exit code %d: %s", result.ExitCode, result.Stderr)
		}
		report.add(p.name, result.ExitCode == 0, detail)
	}

	if err := ctr.Stop(ctx); err != nil {
		return nil, err
	}

	slog.Info("verification finished", "checks", len(report.Checks), "ok", report.OK())

	return report, nil
}

// Checks the image config read from the archive against the recipe.
func checkConfig(report *Report, rec *recipe.Recipe, cfg *ocispec.Image) {
	argv, err := rec.Argv()
	if err == nil {
		ok := slices.Equal(cfg.Config.Entrypoint, argv)
		detail := ""
		if !ok {
			detail = fmt.Sprintf("got %v, want %v", cfg.Config.Entrypoint, argv)
		}
		report.add("entrypoint", ok, detail)
	}

	if rec.Workdir != "" {
		ok := cfg.Config.WorkingDir == rec.Workdir
		detail := ""
		if !ok {
			detail = fmt.Sprintf("got %q, want %q", cfg.Config.WorkingDir, rec.Workdir)
		}
		report.add("workdir", ok, detail)
	}

	if rec.Port != 0 {
		port := fmt.Sprintf("%d/tcp", rec.Port)
		_, ok := cfg.Config.ExposedPorts[port]
		detail := ""
		if !ok {
			detail = fmt.Sprintf("%s not exposed", port)
		}
		report.add("port "+port, ok, detail)
	}

	for _, dir := range rec.DataDirs {
		_, ok := cfg.Config.Volumes[dir]
		detail := ""
		if !ok {
			detail = fmt.Sprintf("%s not declared as a volume", dir)
		}
		report.add("volume "+dir, ok, detail)
	}
}
