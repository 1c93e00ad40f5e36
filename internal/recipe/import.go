package recipe

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// Builds a recipe from an existing Dockerfile.
//
// The importer understands the linear subset of Dockerfile that recipes
// can express: FROM, RUN, WORKDIR, COPY, ENV, EXPOSE, VOLUME, and
// CMD/ENTRYPOINT. RUN commands are classified into package installs,
// runtime install scripts, data directory creation, and dependency
// installs; anything unrecognized is preserved as an extra step.
// Multi-stage builds are rejected.
func Import(r io.Reader) (*Recipe, error) {
	res, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}

	rec := &Recipe{}

	for _, node := range res.AST.Children {
		if err := importInstruction(rec, node); err != nil {
			return nil, err
		}
	}

	if rec.Base == "" {
		return nil, fmt.Errorf("%w: missing FROM instruction", ErrImport)
	}
	if rec.Entrypoint == "" {
		return nil, fmt.Errorf("%w: missing CMD or ENTRYPOINT instruction", ErrImport)
	}
	if rec.Name == "" {
		rec.Name = deriveName(rec.Entrypoint)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Reads and imports a Dockerfile from disk.
func ImportFile(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	defer f.Close()

	return Import(f)
}

// Applies a single Dockerfile instruction to the recipe under construction.
func importInstruction(rec *Recipe, node *parser.Node) error {
	args := nodeArgs(node)

	switch strings.ToLower(node.Value) {
	case "from":
		if rec.Base != "" {
			return fmt.Errorf("%w: multi-stage builds are not supported", ErrImport)
		}
		if len(args) == 0 {
			return fmt.Errorf("%w: FROM with no image", ErrImport)
		}
		rec.Base = args[0]

	case "workdir":
		if len(args) == 1 {
			rec.Workdir = args[0]
		}

	case "run":
		importRun(rec, strings.Join(args, " "))

	case "copy":
		return importCopy(rec, node, args)

	case "env":
		if rec.Env == nil {
			rec.Env = make(map[string]string)
		}
		for i := 0; i+1 < len(args); i += 2 {
			rec.Env[args[i]] = args[i+1]
		}

	case "expose":
		if len(args) > 0 {
			port, _, _ := strings.Cut(args[0], "/")
			if p, err := strconv.Atoi(port); err == nil {
				rec.Port = p
			}
		}

	case "volume":
		rec.DataDirs = append(rec.DataDirs, args...)

	case "entrypoint":
		rec.Entrypoint = entrypointString(node, args)

	case "cmd":
		// ENTRYPOINT wins when both are present.
		if rec.Entrypoint == "" {
			rec.Entrypoint = entrypointString(node, args)
		}

	default:
		slog.Debug("skipping dockerfile instruction", "instruction", node.Value)
	}

	return nil
}

// Classifies a RUN command into recipe fields.
//
// The command is split on "&&" and each segment is examined on its own,
// so compound commands like "apt-get update && apt-get install ..." map
// cleanly. A command with no recognized segment is kept verbatim as an
// extra step.
func importRun(rec *Recipe, cmd string) {
	recognized := false

	for _, seg := range strings.Split(cmd, "&&") {
		seg = strings.TrimSpace(seg)

		switch {
		case strings.HasPrefix(seg, "apt-get update"), strings.HasPrefix(seg, "rm -rf /var/lib/apt"):
			recognized = true

		case strings.Contains(seg, "apt-get install"):
			rec.Packages = append(rec.Packages, aptPackages(seg)...)
			recognized = true

		case strings.HasSuffix(seg, "| sh") && strings.Contains(seg, "http"):
			if rt, ok := parseInstallScript(seg); ok {
				rec.Runtimes = append(rec.Runtimes, rt)
				recognized = true
			}

		case strings.HasPrefix(seg, "ln -s"):
			if attachSymlink(rec, seg) {
				recognized = true
			}

		case strings.Contains(seg, "pip install"):
			if rec.Manifest == "" {
				rec.Manifest = pipManifest(seg)
			}
			recognized = true

		case strings.HasPrefix(seg, "mkdir -p"):
			for _, dir := range strings.Fields(seg)[2:] {
				if strings.HasPrefix(dir, "/") && dir != rec.Workdir {
					rec.DataDirs = append(rec.DataDirs, dir)
				}
			}
			recognized = true
		}
	}

	if !recognized {
		rec.Extra = append(rec.Extra, cmd)
	}
}

// Maps a COPY instruction onto the manifest or payload copy list.
func importCopy(rec *Recipe, node *parser.Node, args []string) error {
	for _, flag := range node.Flags {
		if strings.HasPrefix(flag, "--from") {
			return fmt.Errorf("%w: COPY --from is not supported", ErrImport)
		}
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: COPY needs a source and destination", ErrImport)
	}

	dest := args[len(args)-1]
	for _, src := range args[:len(args)-1] {
		if rec.Manifest == "" && strings.Contains(src, "requirements") && strings.HasSuffix(src, ".txt") {
			rec.Manifest = src
			continue
		}
		if dest == "./" || dest == "." {
			rec.Copy = append(rec.Copy, src+" "+src)
			continue
		}
		rec.Copy = append(rec.Copy, src+" "+dest)
	}

	return nil
}

// Extracts package names from an "apt-get install" segment, dropping the
// command words and any flags.
func aptPackages(seg string) []string {
	var pkgs []string
	fields := strings.Fields(seg)
	for i, f := range fields {
		if i < 2 || strings.HasPrefix(f, "-") {
			continue
		}
		pkgs = append(pkgs, f)
	}
	return pkgs
}

// Parses a "curl ... <url> | sh" segment into an auxiliary runtime.
//
// The runtime is named after the first label of the script host
// (deno.land yields "deno") and assumed to install under /root. The
// symlink, if any, is attached by a later "ln -s" segment.
func parseInstallScript(seg string) (AuxRuntime, bool) {
	for _, f := range strings.Fields(seg) {
		if !strings.HasPrefix(f, "http://") && !strings.HasPrefix(f, "https://") {
			continue
		}
		u, err := url.Parse(f)
		if err != nil || u.Hostname() == "" {
			continue
		}
		name, _, _ := strings.Cut(u.Hostname(), ".")
		return AuxRuntime{
			Name:   name,
			Script: f,
			Home:   "/root/." + name,
		}, true
	}
	return AuxRuntime{}, false
}

// Attaches an "ln -s target link" segment to the most recent runtime.
//
// The link becomes the runtime's symlink, and the target refines the
// runtime's home directory when it points at a bin subdirectory.
func attachSymlink(rec *Recipe, seg string) bool {
	if len(rec.Runtimes) == 0 {
		return false
	}

	var paths []string
	for _, f := range strings.Fields(seg)[1:] {
		if !strings.HasPrefix(f, "-") {
			paths = append(paths, f)
		}
	}
	if len(paths) != 2 {
		return false
	}

	rt := &rec.Runtimes[len(rec.Runtimes)-1]
	rt.Symlink = paths[1]
	if home, _, ok := strings.Cut(paths[0], "/bin/"); ok {
		rt.Home = home
	}
	return true
}

// Extracts the manifest file from a "pip install -r <file>" segment.
func pipManifest(seg string) string {
	fields := strings.Fields(seg)
	for i, f := range fields {
		if f == "-r" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

// Converts a CMD or ENTRYPOINT node to the recipe's entrypoint string.
//
// JSON-form instructions are joined with shell quoting; shell-form
// instructions are taken as-is.
func entrypointString(node *parser.Node, args []string) string {
	if node.Attributes["json"] {
		return shellquote.Join(args...)
	}
	return strings.Join(args, " ")
}

// Derives a recipe name from the entrypoint.
//
// "python -m <module>" names the recipe after the module; otherwise the
// first entrypoint token is used.
func deriveName(entrypoint string) string {
	fields := strings.Fields(entrypoint)
	for i, f := range fields {
		if f == "-m" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return "imported"
}

// Collects the argument chain of an instruction node.
func nodeArgs(node *parser.Node) []string {
	var args []string
	for n := node.Next; n != nil; n = n.Next {
		args = append(args, n.Value)
	}
	return args
}
