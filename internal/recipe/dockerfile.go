package recipe

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Renders the recipe as an equivalent Dockerfile.
//
// The output follows the same fixed ordering as [Recipe.Plan], so a
// recipe built by this tool and an image built from its rendered
// Dockerfile produce the same filesystem contract.
func (r *Recipe) Dockerfile() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "FROM %s\n", r.Base)

	if len(r.Packages) > 0 {
		fmt.Fprintf(&b, "\nRUN %s\n", installPackages(r.Packages))
	}

	for _, rt := range r.Runtimes {
		fmt.Fprintf(&b, "\nRUN %s\n", rt.installCommand())
	}

	fmt.Fprintf(&b, "\nWORKDIR %s\n", r.Workdir)

	if r.Manifest != "" {
		// The COPY lands the manifest in the working directory under its
		// base name, so the install must reference the base name too.
		fmt.Fprintf(&b, "\nCOPY %s ./\n", r.Manifest)
		fmt.Fprintf(&b, "RUN pip install --no-cache-dir -r %s\n", path.Base(r.Manifest))
	}

	if len(r.Copy) > 0 {
		b.WriteString("\n")
		for _, c := range r.Copy {
			parts := strings.Fields(c)
			fmt.Fprintf(&b, "COPY %s %s\n", parts[0], parts[1])
		}
	}

	for _, cmd := range r.Extra {
		fmt.Fprintf(&b, "\nRUN %s\n", cmd)
	}

	if len(r.DataDirs) > 0 {
		fmt.Fprintf(&b, "\nRUN mkdir -p %s\n", strings.Join(r.DataDirs, " "))
	}

	if len(r.Env) > 0 {
		b.WriteString("\n")
		for _, k := range sortedKeys(r.Env) {
			fmt.Fprintf(&b, "ENV %s=%s\n", k, r.Env[k])
		}
	}

	if r.Port != 0 {
		fmt.Fprintf(&b, "\nEXPOSE %d\n", r.Port)
	}

	argv, err := r.Argv()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "\nCMD [%s]\n", quoteArgv(argv))

	return b.String(), nil
}

// Returns the map keys in sorted order for stable output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Formats an argv as a JSON-form Dockerfile array.
func quoteArgv(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return strings.Join(quoted, ", ")
}
