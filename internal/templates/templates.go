// Package templates ships the canonical template set used to generate a
// service and installs it into a project's templates directory.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/svcforge/svcforge/internal/platform"
)

//go:embed defaults/*.tpl
var defaultFS embed.FS

// Defaults returns the embedded template set rooted at its directory.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// Names lists the embedded templates in sorted order.
func Names() []string {
	entries, err := fs.ReadDir(Defaults(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// InstallResult lists what Install did with each template.
type InstallResult struct {
	Dir     string
	Written []string
	Skipped []string
}

// Install writes the embedded templates into dir. Existing files are kept
// unless force is set.
func Install(dir string, force bool) (*InstallResult, error) {
	if err := platform.EnsureDir(dir); err != nil {
		return nil, err
	}

	result := &InstallResult{Dir: dir}
	for _, name := range Names() {
		dst := filepath.Join(dir, name)
		if platform.Exists(dst) && !force {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		data, err := fs.ReadFile(Defaults(), name)
		if err != nil {
			return result, fmt.Errorf("reading embedded template %s: %w", name, err)
		}
		if err := platform.WriteFile(dst, data, false); err != nil {
			return result, err
		}
		result.Written = append(result.Written, name)
	}
	return result, nil
}
