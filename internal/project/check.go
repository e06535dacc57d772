package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/svcforge/svcforge/internal/platform"
)

// Check reports the state of the project directories and of every
// service's proto link. It returns the number of problems found.
func Check(w io.Writer, l Layout) int {
	fmt.Fprintf(w, "Project check (%s):\n", l.Root)

	problems := 0
	for _, dir := range []string{l.Services, l.SharedProto, l.Templates} {
		if !checkDir(w, dir) {
			problems++
		}
	}

	names, err := l.ListServices()
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return problems + 1
	}
	for _, name := range names {
		if !checkProtoLink(w, l, name) {
			problems++
		}
	}
	return problems
}

func checkDir(w io.Writer, path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		return false
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return false
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [FAIL] %s is not a directory\n", path)
		return false
	}
	fmt.Fprintf(w, "  [ OK ] %s\n", path)
	return true
}

func checkProtoLink(w io.Writer, l Layout, name string) bool {
	link := l.ServiceProto(name)
	if !platform.IsSymlink(link) {
		if platform.IsDir(link) {
			fmt.Fprintf(w, "  [ OK ] %s (copy)\n", link)
			return true
		}
		fmt.Fprintf(w, "  [MISS] %s is not linked to shared proto\n", link)
		return false
	}

	target, err := platform.ReadSymlinkTarget(link)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", link, err)
		return false
	}
	resolved := target
	if !filepath.IsAbs(target) {
		resolved = filepath.Join(filepath.Dir(link), target)
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		fmt.Fprintf(w, "  [WARN] %s -> %s (target does not exist)\n", link, target)
		return false
	}
	fmt.Fprintf(w, "  [ OK ] %s -> %s\n", link, target)
	return true
}
