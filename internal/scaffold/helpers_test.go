package scaffold

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/svcforge/svcforge/internal/config"
	"github.com/svcforge/svcforge/internal/project"
	"github.com/svcforge/svcforge/internal/render"
	"github.com/svcforge/svcforge/internal/runner"
	"github.com/svcforge/svcforge/internal/templates"
)

// fakeRunner records commands and fails those whose "name firstArg"
// prefix is listed in fail.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runner.Command
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, c runner.Command, onLine func(string)) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if onLine != nil {
		onLine("running " + c.String())
	}
	key := c.Name
	if len(c.Args) > 0 {
		key += " " + c.Args[0]
	}
	if err, ok := f.fail[key]; ok {
		return &runner.Result{ExitCode: 1}, err
	}
	return &runner.Result{}, nil
}

// commands returns every recorded command line.
func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}

func (f *fakeRunner) ran(prefix string) bool {
	for _, c := range f.commands() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func processFailed(cmd string) error {
	return &runner.ProcessFailedError{Command: cmd, ExitCode: 1, Tail: "boom"}
}

type fixture struct {
	layout project.Layout
	runner *fakeRunner
	orch   *Orchestrator
}

// newFixture builds an orchestrator over a temporary project with the
// default template set installed.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	layout, err := project.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := templates.Install(layout.Templates, false); err != nil {
		t.Fatalf("installing templates: %v", err)
	}
	settings, err := config.Load(config.Options{})
	if err != nil {
		t.Fatalf("loading settings: %v", err)
	}

	fr := &fakeRunner{fail: map[string]error{}}
	return &fixture{
		layout: layout,
		runner: fr,
		orch:   New(layout, render.NewStore(layout.Templates), settings, fr),
	}
}

// snapshot maps every path under root to its content (or link target).
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			files[rel] = "-> " + target
		case d.IsDir():
			files[rel] = "dir"
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files[rel] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}
	return files
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
