//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/svcforge/svcforge/internal/config"
	"github.com/svcforge/svcforge/internal/project"
	"github.com/svcforge/svcforge/internal/render"
	"github.com/svcforge/svcforge/internal/runner"
	"github.com/svcforge/svcforge/internal/scaffold"
	"github.com/svcforge/svcforge/internal/templates"
)

// testEnv holds an isolated project and a directory of fake tools.
type testEnv struct {
	Layout project.Layout
	BinDir string // fake tool scripts
	LogDir string // each fake tool appends its argv here
}

// setupTestEnv creates a project with the default templates and points
// every configured tool at a shell script that records its invocation.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	layout, err := project.New(t.TempDir())
	if err != nil {
		t.Fatalf("resolving layout: %v", err)
	}
	if _, err := templates.Install(layout.Templates, false); err != nil {
		t.Fatalf("installing templates: %v", err)
	}

	env := &testEnv{Layout: layout, BinDir: t.TempDir(), LogDir: t.TempDir()}

	// composer create-project <dir> leaves a composer.json behind.
	env.writeTool(t, "composer", `
if [ "$1" = "create-project" ]; then
  eval target=\${$#}
  mkdir -p "$target" && echo '{"name":"laravel/laravel"}' > "$target/composer.json"
fi`)
	env.writeTool(t, "docker", `
if [ "$1" = "stop" ] && [ -n "$FAKE_DOCKER_NO_CONTAINER" ]; then
  echo "Error response from daemon: No such container: $2" >&2
  exit 1
fi`)
	// protoc writes one stub per input file into --php_out.
	env.writeTool(t, "protoc", `
out=""
for a in "$@"; do
  case "$a" in
    --php_out=*) out="${a#--php_out=}" ;;
    *.proto) name=$(basename "$a" .proto); echo "<?php // $name" > "$out/$name.php" ;;
  esac
done`)

	for _, key := range config.ToolKeys {
		t.Setenv("SVCFORGE_TOOLS_"+strings.ToUpper(key), "")
	}
	return env
}

// writeTool installs an executable script named name that logs its
// arguments before running body.
func (e *testEnv) writeTool(t *testing.T, name, body string) {
	t.Helper()
	script := "#!/bin/sh\necho \"$*\" >> " + filepath.Join(e.LogDir, name+".log") + "\n" + body + "\n"
	path := filepath.Join(e.BinDir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("writing tool %s: %v", name, err)
	}
}

// orchestrator returns an orchestrator whose tools resolve to the fake
// scripts.
func (e *testEnv) orchestrator(t *testing.T) *scaffold.Orchestrator {
	t.Helper()
	settings, err := config.Load(config.Options{})
	if err != nil {
		t.Fatalf("loading settings: %v", err)
	}
	for _, key := range config.ToolKeys {
		argv := settings.Tools.Argv(key)
		argv[0] = filepath.Join(e.BinDir, argv[0])
	}
	return scaffold.New(e.Layout, render.NewStore(e.Layout.Templates), settings, runner.New(nil))
}

// toolLog returns the recorded invocations of a fake tool.
func (e *testEnv) toolLog(t *testing.T, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.LogDir, name+".log"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading %s log: %v", name, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
