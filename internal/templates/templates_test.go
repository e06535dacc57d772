package templates

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNames(t *testing.T) {
	want := []string{
		"Dockerfile.tpl",
		"Service.proto.tpl",
		"ServiceImplementation.php.tpl",
		"deployment.yaml.tpl",
		"grpc_server.php.tpl",
		"service.yaml.tpl",
	}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestInstall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")

	result, err := Install(dir, false)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(result.Written) != len(Names()) {
		t.Errorf("wrote %d templates, want %d", len(result.Written), len(Names()))
	}
	for _, name := range Names() {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestInstallKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "Dockerfile.tpl")
	if err := os.WriteFile(custom, []byte("FROM custom"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := Install(dir, false)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !reflect.DeepEqual(result.Skipped, []string{"Dockerfile.tpl"}) {
		t.Errorf("Skipped = %v", result.Skipped)
	}
	data, _ := os.ReadFile(custom)
	if string(data) != "FROM custom" {
		t.Errorf("customized template was overwritten: %q", string(data))
	}

	result, err = Install(dir, true)
	if err != nil {
		t.Fatalf("Install(force): %v", err)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("force install skipped %v", result.Skipped)
	}
	data, _ = os.ReadFile(custom)
	if string(data) == "FROM custom" {
		t.Error("force install did not overwrite the template")
	}
}
