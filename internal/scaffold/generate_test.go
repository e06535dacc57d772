package scaffold

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/svcforge/svcforge/internal/linker"
	"github.com/svcforge/svcforge/internal/naming"
	"github.com/svcforge/svcforge/internal/platform"
	"github.com/svcforge/svcforge/internal/render"
	"github.com/svcforge/svcforge/internal/runner"
)

var generateOrder = []string{
	"validate-name",
	"ensure-shared-proto",
	"verify-templates",
	"guard-service-absent",
	"scaffold-base-application",
	"install-protocol-dependencies",
	"render-deployment-manifests",
	"link-shared-proto",
	"render-server-entrypoint",
	"render-service-implementation",
	"render-container-build-file",
	"render-protocol-definition",
}

func TestGenerateBilling(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Generate(context.Background(), "Billing")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := out.StepNames(); !reflect.DeepEqual(got, generateOrder) {
		t.Errorf("steps = %v\nwant %v", got, generateOrder)
	}
	if w := out.Warnings(); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}

	svcDir := f.layout.ServiceDir("Billing")
	deployment := readFile(t, filepath.Join(svcDir, "k8s", "deployment.yaml"))
	if !strings.Contains(deployment, "svcforge.io/service: Billing") {
		t.Errorf("deployment.yaml does not carry the service name:\n%s", deployment)
	}
	if !strings.Contains(deployment, "image: your-docker-repo/billing:latest") {
		t.Errorf("deployment.yaml image not rendered:\n%s", deployment)
	}
	if strings.Contains(deployment, "{{") {
		t.Errorf("deployment.yaml has unresolved placeholders:\n%s", deployment)
	}

	for _, rel := range []string{
		"k8s/service.yaml",
		"grpc_server.php",
		"app/Grpc/BillingServiceImplementation.php",
		"Dockerfile",
	} {
		if !platform.Exists(filepath.Join(svcDir, filepath.FromSlash(rel))) {
			t.Errorf("missing %s", rel)
		}
	}

	sharedProto := filepath.Join(f.layout.SharedProto, "BillingService.proto")
	viaService := filepath.Join(f.layout.ServiceProto("Billing"), "BillingService.proto")
	if got, want := readFile(t, viaService), readFile(t, sharedProto); got != want {
		t.Errorf("service proto entry does not resolve to shared proto")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(svcDir, "grpc_server.php"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm()&0111 == 0 {
			t.Errorf("grpc_server.php mode = %o, want executable", info.Mode().Perm())
		}
	}

	cmds := f.runner.calls
	if len(cmds) != 2 {
		t.Fatalf("ran %d commands, want 2: %v", len(cmds), f.runner.commands())
	}
	if last := cmds[0].Args[len(cmds[0].Args)-1]; last != svcDir {
		t.Errorf("scaffold target = %s, want %s", last, svcDir)
	}
	if cmds[0].Dir != f.layout.Root {
		t.Errorf("scaffold dir = %s, want project root", cmds[0].Dir)
	}
	if cmds[1].Dir != svcDir {
		t.Errorf("install dir = %s, want %s", cmds[1].Dir, svcDir)
	}
	if cmds[0].Timeout != f.orch.Settings.Timeouts.Scaffold {
		t.Errorf("scaffold timeout = %v", cmds[0].Timeout)
	}

	if len(out.Files) == 0 || out.Files[0] != svcDir {
		t.Errorf("Files = %v, want service dir first", out.Files)
	}
}

func TestGenerateTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.orch.Generate(ctx, "svc"); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	before := snapshot(t, f.layout.Root)
	calls := len(f.runner.calls)

	out, err := f.orch.Generate(ctx, "svc")
	if !errors.Is(err, ErrServiceAlreadyExists) {
		t.Fatalf("second Generate error = %v, want ErrServiceAlreadyExists", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "guard-service-absent" {
		t.Errorf("failing step = %v, want guard-service-absent", err)
	}
	if got := out.StepNames(); !reflect.DeepEqual(got, generateOrder[:4]) {
		t.Errorf("steps = %v", got)
	}
	if len(f.runner.calls) != calls {
		t.Error("second Generate ran commands")
	}
	if after := snapshot(t, f.layout.Root); !reflect.DeepEqual(before, after) {
		t.Error("second Generate mutated the project")
	}
}

func TestGenerateInvalidName(t *testing.T) {
	for _, name := range []string{"", "../escape", "a/b", "9lives"} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.orch.Generate(context.Background(), name)

			var verr *naming.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if platform.Exists(f.layout.SharedProto) || platform.Exists(f.layout.Services) {
				t.Error("invalid name touched the file system")
			}
		})
	}
}

func TestGenerateMissingTemplates(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{TemplateDockerfile, TemplateProto} {
		if err := os.Remove(filepath.Join(f.layout.Templates, name)); err != nil {
			t.Fatal(err)
		}
	}

	_, err := f.orch.Generate(context.Background(), "Billing")
	if !errors.Is(err, render.ErrTemplateNotFound) {
		t.Fatalf("error = %v, want ErrTemplateNotFound", err)
	}
	var nf *render.TemplateNotFoundError
	if !errors.As(err, &nf) || len(nf.Names) != 2 {
		t.Errorf("expected both missing templates reported, got %v", err)
	}
	if platform.Exists(f.layout.ServiceDir("Billing")) {
		t.Error("service directory created despite missing templates")
	}
	if len(f.runner.calls) != 0 {
		t.Error("commands ran despite missing templates")
	}
}

func TestGenerateScaffoldFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.fail["composer create-project"] = processFailed("composer create-project")

	var buf bytes.Buffer
	f.orch.Reporter = NewTextReporter(&buf, false)

	_, err := f.orch.Generate(context.Background(), "Billing")
	if !errors.Is(err, runner.ErrProcessFailed) {
		t.Fatalf("error = %v, want ErrProcessFailed", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "scaffold-base-application" {
		t.Errorf("failing step = %v", err)
	}
	if f.runner.ran("composer require") {
		t.Error("install ran after scaffold failure")
	}
	if platform.Exists(f.layout.ServiceK8s("Billing")) {
		t.Error("manifests rendered after scaffold failure")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if last := lines[len(lines)-1]; !strings.Contains(last, "[FAIL] scaffold-base-application") {
		t.Errorf("last progress line = %q", last)
	}
}

type stubLinker struct {
	mode linker.Mode
	err  error
}

func (s stubLinker) LinkShared(string, string) (linker.Mode, error) {
	return s.mode, s.err
}

func TestGenerateLinkFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.orch.Linker = stubLinker{err: &linker.LinkFailedError{
		Target:  f.layout.SharedProto,
		Path:    f.layout.ServiceProto("Billing"),
		LinkErr: errors.New("symlink denied"),
		CopyErr: errors.New("copy denied"),
	}}

	out, err := f.orch.Generate(context.Background(), "Billing")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := out.StepNames(); !reflect.DeepEqual(got, generateOrder) {
		t.Errorf("steps = %v", got)
	}
	link := out.Steps[7]
	if link.Status != StatusWarned || len(link.Warnings) != 1 {
		t.Errorf("link step = %+v, want one warning", link)
	}
}

func TestGenerateCopyFallback(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.layout.SharedProto, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.layout.SharedProto, "common.proto"), []byte("syntax = \"proto3\";\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f.orch.Linker = &linker.Linker{
		Symlink: func(string, string) error { return errors.New("symlinks disabled") },
		Copy:    platform.CopyDir,
	}

	out, err := f.orch.Generate(context.Background(), "Billing")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	protoEntry := f.layout.ServiceProto("Billing")
	if platform.IsSymlink(protoEntry) {
		t.Error("expected a copied directory, got a symlink")
	}
	if got := readFile(t, filepath.Join(protoEntry, "common.proto")); got != "syntax = \"proto3\";\n" {
		t.Errorf("copied common.proto = %q", got)
	}
	if out.Steps[7].Status != StatusWarned {
		t.Errorf("copy fallback should be reported as a warning, got %s", out.Steps[7].Status)
	}
}

func TestGenerateProtoEntryMatchesShared(t *testing.T) {
	tests := []struct {
		name   string
		linker Linker
		mode   linker.Mode
	}{
		{name: "symlink", linker: linker.New(), mode: linker.ModeSymlink},
		{name: "copy", linker: &linker.Linker{
			Symlink: func(string, string) error { return errors.New("symlinks disabled") },
			Copy:    platform.CopyDir,
		}, mode: linker.ModeCopy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.orch.Linker = tt.linker

			if _, err := f.orch.Generate(context.Background(), "Billing"); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			entry := f.layout.ServiceProto("Billing")
			if got := platform.IsSymlink(entry); got != (tt.mode == linker.ModeSymlink) {
				t.Errorf("IsSymlink(%s) = %v", entry, got)
			}
			resolved, err := filepath.EvalSymlinks(entry)
			if err != nil {
				t.Fatal(err)
			}
			shared := snapshot(t, f.layout.SharedProto)
			if _, ok := shared["BillingService.proto"]; !ok {
				t.Fatalf("shared proto missing BillingService.proto: %v", shared)
			}
			if got := snapshot(t, resolved); !reflect.DeepEqual(got, shared) {
				t.Errorf("service proto entry = %v\nshared proto = %v", got, shared)
			}
		})
	}
}

func TestGenerateManifestWarnings(t *testing.T) {
	f := newFixture(t)
	// A template that renders a manifest the schema rejects.
	bad := "apiVersion: v1\nkind: Service\nmetadata:\n  name: {{SERVICE_NAME}}\nspec:\n  ports: []\n"
	if err := os.WriteFile(filepath.Join(f.layout.Templates, TemplateService), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := f.orch.Generate(context.Background(), "Billing")
	if err != nil {
		t.Fatalf("manifest issues must not fail Generate: %v", err)
	}
	warnings := out.Warnings()
	if len(warnings) == 0 {
		t.Fatal("expected manifest warnings")
	}
	for _, w := range warnings {
		if !strings.HasPrefix(w, "render-deployment-manifests: service.yaml: ") {
			t.Errorf("unexpected warning %q", w)
		}
	}
}

func TestGenerateStepsMatchDescriptors(t *testing.T) {
	want := []string{
		TemplateDeployment, TemplateService, TemplateServer,
		TemplateImplementation, TemplateDockerfile, TemplateProto,
	}
	if got := TemplateNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("TemplateNames() = %v", got)
	}
}
