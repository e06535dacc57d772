package scaffold

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/svcforge/svcforge/internal/config"
	"github.com/svcforge/svcforge/internal/platform"
	"github.com/svcforge/svcforge/internal/render"
)

// Variables available to the protoc command line.
const (
	KeyProtoDir   = "PROTO_DIR"
	KeyOutDir     = "OUT_DIR"
	KeyProtoFiles = "PROTO_FILES"
)

// CompileProtos runs the protocol compiler for one service, or for every
// service under services/ when name is empty. A failing service does not
// stop the others; the workflow fails once all have been attempted.
func (o *Orchestrator) CompileProtos(ctx context.Context, name string) (*Outcome, error) {
	steps, err := o.CompileSteps(name)
	if err != nil {
		return &Outcome{Workflow: "proto-generate", Service: name}, err
	}
	return o.execute(ctx, "proto-generate", steps, NewJob(name))
}

// CompileSteps returns the proto-generate workflow. With an empty name it
// lists services/ to build one step per service.
func (o *Orchestrator) CompileSteps(name string) ([]Step, error) {
	if name != "" {
		return []Step{
			o.validateName(),
			o.guardServicePresent(),
			o.compileStep(name),
		}, nil
	}

	services, err := o.Layout.ListServices()
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, len(services))
	for _, svc := range services {
		steps = append(steps, o.compileStep(svc))
	}
	return steps, nil
}

func (o *Orchestrator) compileStep(service string) Step {
	return Step{Name: "compile-protos " + service, Policy: Collect, Run: func(ctx context.Context, j *Job) error {
		protoDir := o.Layout.ServiceProto(service)
		if !platform.IsDir(protoDir) {
			j.Warn("%s has no proto directory, skipped", service)
			return nil
		}

		files, err := filepath.Glob(filepath.Join(protoDir, "*.proto"))
		if err != nil {
			return fmt.Errorf("listing proto files: %w", err)
		}
		if len(files) == 0 {
			j.Warn("no .proto files in %s, skipped", protoDir)
			return nil
		}
		sort.Strings(files)

		outDir := o.Layout.ServiceGrpc(service)
		if err := platform.EnsureDir(outDir); err != nil {
			return err
		}

		vars := map[string]string{
			KeyServiceDir: o.Layout.ServiceDir(service),
			KeyProtoDir:   protoDir,
			KeyOutDir:     outDir,
		}
		argv := expandArgs(o.Settings.Tools.Protoc, vars, map[string][]string{KeyProtoFiles: files})
		return o.runArgv(ctx, j, config.ToolProtoc, argv, o.Layout.Root)
	}}
}

// expandArgs renders args with vars. An element that is exactly a
// {{KEY}} placeholder for a key in lists is replaced by that many
// arguments.
func expandArgs(args []string, vars map[string]string, lists map[string][]string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if placeholders := render.Placeholders(a); len(placeholders) == 1 && a == "{{"+placeholders[0]+"}}" {
			if list, ok := lists[placeholders[0]]; ok {
				out = append(out, list...)
				continue
			}
		}
		out = append(out, render.Render(a, vars))
	}
	return out
}
