package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/svcforge/svcforge/internal/config"
	"github.com/svcforge/svcforge/internal/linker"
	"github.com/svcforge/svcforge/internal/manifest"
	"github.com/svcforge/svcforge/internal/naming"
	"github.com/svcforge/svcforge/internal/platform"
	"github.com/svcforge/svcforge/internal/project"
	"github.com/svcforge/svcforge/internal/render"
	"github.com/svcforge/svcforge/internal/runner"
)

// Variables added on top of the naming variants.
const (
	KeyServiceDir    = "SERVICE_DIR"
	KeyServiceSlug   = "SERVICE_SLUG"
	KeyImage         = "IMAGE"
	KeyContainerName = "CONTAINER_NAME"
	KeyPort          = "PORT"
)

// Runner executes one external command to completion.
type Runner interface {
	Run(ctx context.Context, c runner.Command, onLine func(string)) (*runner.Result, error)
}

// Linker points a service's proto entry at the shared proto directory.
type Linker interface {
	LinkShared(target, servicePath string) (linker.Mode, error)
}

// Orchestrator runs workflows against one project.
type Orchestrator struct {
	Layout    project.Layout
	Templates *render.Store
	Settings  *config.Settings
	Runner    Runner
	Linker    Linker
	Reporter  Reporter
	Logger    *slog.Logger
}

// New returns an Orchestrator using the platform linker and no progress
// output. Callers set Reporter and Logger as needed.
func New(layout project.Layout, templates *render.Store, settings *config.Settings, r Runner) *Orchestrator {
	return &Orchestrator{
		Layout:    layout,
		Templates: templates,
		Settings:  settings,
		Runner:    r,
		Linker:    linker.New(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (o *Orchestrator) execute(ctx context.Context, workflow string, steps []Step, j *Job) (*Outcome, error) {
	logger := o.logger().With("workflow", workflow, "service", j.Name)
	logger.Debug("workflow started", "steps", len(steps))

	out, err := Execute(ctx, workflow, steps, j, o.Reporter)

	for _, s := range out.Steps {
		logger.Debug("step finished", "step", s.Name, "status", s.Status, "duration", s.Duration)
	}
	if err != nil {
		logger.Debug("workflow failed", "err", err)
	}
	return out, err
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Vars returns the template variables for a service.
func (o *Orchestrator) Vars(v naming.Variants) map[string]string {
	vars := v.Vars()
	slug := strings.ReplaceAll(v.Snake, "_", "-")
	vars[KeyServiceDir] = o.Layout.ServiceDir(v.Name)
	vars[KeyServiceSlug] = slug
	vars[KeyImage] = fmt.Sprintf("%s/%s:%s", o.Settings.Image.Repository, slug, o.Settings.Image.Tag)
	vars[KeyContainerName] = v.Name + o.Settings.Container.Suffix
	vars[KeyPort] = strconv.Itoa(o.Settings.Container.Port)
	return vars
}

func (o *Orchestrator) validateName() Step {
	return Step{Name: "validate-name", Run: func(_ context.Context, j *Job) error {
		if err := naming.Validate(j.Name); err != nil {
			return err
		}
		j.Service = naming.Derive(j.Name)
		j.Vars = o.Vars(j.Service)
		return nil
	}}
}

func (o *Orchestrator) guardServicePresent() Step {
	return Step{Name: "guard-service-present", Run: func(_ context.Context, j *Job) error {
		dir := o.Layout.ServiceDir(j.Name)
		if !platform.IsDir(dir) {
			return fmt.Errorf("%s: %w", dir, ErrServiceNotFound)
		}
		return nil
	}}
}

// tool runs the configured command for key, streaming its output into j.
func (o *Orchestrator) tool(ctx context.Context, j *Job, key, dir string) error {
	return o.runArgv(ctx, j, key, render.RenderArgs(o.Settings.Tools.Argv(key), j.Vars), dir)
}

func (o *Orchestrator) runArgv(ctx context.Context, j *Job, key string, argv []string, dir string) error {
	if len(argv) == 0 {
		return fmt.Errorf("no command configured for tools.%s", key)
	}
	_, err := o.Runner.Run(ctx, runner.Command{
		Name:    argv[0],
		Args:    argv[1:],
		Dir:     dir,
		Timeout: o.Settings.Timeouts.For(key),
	}, j.Output)
	return err
}

// renderStep renders one descriptor into its destination.
func (o *Orchestrator) renderStep(name string, d Descriptor) Step {
	return Step{Name: name, Run: func(_ context.Context, j *Job) error {
		_, err := o.render(j, d)
		return err
	}}
}

func (o *Orchestrator) render(j *Job, d Descriptor) (string, error) {
	content, err := o.Templates.RenderFile(d.Template, j.Vars)
	if err != nil {
		return "", err
	}
	dest := d.Dest(o.Layout, j.Service)
	if err := platform.WriteFile(dest, []byte(content), d.Executable); err != nil {
		return "", err
	}
	j.Wrote(dest)
	return content, nil
}

// Generate creates services/<name> from the template set.
func (o *Orchestrator) Generate(ctx context.Context, name string) (*Outcome, error) {
	return o.execute(ctx, "generate", o.GenerateSteps(), NewJob(name))
}

// GenerateSteps returns the generate workflow in execution order.
func (o *Orchestrator) GenerateSteps() []Step {
	return []Step{
		o.validateName(),
		{Name: "ensure-shared-proto", Run: func(_ context.Context, _ *Job) error {
			_, err := platform.EnsureDirExclusive(o.Layout.SharedProto)
			return err
		}},
		{Name: "verify-templates", Run: func(_ context.Context, _ *Job) error {
			return o.Templates.Require(TemplateNames()...)
		}},
		{Name: "guard-service-absent", Run: func(_ context.Context, j *Job) error {
			dir := o.Layout.ServiceDir(j.Name)
			if platform.Exists(dir) {
				return fmt.Errorf("%s: %w", dir, ErrServiceAlreadyExists)
			}
			return nil
		}},
		{Name: "scaffold-base-application", Run: func(ctx context.Context, j *Job) error {
			if err := o.tool(ctx, j, config.ToolScaffold, o.Layout.Root); err != nil {
				return err
			}
			dir := o.Layout.ServiceDir(j.Name)
			if err := platform.EnsureDir(dir); err != nil {
				return err
			}
			j.Wrote(dir)
			return nil
		}},
		{Name: "install-protocol-dependencies", Run: func(ctx context.Context, j *Job) error {
			return o.tool(ctx, j, config.ToolInstall, o.Layout.ServiceDir(j.Name))
		}},
		{Name: "render-deployment-manifests", Run: func(_ context.Context, j *Job) error {
			for _, d := range []Descriptor{deploymentManifest, serviceManifest} {
				content, err := o.render(j, d)
				if err != nil {
					return err
				}
				checkManifest(j, filepath.Base(d.Dest(o.Layout, j.Service)), content)
			}
			return nil
		}},
		{Name: "link-shared-proto", Run: func(_ context.Context, j *Job) error {
			path := o.Layout.ServiceProto(j.Name)
			mode, err := o.Linker.LinkShared(o.Layout.SharedProto, path)
			if errors.Is(err, linker.ErrLinkFailed) {
				j.Warn("%v", err)
				return nil
			}
			if err != nil {
				return err
			}
			j.Link = mode
			if mode == linker.ModeCopy {
				j.Warn("symlink unavailable, copied %s; later changes to shared proto files will not propagate", o.Layout.SharedProto)
			}
			j.Wrote(path)
			return nil
		}},
		o.renderStep("render-server-entrypoint", serverEntrypoint),
		o.renderStep("render-service-implementation", serviceImplementation),
		o.renderStep("render-container-build-file", containerBuildFile),
		{Name: "render-protocol-definition", Run: func(_ context.Context, j *Job) error {
			content, err := o.render(j, protocolDefinition)
			if err != nil {
				return err
			}
			if j.Link != linker.ModeCopy {
				return nil
			}
			// A copied proto entry was taken before this file existed.
			dest := filepath.Join(o.Layout.ServiceProto(j.Name), filepath.Base(protocolDefinition.Dest(o.Layout, j.Service)))
			if err := platform.WriteFile(dest, []byte(content), protocolDefinition.Executable); err != nil {
				return err
			}
			j.Wrote(dest)
			return nil
		}},
	}
}

// checkManifest validates rendered manifest content, recording problems
// as warnings.
func checkManifest(j *Job, file, content string) {
	result, err := manifest.Validate([]byte(content))
	if err != nil {
		j.Warn("could not validate %s: %v", file, err)
		return
	}
	for _, issue := range result.Issues {
		j.Warn("%s: %s", file, issue)
	}
}

// Deploy builds, pushes and (re)starts the container for an existing
// service.
func (o *Orchestrator) Deploy(ctx context.Context, name string) (*Outcome, error) {
	return o.execute(ctx, "deploy", o.DeploySteps(), NewJob(name))
}

// DeploySteps returns the deploy workflow in execution order.
func (o *Orchestrator) DeploySteps() []Step {
	return []Step{
		o.validateName(),
		o.guardServicePresent(),
		{Name: "build-image", Run: func(ctx context.Context, j *Job) error {
			return o.tool(ctx, j, config.ToolBuild, o.Layout.ServiceDir(j.Name))
		}},
		{Name: "push-image", Run: func(ctx context.Context, j *Job) error {
			return o.tool(ctx, j, config.ToolPush, o.Layout.ServiceDir(j.Name))
		}},
		{Name: "stop-existing-container", Policy: Tolerate, Run: func(ctx context.Context, j *Job) error {
			// Removal only follows a successful stop.
			if err := o.tool(ctx, j, config.ToolStop, o.Layout.ServiceDir(j.Name)); err != nil {
				return err
			}
			return o.tool(ctx, j, config.ToolRemove, o.Layout.ServiceDir(j.Name))
		}},
		{Name: "run-container", Run: func(ctx context.Context, j *Job) error {
			return o.tool(ctx, j, config.ToolRun, o.Layout.ServiceDir(j.Name))
		}},
	}
}
