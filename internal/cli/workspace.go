package cli

import (
	"io"

	"github.com/svcforge/svcforge/internal/config"
	"github.com/svcforge/svcforge/internal/platform"
	"github.com/svcforge/svcforge/internal/project"
	"github.com/svcforge/svcforge/internal/render"
	"github.com/svcforge/svcforge/internal/runner"
	"github.com/svcforge/svcforge/internal/scaffold"
	"github.com/svcforge/svcforge/internal/templates"
)

// workspace is the resolved project a command operates on.
type workspace struct {
	layout   project.Layout
	settings *config.Settings
}

func openWorkspace() (*workspace, error) {
	layout, err := project.New(project.ResolveRoot(rootDir))
	if err != nil {
		return nil, err
	}

	cfg := configFile
	explicit := cfg != ""
	if !explicit {
		cfg = layout.ConfigPath()
	}
	settings, err := config.Load(config.Options{
		ConfigFile: cfg,
		Explicit:   explicit,
		EnvFile:    layout.EnvPath(),
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("workspace resolved", "root", layout.Root, "config", cfg)
	return &workspace{layout: layout, settings: settings}, nil
}

// templateStore reads the project's templates/ directory, falling back to
// the built-in set when the project has none.
func (w *workspace) templateStore() *render.Store {
	if platform.IsDir(w.layout.Templates) {
		return render.NewStore(w.layout.Templates)
	}
	logger.Info("no templates directory, using built-in templates", "dir", w.layout.Templates)
	return render.NewFSStore("built-in templates", templates.Defaults())
}

func (w *workspace) orchestrator(out io.Writer) *scaffold.Orchestrator {
	o := scaffold.New(w.layout, w.templateStore(), w.settings, runner.New(logger))
	o.Reporter = scaffold.NewTextReporter(out, !quiet)
	o.Logger = logger
	return o
}
