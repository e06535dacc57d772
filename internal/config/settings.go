package config

import "time"

// Tool keys. Each names an argv list under "tools." and a timeout under
// "timeouts.".
const (
	ToolScaffold = "scaffold"
	ToolInstall  = "install"
	ToolBuild    = "build"
	ToolPush     = "push"
	ToolStop     = "stop"
	ToolRemove   = "remove"
	ToolRun      = "run"
	ToolProtoc   = "protoc"
)

// ToolKeys lists every tool key in workflow order.
var ToolKeys = []string{
	ToolScaffold, ToolInstall, ToolBuild, ToolPush,
	ToolStop, ToolRemove, ToolRun, ToolProtoc,
}

// Settings is the validated, merged configuration.
type Settings struct {
	Tools     Tools     `mapstructure:"tools" yaml:"tools"`
	Timeouts  Timeouts  `mapstructure:"timeouts" yaml:"timeouts"`
	Image     Image     `mapstructure:"image" yaml:"image"`
	Container Container `mapstructure:"container" yaml:"container"`
	Doctor    Doctor    `mapstructure:"doctor" yaml:"doctor"`
}

// Tools holds the argv of each external command. Elements may contain
// {{KEY}} placeholders.
type Tools struct {
	Scaffold []string `mapstructure:"scaffold" yaml:"scaffold" validate:"required,min=1,dive,required"`
	Install  []string `mapstructure:"install" yaml:"install" validate:"required,min=1,dive,required"`
	Build    []string `mapstructure:"build" yaml:"build" validate:"required,min=1,dive,required"`
	Push     []string `mapstructure:"push" yaml:"push" validate:"required,min=1,dive,required"`
	Stop     []string `mapstructure:"stop" yaml:"stop" validate:"required,min=1,dive,required"`
	Remove   []string `mapstructure:"remove" yaml:"remove" validate:"required,min=1,dive,required"`
	Run      []string `mapstructure:"run" yaml:"run" validate:"required,min=1,dive,required"`
	Protoc   []string `mapstructure:"protoc" yaml:"protoc" validate:"required,min=1,dive,required"`
}

// Argv returns the argv configured for key, or nil for an unknown key.
func (t Tools) Argv(key string) []string {
	switch key {
	case ToolScaffold:
		return t.Scaffold
	case ToolInstall:
		return t.Install
	case ToolBuild:
		return t.Build
	case ToolPush:
		return t.Push
	case ToolStop:
		return t.Stop
	case ToolRemove:
		return t.Remove
	case ToolRun:
		return t.Run
	case ToolProtoc:
		return t.Protoc
	}
	return nil
}

// Timeouts bounds each external command. Values need a unit ("600s",
// "10m"); a bare integer is read as nanoseconds and rejected by Validate.
type Timeouts struct {
	Scaffold time.Duration `mapstructure:"scaffold" yaml:"scaffold" validate:"gte=1s"`
	Install  time.Duration `mapstructure:"install" yaml:"install" validate:"gte=1s"`
	Build    time.Duration `mapstructure:"build" yaml:"build" validate:"gte=1s"`
	Push     time.Duration `mapstructure:"push" yaml:"push" validate:"gte=1s"`
	Stop     time.Duration `mapstructure:"stop" yaml:"stop" validate:"gte=1s"`
	Remove   time.Duration `mapstructure:"remove" yaml:"remove" validate:"gte=1s"`
	Run      time.Duration `mapstructure:"run" yaml:"run" validate:"gte=1s"`
	Protoc   time.Duration `mapstructure:"protoc" yaml:"protoc" validate:"gte=1s"`
}

// For returns the timeout configured for key, or zero for an unknown key.
func (t Timeouts) For(key string) time.Duration {
	switch key {
	case ToolScaffold:
		return t.Scaffold
	case ToolInstall:
		return t.Install
	case ToolBuild:
		return t.Build
	case ToolPush:
		return t.Push
	case ToolStop:
		return t.Stop
	case ToolRemove:
		return t.Remove
	case ToolRun:
		return t.Run
	case ToolProtoc:
		return t.Protoc
	}
	return 0
}

// Image identifies where built service images are pushed.
type Image struct {
	Repository string `mapstructure:"repository" yaml:"repository" validate:"required,imageref"`
	Tag        string `mapstructure:"tag" yaml:"tag" validate:"required,imagetag"`
}

// Container controls how a deployed service container is published.
type Container struct {
	Port   int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	Suffix string `mapstructure:"suffix" yaml:"suffix" validate:"excludesall= /"`
}

// Doctor lists minimum versions keyed by executable name.
type Doctor struct {
	MinVersions map[string]string `mapstructure:"min_versions" yaml:"min_versions" validate:"dive,keys,required,endkeys,semver"`
}
