// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed, so a fork only has to edit one file to rename the
// tool, its environment prefix and its project config file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	EnvPrefix   string `yaml:"env_prefix"`
	ConfigName  string `yaml:"config_name"`
	GoModule    string `yaml:"go_module"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "svcforge",
			DisplayName: "svcforge",
			Description: "Scaffold, compile and deploy gRPC services from shared templates",
			EnvPrefix:   "SVCFORGE",
			ConfigName:  "svcforge",
			GoModule:    "github.com/svcforge/svcforge",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "svcforge").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "SVCFORGE").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ConfigName returns the project config file name without extension.
func ConfigName() string { load(); return defaults.ConfigName }

// GoModule returns the Go module path.
func GoModule() string { load(); return defaults.GoModule }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("ROOT") → "SVCFORGE_ROOT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
