package scaffold

import (
	"path/filepath"

	"github.com/svcforge/svcforge/internal/naming"
	"github.com/svcforge/svcforge/internal/project"
)

// Descriptor pairs a template with the file it renders into.
type Descriptor struct {
	Template   string
	Dest       func(l project.Layout, v naming.Variants) string
	Executable bool
}

// Template names of the canonical set.
const (
	TemplateDeployment     = "deployment.yaml.tpl"
	TemplateService        = "service.yaml.tpl"
	TemplateServer         = "grpc_server.php.tpl"
	TemplateImplementation = "ServiceImplementation.php.tpl"
	TemplateDockerfile     = "Dockerfile.tpl"
	TemplateProto          = "Service.proto.tpl"
)

var (
	deploymentManifest = Descriptor{
		Template: TemplateDeployment,
		Dest: func(l project.Layout, v naming.Variants) string {
			return filepath.Join(l.ServiceK8s(v.Name), "deployment.yaml")
		},
	}
	serviceManifest = Descriptor{
		Template: TemplateService,
		Dest: func(l project.Layout, v naming.Variants) string {
			return filepath.Join(l.ServiceK8s(v.Name), "service.yaml")
		},
	}
	serverEntrypoint = Descriptor{
		Template: TemplateServer,
		Dest: func(l project.Layout, v naming.Variants) string {
			return filepath.Join(l.ServiceDir(v.Name), "grpc_server.php")
		},
		Executable: true,
	}
	serviceImplementation = Descriptor{
		Template: TemplateImplementation,
		Dest: func(l project.Layout, v naming.Variants) string {
			return filepath.Join(l.ServiceGrpc(v.Name), v.Pascal+"ServiceImplementation.php")
		},
	}
	containerBuildFile = Descriptor{
		Template: TemplateDockerfile,
		Dest: func(l project.Layout, v naming.Variants) string {
			return filepath.Join(l.ServiceDir(v.Name), "Dockerfile")
		},
	}
	protocolDefinition = Descriptor{
		Template: TemplateProto,
		Dest: func(l project.Layout, v naming.Variants) string {
			return filepath.Join(l.SharedProto, v.Pascal+"Service.proto")
		},
	}
)

// Descriptors returns the fixed artifact list in generation order.
func Descriptors() []Descriptor {
	return []Descriptor{
		deploymentManifest,
		serviceManifest,
		serverEntrypoint,
		serviceImplementation,
		containerBuildFile,
		protocolDefinition,
	}
}

// TemplateNames returns the templates Generate requires.
func TemplateNames() []string {
	ds := Descriptors()
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Template
	}
	return names
}
