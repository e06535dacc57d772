package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/svcforge/svcforge/internal/branding"
	"github.com/svcforge/svcforge/internal/platform"
)

// Directory name constants for the project convention.
const (
	ServicesDir  = "services"
	SharedDir    = "shared"
	ProtoDir     = "proto"
	TemplatesDir = "templates"
	EnvFile      = ".env"

	// Per-service subpaths.
	ServiceGrpcDir = "app/Grpc"
	ServiceK8sDir  = "k8s"
)

// Layout holds the absolute paths of a project rooted at Root.
type Layout struct {
	Root        string
	Services    string
	SharedProto string
	Templates   string
}

// New returns the layout for the project rooted at root. A relative root is
// resolved against the working directory.
func New(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving project root %s: %w", root, err)
	}
	return Layout{
		Root:        abs,
		Services:    filepath.Join(abs, ServicesDir),
		SharedProto: filepath.Join(abs, SharedDir, ProtoDir),
		Templates:   filepath.Join(abs, TemplatesDir),
	}, nil
}

// ResolveRoot picks the project root: the explicit flag value if set, then
// the SVCFORGE_ROOT environment variable, then the working directory.
func ResolveRoot(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(branding.EnvVar("ROOT")); v != "" {
		return v
	}
	return "."
}

// ServiceDir returns services/<name>.
func (l Layout) ServiceDir(name string) string {
	return filepath.Join(l.Services, name)
}

// ServiceProto returns the proto entry inside a service directory, the
// path the shared proto directory is linked to.
func (l Layout) ServiceProto(name string) string {
	return filepath.Join(l.ServiceDir(name), ProtoDir)
}

// ServiceGrpc returns the directory holding generated gRPC sources.
func (l Layout) ServiceGrpc(name string) string {
	return filepath.Join(l.ServiceDir(name), filepath.FromSlash(ServiceGrpcDir))
}

// ServiceK8s returns the directory holding the Kubernetes manifests.
func (l Layout) ServiceK8s(name string) string {
	return filepath.Join(l.ServiceDir(name), ServiceK8sDir)
}

// EnvPath returns the .env file loaded into configuration.
func (l Layout) EnvPath() string {
	return filepath.Join(l.Root, EnvFile)
}

// ConfigPath returns the default project config file path.
func (l Layout) ConfigPath() string {
	return filepath.Join(l.Root, branding.ConfigName()+".yaml")
}

// ListServices returns the names of the service directories under
// services/, sorted. A missing services/ directory yields no names.
func (l Layout) ListServices() ([]string, error) {
	entries, err := os.ReadDir(l.Services)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.Services, err)
	}
	var names []string
	for _, e := range entries {
		// Stat follows links so a linked service directory is listed too.
		if platform.IsDir(filepath.Join(l.Services, e.Name())) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
