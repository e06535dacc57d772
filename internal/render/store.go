package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrTemplateNotFound is matched by every *TemplateNotFoundError.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateNotFoundError lists the templates a store could not locate.
type TemplateNotFoundError struct {
	Dir   string
	Names []string
}

func (e *TemplateNotFoundError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("required template not found: %s (in %s)", e.Names[0], e.Dir)
	}
	return fmt.Sprintf("required templates not found in %s: %s", e.Dir, strings.Join(e.Names, ", "))
}

// Is makes errors.Is(err, ErrTemplateNotFound) hold.
func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// Store loads templates by logical name (e.g., "Dockerfile.tpl").
type Store struct {
	dir  string
	fsys fs.FS
}

// NewStore returns a Store reading templates from a directory on disk.
func NewStore(dir string) *Store {
	return &Store{dir: dir, fsys: os.DirFS(dir)}
}

// NewFSStore returns a Store backed by an arbitrary file system. label is
// only used in error messages.
func NewFSStore(label string, fsys fs.FS) *Store {
	return &Store{dir: label, fsys: fsys}
}

// Dir returns the location the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Has reports whether the named template exists.
func (s *Store) Has(name string) bool {
	info, err := fs.Stat(s.fsys, name)
	return err == nil && !info.IsDir()
}

// Load returns the raw text of the named template.
func (s *Store) Load(name string) (string, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateNotFoundError{Dir: s.dir, Names: []string{name}}
		}
		return "", fmt.Errorf("reading template %s: %w", name, err)
	}
	return string(data), nil
}

// Require verifies that every named template exists, reporting all missing
// names in a single error.
func (s *Store) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &TemplateNotFoundError{Dir: s.dir, Names: missing}
	}
	return nil
}

// RenderFile loads the named template and renders it with vars.
func (s *Store) RenderFile(name string, vars map[string]string) (string, error) {
	text, err := s.Load(name)
	if err != nil {
		return "", err
	}
	return Render(text, vars), nil
}
