package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MaterializationError reports a file-system write that failed.
type MaterializationError struct {
	Op   string
	Path string
	Err  error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MaterializationError) Unwrap() error {
	return e.Err
}

// EnsureDir creates path and any missing parents. It is a no-op when the
// directory already exists.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirPerm); err != nil {
		return &MaterializationError{Op: "creating directory", Path: path, Err: err}
	}
	return nil
}

// EnsureDirExclusive creates path if it is absent and reports whether this
// call created it. Concurrent callers race on a single mkdir, so exactly one
// of them observes created == true.
func EnsureDirExclusive(path string) (created bool, err error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return false, err
	}
	err = os.Mkdir(path, DirPerm)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrExist):
		info, statErr := os.Stat(path)
		if statErr != nil {
			return false, &MaterializationError{Op: "inspecting directory", Path: path, Err: statErr}
		}
		if !info.IsDir() {
			return false, &MaterializationError{Op: "creating directory", Path: path, Err: fmt.Errorf("exists and is not a directory")}
		}
		return false, nil
	default:
		return false, &MaterializationError{Op: "creating directory", Path: path, Err: err}
	}
}

// WriteFile writes content to path, creating parent directories first. An
// existing file is overwritten. When executable is true the file is made
// executable by owner, group and others.
func WriteFile(path string, content []byte, executable bool) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	mode := FilePerm
	if executable {
		mode = ExecutablePerm
	}

	if err := os.WriteFile(path, content, mode); err != nil {
		return &MaterializationError{Op: "writing", Path: path, Err: err}
	}

	// os.WriteFile leaves the mode of an existing file alone and is subject
	// to the umask, so set it explicitly.
	if err := Chmod(path, mode); err != nil {
		return &MaterializationError{Op: "setting permissions on", Path: path, Err: err}
	}
	return nil
}

// Exists reports whether anything is present at path. Symlinks are not
// followed, so a dangling link counts as existing.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path resolves to a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Remove deletes path. Directories are removed recursively; symlinks are
// removed without touching their targets.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return &MaterializationError{Op: "removing", Path: path, Err: err}
	}
	return nil
}
