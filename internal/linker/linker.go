package linker

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/svcforge/svcforge/internal/platform"
)

// Mode describes how a service was connected to the shared directory.
type Mode string

const (
	ModeSymlink Mode = "symlink"
	ModeCopy    Mode = "copy"
)

// ErrLinkFailed is matched by every *LinkFailedError.
var ErrLinkFailed = errors.New("linking shared directory failed")

// LinkFailedError reports that neither a symlink nor a copy could be made.
// Callers treat it as a warning rather than aborting.
type LinkFailedError struct {
	Target  string
	Path    string
	LinkErr error
	CopyErr error
}

func (e *LinkFailedError) Error() string {
	msg := fmt.Sprintf("could not link %s to %s", e.Path, e.Target)
	if e.LinkErr != nil {
		msg += fmt.Sprintf(": symlink: %v", e.LinkErr)
	}
	if e.CopyErr != nil {
		msg += fmt.Sprintf("; copy fallback: %v", e.CopyErr)
	}
	return msg
}

func (e *LinkFailedError) Is(target error) bool {
	return target == ErrLinkFailed
}

func (e *LinkFailedError) Unwrap() []error {
	var errs []error
	if e.LinkErr != nil {
		errs = append(errs, e.LinkErr)
	}
	if e.CopyErr != nil {
		errs = append(errs, e.CopyErr)
	}
	return errs
}

// Linker links service directories to a shared directory. The zero value
// uses the platform symlink and copy primitives.
type Linker struct {
	Symlink func(target, link string) error
	Copy    func(src, dst string) error
}

// New returns a Linker backed by the platform package.
func New() *Linker {
	return &Linker{
		Symlink: platform.CreateSymlink,
		Copy:    platform.CopyDir,
	}
}

// LinkShared points servicePath at target using a default Linker.
func LinkShared(target, servicePath string) (Mode, error) {
	return New().LinkShared(target, servicePath)
}

// LinkShared ensures target exists, removes whatever is at servicePath and
// replaces it with a symlink to target, copying target when the link cannot
// be created.
func (l *Linker) LinkShared(target, servicePath string) (Mode, error) {
	symlink := l.Symlink
	if symlink == nil {
		symlink = platform.CreateSymlink
	}
	copyDir := l.Copy
	if copyDir == nil {
		copyDir = platform.CopyDir
	}

	if _, err := platform.EnsureDirExclusive(target); err != nil {
		return "", &LinkFailedError{Target: target, Path: servicePath, LinkErr: err}
	}

	// A leftover from an earlier failed run.
	if platform.Exists(servicePath) {
		if err := platform.Remove(servicePath); err != nil {
			return "", &LinkFailedError{Target: target, Path: servicePath, LinkErr: err}
		}
	}
	if err := platform.EnsureDir(filepath.Dir(servicePath)); err != nil {
		return "", &LinkFailedError{Target: target, Path: servicePath, LinkErr: err}
	}

	linkErr := symlink(linkTarget(target, servicePath), servicePath)
	if linkErr == nil {
		return ModeSymlink, nil
	}

	// A failed symlink may still leave a partial entry behind on some
	// platforms; clear it before copying.
	if platform.Exists(servicePath) {
		_ = platform.Remove(servicePath)
	}

	if copyErr := copyDir(target, servicePath); copyErr != nil {
		return "", &LinkFailedError{Target: target, Path: servicePath, LinkErr: linkErr, CopyErr: copyErr}
	}
	return ModeCopy, nil
}

// linkTarget prefers a target relative to the link's directory so the
// project tree can be moved without breaking links.
func linkTarget(target, servicePath string) string {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	absLinkDir, err := filepath.Abs(filepath.Dir(servicePath))
	if err != nil {
		return absTarget
	}
	rel, err := filepath.Rel(absLinkDir, absTarget)
	if err != nil {
		return absTarget
	}
	return rel
}
