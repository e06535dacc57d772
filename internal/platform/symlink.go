package platform

import (
	"fmt"
	"os"
	"runtime"
)

// CreateSymlink creates a symbolic link at link pointing to target. On
// Windows this only succeeds with developer mode or elevated privileges;
// callers that need a guaranteed result fall back to CopyDir.
func CreateSymlink(target, link string) error {
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("creating symlink %s -> %s: %w", link, target, err)
	}
	return nil
}

// IsSymlink reports whether path is a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// ReadSymlinkTarget returns the target of a symlink.
func ReadSymlinkTarget(path string) (string, error) {
	return os.Readlink(path)
}

// IsSymlinkSupported returns true if the current platform supports native symlinks.
// On Windows this attempts a test symlink to check developer mode.
func IsSymlinkSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}

	tmpDir := os.TempDir()
	link := tmpDir + "/.svcforge-symlink-test"
	defer os.Remove(link)

	return os.Symlink(tmpDir, link) == nil
}
