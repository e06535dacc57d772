package platform

import (
	"os"
	"runtime"
)

// Permission constants for generated artifacts.
const (
	DirPerm        os.FileMode = 0755
	FilePerm       os.FileMode = 0644
	ExecutablePerm os.FileMode = 0755
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}
