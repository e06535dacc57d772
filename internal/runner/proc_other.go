//go:build !unix

package runner

import "os/exec"

// configureProcess keeps the exec default of killing only the direct child.
func configureProcess(*exec.Cmd) {}
