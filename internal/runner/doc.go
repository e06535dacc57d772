// Package runner executes external tools (dependency installers, container
// CLIs, protocol compilers) with a hard timeout. Combined stdout and stderr
// are exposed as a lazily produced sequence of lines so callers can stream
// progress or buffer it without changing how the command is run. Success is
// strictly exit code zero.
package runner
