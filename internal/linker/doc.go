// Package linker connects a generated service to the shared protocol
// definition directory. Each service gets a symlink to the shared directory;
// when the platform refuses the link, the directory is copied instead so the
// service still builds. A failure of both is reported as a recoverable
// LinkFailedError.
package linker
